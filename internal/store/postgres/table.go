package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"inkhub/internal/core/apperror"
	"inkhub/internal/domain/entity"
)

// Table provides CRUD operations for one table, using the record type's
// "db" tags as the column set.
type Table[T entity.Record] struct {
	pool   *Pool
	name   string
	keyCol string
	cols   []string
}

// NewTable creates a table keyed by "id".
func NewTable[T entity.Record](pool *Pool, name string) *Table[T] {
	return NewKeyedTable[T](pool, name, "id")
}

// NewKeyedTable creates a table with an explicit key column (the users
// table is keyed by username).
func NewKeyedTable[T entity.Record](pool *Pool, name, keyCol string) *Table[T] {
	return &Table[T]{
		pool:   pool,
		name:   name,
		keyCol: keyCol,
		cols:   entity.Columns[T](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (t *Table[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// SelectAll retrieves every row, newest key first.
func (t *Table[T]) SelectAll(ctx context.Context) ([]T, error) {
	ctx, span := t.span(ctx, "select_all")
	defer span.End()

	q := t.Builder().
		Select(t.cols...).
		From(t.name).
		OrderBy(t.keyCol + " DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, t.pool, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}

	return items, nil
}

// Get retrieves the record with the given key.
func (t *Table[T]) Get(ctx context.Context, key any) (T, error) {
	ctx, span := t.span(ctx, "get")
	defer span.End()

	var rec T

	q := t.Builder().
		Select(t.cols...).
		From(t.name).
		Where(squirrel.Eq{t.keyCol: key}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return rec, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, t.pool, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return rec, apperror.NewNotFound(t.name, fmt.Sprintf("%v", key))
		}
		return rec, fmt.Errorf("get %s: %w", t.name, err)
	}

	return rec, nil
}

// Insert persists a new record using its "db" tags.
func (t *Table[T]) Insert(ctx context.Context, rec T) error {
	ctx, span := t.span(ctx, "insert")
	defer span.End()

	data := entity.RowOf(rec)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in record")
	}

	q := t.Builder().
		Insert(t.name).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := t.pool.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate(t.name, t.keyCol, fmt.Sprintf("%v", data[t.keyCol])).
				WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", t.name, err)
	}

	return nil
}

// Update applies a partial row to the record with the given key. Unknown
// columns in the patch are discarded; the key column is never updated.
func (t *Table[T]) Update(ctx context.Context, key any, patch entity.Row) error {
	ctx, span := t.span(ctx, "update")
	defer span.End()

	filtered := make(map[string]any, len(patch))
	for _, col := range t.cols {
		if col == t.keyCol {
			continue
		}
		if val, ok := patch[col]; ok {
			filtered[col] = val
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	q := t.Builder().
		Update(t.name).
		SetMap(filtered).
		Where(squirrel.Eq{t.keyCol: key})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := t.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.name, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(t.name, fmt.Sprintf("%v", key))
	}

	return nil
}

// Delete performs physical removal from the database.
func (t *Table[T]) Delete(ctx context.Context, key any) error {
	ctx, span := t.span(ctx, "delete")
	defer span.End()

	q := t.Builder().
		Delete(t.name).
		Where(squirrel.Eq{t.keyCol: key})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := t.pool.Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewConflict("record is referenced by other records").
				WithDetail("table", t.name).
				WithDetail("key", fmt.Sprintf("%v", key)).
				WithCause(err)
		}
		return fmt.Errorf("delete %s: %w", t.name, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(t.name, fmt.Sprintf("%v", key))
	}

	return nil
}

// Upsert writes records in a single batch, replacing existing rows with the
// same key. Used by the import tool.
func (t *Table[T]) Upsert(ctx context.Context, recs []T) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	ctx, span := t.span(ctx, "upsert")
	defer span.End()

	updates := make([]string, 0, len(t.cols))
	for _, col := range t.cols {
		if col == t.keyCol {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	suffix := fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s",
		t.keyCol, strings.Join(updates, ", "))

	batch := &pgx.Batch{}
	for _, rec := range recs {
		q := t.Builder().
			Insert(t.name).
			SetMap(entity.RowOf(rec)).
			Suffix(suffix)

		sql, args, err := q.ToSql()
		if err != nil {
			return 0, fmt.Errorf("build upsert: %w", err)
		}
		batch.Queue(sql, args...)
	}

	results := t.pool.SendBatch(ctx, batch)
	defer results.Close()

	var written int64
	for range recs {
		tag, err := results.Exec()
		if err != nil {
			return written, fmt.Errorf("upsert %s: %w", t.name, err)
		}
		written += tag.RowsAffected()
	}

	return written, nil
}
