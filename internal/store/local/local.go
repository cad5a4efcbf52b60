// Package local implements the store contract on a single JSON file. It is
// the fallback used when the hosted database cannot be reached at startup,
// and doubles as an offline cache of the last known remote state.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"inkhub/internal/core/apperror"
	"inkhub/internal/domain/entity"
)

// DefaultPath is where the blob lives unless configured otherwise.
const DefaultPath = "inkhub-data.json"

// Store holds every collection in memory, keyed by table name, and rewrites
// the whole file after each mutation. Rows use db column names so the same
// patch machinery works against both backends.
type Store struct {
	path string

	mu     sync.Mutex
	tables map[string][]entity.Row
}

// Open loads the blob at path. A missing file yields an empty store; a file
// that exists but does not parse is an error, the caller must not silently
// start from scratch over live data.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		tables: make(map[string][]entity.Row),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &s.tables); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.tables == nil {
		s.tables = make(map[string][]entity.Row)
	}

	s.backfillUsernames()
	return s, nil
}

// backfillUsernames derives a username from the email local part for user
// rows written before usernames existed.
func (s *Store) backfillUsernames() {
	users := s.tables[entity.TableUsers]
	for i, row := range users {
		name, _ := row["username"].(string)
		email, _ := row["email"].(string)
		normalized := entity.NormalizeUsername(name, email)
		if normalized != name {
			users[i]["username"] = normalized
		}
	}
}

// save writes the blob atomically. Callers hold s.mu.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.tables, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal blob: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace blob: %w", err)
	}
	return nil
}

// ReplaceTable swaps out a whole collection and persists. Used to mirror
// remote state for the next offline run.
func (s *Store) ReplaceTable(table string, rows []entity.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = rows
	return s.save()
}

// keyEqual compares a stored key against a lookup key. Values that went
// through a JSON round trip come back as float64, so the comparison is
// numeric, not by type.
func keyEqual(a, b any) bool {
	return entity.SameKey(a, b)
}

// Rows adapts one collection in the blob to the store backend contract.
type Rows[T entity.Record] struct {
	store  *Store
	table  string
	keyCol string
}

// Collection returns the typed view over a table, keyed by "id".
func Collection[T entity.Record](s *Store, table string) *Rows[T] {
	return KeyedCollection[T](s, table, "id")
}

// KeyedCollection returns a typed view with an explicit key column.
func KeyedCollection[T entity.Record](s *Store, table, keyCol string) *Rows[T] {
	return &Rows[T]{store: s, table: table, keyCol: keyCol}
}

// SelectAll decodes every stored row into its record type.
func (r *Rows[T]) SelectAll(ctx context.Context) ([]T, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows := r.store.tables[r.table]
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		items = append(items, entity.FromRow[T](row))
	}
	return items, nil
}

// Insert prepends the record and persists.
func (r *Rows[T]) Insert(ctx context.Context, rec T) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	row := entity.RowOf(rec)
	key := row[r.keyCol]
	for _, existing := range r.store.tables[r.table] {
		if keyEqual(existing[r.keyCol], key) {
			return apperror.NewDuplicate(r.table, r.keyCol, fmt.Sprintf("%v", key))
		}
	}

	r.store.tables[r.table] = append([]entity.Row{row}, r.store.tables[r.table]...)
	return r.store.save()
}

// Update merges the patch into the stored row and persists.
func (r *Rows[T]) Update(ctx context.Context, key any, patch entity.Row) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, row := range r.store.tables[r.table] {
		if !keyEqual(row[r.keyCol], key) {
			continue
		}
		for k, v := range patch {
			if k == r.keyCol {
				continue
			}
			row[k] = v
		}
		return r.store.save()
	}

	return apperror.NewNotFound(r.table, fmt.Sprintf("%v", key))
}

// Delete removes the row and persists.
func (r *Rows[T]) Delete(ctx context.Context, key any) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows := r.store.tables[r.table]
	for i, row := range rows {
		if !keyEqual(row[r.keyCol], key) {
			continue
		}
		r.store.tables[r.table] = append(rows[:i], rows[i+1:]...)
		return r.store.save()
	}

	return apperror.NewNotFound(r.table, fmt.Sprintf("%v", key))
}
