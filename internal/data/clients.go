package data

import (
	"context"
	"fmt"

	"inkhub/internal/core/apperror"
	"inkhub/internal/core/id"
	"inkhub/internal/domain/entity"
)

// CreateClient adds a client to the shared client book.
func (l *Layer) CreateClient(ctx context.Context, c entity.Client) (entity.Client, error) {
	if c.ID == 0 {
		c.ID = id.New()
	}
	if err := c.Validate(ctx); err != nil {
		return entity.Client{}, err
	}

	l.clients.InsertLocal(c)
	if err := l.persist(ctx, entity.TableClients, "insert", func() error {
		return l.clients.Backend().Insert(ctx, c)
	}); err != nil {
		return entity.Client{}, err
	}

	l.audit.Record(ctx, entity.ActionCreate, ModuleClients,
		fmt.Sprintf("Added client: %s", c.Name))
	return c, nil
}

// UpdateClient applies a partial update to a client.
func (l *Layer) UpdateClient(ctx context.Context, clientID int64, patch entity.Row) (entity.Client, error) {
	prior, ok := l.clients.Get(clientID)
	if !ok {
		return entity.Client{}, apperror.NewNotFound(entity.TableClients, clientID)
	}

	patch = l.clients.WithoutKey(patch)
	merged := prior
	entity.ApplyPatch(&merged, patch)
	if err := merged.Validate(ctx); err != nil {
		return entity.Client{}, err
	}

	l.clients.UpdateLocal(clientID, patch)
	if err := l.persist(ctx, entity.TableClients, "update", func() error {
		return l.clients.Backend().Update(ctx, clientID, patch)
	}); err != nil {
		return entity.Client{}, err
	}

	l.audit.Record(ctx, entity.ActionUpdate, ModuleClients,
		fmt.Sprintf("Updated client ID %d", clientID))
	return merged, nil
}

// DeleteClient removes a client.
func (l *Layer) DeleteClient(ctx context.Context, clientID int64) error {
	if _, ok := l.clients.Get(clientID); !ok {
		return apperror.NewNotFound(entity.TableClients, clientID)
	}

	l.clients.DeleteLocal(clientID)
	if err := l.persist(ctx, entity.TableClients, "delete", func() error {
		return l.clients.Backend().Delete(ctx, clientID)
	}); err != nil {
		return err
	}

	l.audit.Record(ctx, entity.ActionDelete, ModuleClients,
		fmt.Sprintf("Deleted client ID %d", clientID))
	return nil
}
