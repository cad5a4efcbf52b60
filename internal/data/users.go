package data

import (
	"context"
	"fmt"

	"inkhub/internal/core/apperror"
	"inkhub/internal/domain/entity"
)

// CreateUser adds an account. The password is expected to be hashed
// already; the auth service owns hashing.
func (l *Layer) CreateUser(ctx context.Context, u entity.User) (entity.User, error) {
	u.Username = entity.NormalizeUsername(u.Username, u.Email)
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	if err := u.Validate(ctx); err != nil {
		return entity.User{}, err
	}
	if _, exists := l.users.Get(u.Username); exists {
		return entity.User{}, apperror.NewDuplicate(entity.TableUsers, "username", u.Username)
	}

	l.users.InsertLocal(u)
	if err := l.persist(ctx, entity.TableUsers, "insert", func() error {
		return l.users.Backend().Insert(ctx, u)
	}); err != nil {
		return entity.User{}, err
	}

	l.audit.Record(ctx, entity.ActionCreate, ModuleUsers,
		fmt.Sprintf("Added user: %s", u.Username))
	return u, nil
}

// UpdateUser applies a partial update to an account.
func (l *Layer) UpdateUser(ctx context.Context, username string, patch entity.Row) (entity.User, error) {
	username = entity.NormalizeUsername(username, "")
	prior, ok := l.users.Get(username)
	if !ok {
		return entity.User{}, apperror.NewNotFound(entity.TableUsers, username)
	}

	patch = l.users.WithoutKey(patch)
	merged := prior
	entity.ApplyPatch(&merged, patch)
	merged.Username = prior.Username
	if err := merged.Validate(ctx); err != nil {
		return entity.User{}, err
	}

	l.users.UpdateLocal(username, patch)
	if err := l.persist(ctx, entity.TableUsers, "update", func() error {
		return l.users.Backend().Update(ctx, username, patch)
	}); err != nil {
		return entity.User{}, err
	}

	l.audit.Record(ctx, entity.ActionUpdate, ModuleUsers,
		fmt.Sprintf("Updated user: %s", username))
	return merged, nil
}

// DeleteUser removes an account. Password changes and deletions are
// critical events in the trail.
func (l *Layer) DeleteUser(ctx context.Context, username string) error {
	username = entity.NormalizeUsername(username, "")
	if _, ok := l.users.Get(username); !ok {
		return apperror.NewNotFound(entity.TableUsers, username)
	}

	l.users.DeleteLocal(username)
	if err := l.persist(ctx, entity.TableUsers, "delete", func() error {
		return l.users.Backend().Delete(ctx, username)
	}); err != nil {
		return err
	}

	l.audit.Record(ctx, entity.ActionCritical, ModuleUsers,
		fmt.Sprintf("Deleted user: %s", username))
	return nil
}

// SetSessionToken writes a fresh session token for a user and waits for the
// write to land. Login depends on the token being durable before the local
// session is established, otherwise the reconciler could observe a stale
// token and force an immediate logout.
func (l *Layer) SetSessionToken(ctx context.Context, username, token string) error {
	username = entity.NormalizeUsername(username, "")
	if _, ok := l.users.Get(username); !ok {
		return apperror.NewNotFound(entity.TableUsers, username)
	}

	patch := entity.Row{"session_token": token}
	if err := l.users.Backend().Update(ctx, username, patch); err != nil {
		return err
	}
	l.users.UpdateLocal(username, patch)
	return nil
}

// SetPassword replaces an account's stored password hash.
func (l *Layer) SetPassword(ctx context.Context, username, hash string) error {
	username = entity.NormalizeUsername(username, "")
	if _, ok := l.users.Get(username); !ok {
		return apperror.NewNotFound(entity.TableUsers, username)
	}

	patch := entity.Row{"password": hash}
	l.users.UpdateLocal(username, patch)
	if err := l.persist(ctx, entity.TableUsers, "update", func() error {
		return l.users.Backend().Update(ctx, username, patch)
	}); err != nil {
		return err
	}

	l.audit.Record(ctx, entity.ActionCritical, ModuleUsers,
		fmt.Sprintf("Password changed for user: %s", username))
	return nil
}
