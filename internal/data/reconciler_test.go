package data

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inkhub/internal/domain/entity"
	"inkhub/internal/store"
)

func sessionEvent(username, token string) store.Event {
	return store.Event{
		Table: entity.TableUsers,
		Kind:  store.KindUpdate,
		Row:   entity.Row{"username": username, "session_token": token},
	}
}

func TestSessionConflictFiresOnce(t *testing.T) {
	l := newTestLayer(t)

	var fired int
	r := NewReconciler(l, ReconcilerConfig{
		Session:           func() (string, string, bool) { return "jane", "t1", true },
		OnSessionConflict: func() { fired++ },
	})

	// Two consecutive notifications with the superseding token trigger a
	// single logout.
	r.checkSessionEvent(sessionEvent("jane", "t2"))
	r.checkSessionEvent(sessionEvent("jane", "t2"))
	assert.Equal(t, 1, fired)

	// A new login re-arms the latch.
	r.Rearm()
	r.checkSessionEvent(sessionEvent("jane", "t3"))
	assert.Equal(t, 2, fired)
}

func TestSessionConflictIgnoresOtherUsers(t *testing.T) {
	l := newTestLayer(t)

	var fired int
	r := NewReconciler(l, ReconcilerConfig{
		Session:           func() (string, string, bool) { return "jane", "t1", true },
		OnSessionConflict: func() { fired++ },
	})

	r.checkSessionEvent(sessionEvent("bob", "t2"))
	r.checkSessionEvent(sessionEvent("jane", "t1"))
	// Events without a token column say nothing about the session.
	r.checkSessionEvent(store.Event{
		Table: entity.TableUsers,
		Kind:  store.KindUpdate,
		Row:   entity.Row{"username": "jane", "email": "jane@example.com"},
	})
	assert.Zero(t, fired)
}

func TestSessionConflictNoSession(t *testing.T) {
	l := newTestLayer(t)

	var fired int
	r := NewReconciler(l, ReconcilerConfig{
		Session:           func() (string, string, bool) { return "", "", false },
		OnSessionConflict: func() { fired++ },
	})

	r.checkSessionEvent(sessionEvent("jane", "t2"))
	assert.Zero(t, fired)
}
