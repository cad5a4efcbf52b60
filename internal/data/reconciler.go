package data

import (
	"context"
	"sync"
	"time"

	"inkhub/internal/core/apperror"
	"inkhub/internal/domain/entity"
	"inkhub/internal/store"
	"inkhub/pkg/logger"
)

// DefaultPollInterval is how often the session token is re-fetched.
const DefaultPollInterval = 2 * time.Second

// ReconcilerConfig wires the reconciler to the active session.
type ReconcilerConfig struct {
	// PollInterval between session token fetches. Defaults to
	// DefaultPollInterval.
	PollInterval time.Duration
	// Session returns the current session identity and its token. ok is
	// false when nobody is logged in.
	Session func() (username, token string, ok bool)
	// OnSessionConflict is invoked exactly once when the remote token no
	// longer matches the local one.
	OnSessionConflict func()
}

// Reconciler keeps the mirrors eventually consistent with the remote store.
// Change events arrive over the push channel; a fixed-interval poll of the
// session token covers the window where the push channel is down and
// detects logins from another device. Everything is consumed on one
// goroutine, so mirror merges never race each other.
type Reconciler struct {
	layer *Layer
	cfg   ReconcilerConfig

	mu      sync.Mutex
	latched bool
}

// NewReconciler creates a reconciler for a remote-mode layer.
func NewReconciler(layer *Layer, cfg ReconcilerConfig) *Reconciler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Reconciler{layer: layer, cfg: cfg}
}

// Run consumes until ctx is cancelled. In local mode there is no remote
// store to reconcile against and Run returns immediately.
func (r *Reconciler) Run(ctx context.Context) error {
	remote := r.layer.Remote()
	if remote == nil {
		logger.Info(ctx, "reconciler idle in local mode")
		return nil
	}

	events, err := remote.Subscribe(ctx)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.layer.ApplyEvent(ctx, ev)
			r.checkSessionEvent(ev)
		case <-ticker.C:
			r.pollSession(ctx)
		}
	}
}

// checkSessionEvent watches pushed user updates for a superseded session.
func (r *Reconciler) checkSessionEvent(ev store.Event) {
	if ev.Table != entity.TableUsers || ev.Kind == store.KindDelete {
		return
	}
	username, token, ok := r.session()
	if !ok {
		return
	}
	name, _ := ev.Row["username"].(string)
	if name != username {
		return
	}
	remote, present := ev.Row["session_token"]
	if !present {
		return
	}
	if remoteToken, _ := remote.(string); remoteToken != token {
		r.fireConflict()
	}
}

// pollSession re-fetches the session token for the logged-in user.
func (r *Reconciler) pollSession(ctx context.Context) {
	username, token, ok := r.session()
	if !ok {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.PollInterval)
	defer cancel()

	remoteToken, err := r.layer.Remote().SessionToken(fetchCtx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			// Account removed remotely; the session is no longer valid.
			r.fireConflict()
			return
		}
		logger.Debug(ctx, "session poll failed", "user", username, "error", err)
		return
	}

	if remoteToken != token {
		r.fireConflict()
	}
}

func (r *Reconciler) session() (string, string, bool) {
	if r.cfg.Session == nil {
		return "", "", false
	}
	return r.cfg.Session()
}

// fireConflict triggers the forced logout. The latch stops push and poll
// from both firing for the same conflict; Rearm opens it again after the
// next successful login.
func (r *Reconciler) fireConflict() {
	r.mu.Lock()
	if r.latched {
		r.mu.Unlock()
		return
	}
	r.latched = true
	r.mu.Unlock()

	if r.cfg.OnSessionConflict != nil {
		r.cfg.OnSessionConflict()
	}
}

// Rearm re-enables conflict detection for a new session.
func (r *Reconciler) Rearm() {
	r.mu.Lock()
	r.latched = false
	r.mu.Unlock()
}
