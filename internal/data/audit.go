package data

import (
	"context"
	"sync"
	"time"

	appctx "inkhub/internal/core/context"
	"inkhub/internal/core/id"
	"inkhub/internal/domain/entity"
	"inkhub/pkg/logger"
)

// Auditor appends trail entries. Writes are fire-and-forget: the mirror is
// updated immediately and the backend write happens on its own goroutine,
// so an audit outage never fails the operation being audited.
type Auditor struct {
	trail *Collection[entity.AuditEntry]
	wg    sync.WaitGroup
}

// NewAuditor creates an auditor over the trail collection.
func NewAuditor(trail *Collection[entity.AuditEntry]) *Auditor {
	return &Auditor{trail: trail}
}

// Record appends one entry attributed to the session identity on ctx, or
// "Unknown" when there is none.
func (a *Auditor) Record(ctx context.Context, action, module, details string) {
	user := appctx.GetUsername(ctx)
	if user == "" {
		user = "Unknown"
	}

	e := entity.AuditEntry{
		ID:        id.New(),
		Timestamp: time.Now().UTC(),
		User:      user,
		Action:    action,
		Module:    module,
		Details:   details,
	}

	a.trail.InsertLocal(e)

	bg := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.trail.Backend().Insert(bg, e); err != nil {
			logger.Warn(bg, "audit write failed",
				"module", module, "action", action, "error", err)
		}
	}()
}

// Wait blocks until in-flight audit writes finish. Called on shutdown.
func (a *Auditor) Wait() {
	a.wg.Wait()
}
