package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"inkhub/internal/store"
	"inkhub/pkg/logger"
)

// NotifyChannel is the pg_notify channel the database triggers publish
// change events on.
const NotifyChannel = "inkhub_changes"

// Listener receives change events over a dedicated LISTEN connection and
// forwards them to subscribers. Payloads are JSON-encoded store.Event
// values emitted by row-level triggers.
type Listener struct {
	dsn     string
	backoff time.Duration
	events  chan store.Event
}

// NewListener creates a listener. Events are buffered so a slow consumer
// does not stall the connection loop.
func NewListener(dsn string) *Listener {
	return &Listener{
		dsn:     dsn,
		backoff: time.Second,
		events:  make(chan store.Event, 256),
	}
}

// Events returns the channel change events are delivered on. The channel is
// closed when Run exits.
func (l *Listener) Events() <-chan store.Event {
	return l.events
}

// Run listens until ctx is cancelled, reconnecting with backoff after
// connection failures. Events missed while disconnected are not replayed;
// the poll producer covers that window.
func (l *Listener) Run(ctx context.Context) {
	defer close(l.events)

	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn(ctx, "change listener disconnected", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.backoff):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}

	logger.Debug(ctx, "change listener connected", "channel", NotifyChannel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var ev store.Event
		if err := json.Unmarshal([]byte(notification.Payload), &ev); err != nil {
			logger.Warn(ctx, "malformed change notification", "error", err)
			continue
		}

		select {
		case l.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
