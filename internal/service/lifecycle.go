package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eonhq/eon-backend/internal/logger"
	"github.com/eonhq/eon-backend/internal/model"
	"github.com/eonhq/eon-backend/internal/queue"
	"github.com/eonhq/eon-backend/internal/repository"
)

// LifecycleStore is the slice of the event repository the lifecycle
// service needs.  Implemented by repository.EventRepo.
type LifecycleStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	Deactivate(ctx context.Context, id uint64) error
	ExpirePast(ctx context.Context, today string) (int64, error)
}

// Lifecycle deactivates events, either explicitly by their creator or
// automatically once their date has passed.
type Lifecycle struct {
	events        LifecycleStore
	subscriptions SubscriptionStore
	notifier      Notifier
	now           func() time.Time
}

// NewLifecycle constructs the lifecycle service.
func NewLifecycle(events LifecycleStore, subscriptions SubscriptionStore, notifier Notifier) *Lifecycle {
	return &Lifecycle{
		events:        events,
		subscriptions: subscriptions,
		notifier:      notifier,
		now:           time.Now,
	}
}

// ExpirePast deactivates every active event dated before today and
// returns how many rows changed.  The sweep is idempotent; running it
// twice in a row changes nothing the second time.
func (l *Lifecycle) ExpirePast(ctx context.Context) (int64, error) {
	today := l.now().UTC().Format("2006-01-02")
	n, err := l.events.ExpirePast(ctx, today)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Info("expired past events", zap.Int64("count", n))
	}
	return n, nil
}

// RunSweeper calls ExpirePast on the given interval until the context
// is cancelled.  One pass runs immediately on start so a long-stopped
// server catches up without waiting a full interval.
func (l *Lifecycle) RunSweeper(ctx context.Context, every time.Duration) {
	if _, err := l.ExpirePast(ctx); err != nil {
		logger.Log.Error("expiry sweep failed", zap.Error(err))
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := l.ExpirePast(ctx); err != nil {
				logger.Log.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// SoftDelete deactivates an event on behalf of its creator.  The row
// survives for audit and the event's subscribers and invitees are
// informed with a single batched notification carrying the creator's
// reason, or a generic cancellation line when none was given; a broker
// failure is logged but does not undo the delete.
func (l *Lifecycle) SoftDelete(ctx context.Context, eventID, callerID uint64, reason string) error {
	ev, err := l.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.CreatedBy != callerID {
		return repository.ErrForbidden
	}

	contacts, err := l.subscriptions.DistinctContactsByEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if err := l.events.Deactivate(ctx, eventID); err != nil {
		return err
	}

	if l.notifier != nil {
		message := strings.TrimSpace(reason)
		if message == "" {
			message = fmt.Sprintf("%s on %s has been cancelled", ev.Name, ev.Date)
		}
		note := queue.NewNotificationEvent(queue.ActionEventDeleted, eventID, message)
		for _, c := range contacts {
			note.Emails = append(note.Emails, c.Email)
			note.UserIDs = append(note.UserIDs, c.UserID)
		}
		_ = l.notifier.Publish(ctx, note)
	}
	return nil
}
