package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eonhq/eon-backend/internal/model"
	"github.com/eonhq/eon-backend/internal/queue"
	"github.com/eonhq/eon-backend/internal/repository"
)

type fakeLifecycleStore struct {
	events map[uint64]*model.Event
}

func (f *fakeLifecycleStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	if ev, ok := f.events[id]; ok && ev.IsActive {
		return ev, nil
	}
	return nil, repository.ErrEventNotFound
}

func (f *fakeLifecycleStore) Deactivate(_ context.Context, id uint64) error {
	ev, ok := f.events[id]
	if !ok || !ev.IsActive {
		return repository.ErrEventNotFound
	}
	ev.IsActive = false
	return nil
}

func (f *fakeLifecycleStore) ExpirePast(_ context.Context, today string) (int64, error) {
	var n int64
	for _, ev := range f.events {
		if ev.IsActive && ev.Date < today {
			ev.IsActive = false
			n++
		}
	}
	return n, nil
}

type contactSubscriptions struct {
	fakeSubscriptions
	contacts []repository.Contact
}

func (c *contactSubscriptions) DistinctContactsByEvent(_ context.Context, _ uint64) ([]repository.Contact, error) {
	return c.contacts, nil
}

func newLifecycleFixture(events ...*model.Event) (*Lifecycle, *fakeLifecycleStore, *contactSubscriptions, *fakeNotifier) {
	store := &fakeLifecycleStore{events: map[uint64]*model.Event{}}
	for _, ev := range events {
		store.events[ev.ID] = ev
	}
	subs := &contactSubscriptions{}
	notifier := &fakeNotifier{ch: make(chan queue.NotificationEvent, 4)}
	l := NewLifecycle(store, subs, notifier)
	l.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return l, store, subs, notifier
}

func TestExpirePastIsIdempotent(t *testing.T) {
	past := testEvent()
	past.ID = 1
	past.Date = "2026-05-20"
	future := testEvent()
	future.ID = 2
	future.Date = "2026-07-01"
	l, store, _, _ := newLifecycleFixture(past, future)

	n, err := l.ExpirePast(context.Background())
	if err != nil {
		t.Fatalf("ExpirePast: %v", err)
	}
	if n != 1 {
		t.Errorf("first sweep changed %d rows, want 1", n)
	}
	if store.events[1].IsActive || !store.events[2].IsActive {
		t.Errorf("only the past event should be deactivated")
	}

	n, err = l.ExpirePast(context.Background())
	if err != nil {
		t.Fatalf("ExpirePast second run: %v", err)
	}
	if n != 0 {
		t.Errorf("second sweep changed %d rows, want 0", n)
	}
}

func TestSoftDeleteBatchesOneNotification(t *testing.T) {
	ev := testEvent()
	l, store, subs, notifier := newLifecycleFixture(ev)
	subs.contacts = []repository.Contact{
		{Email: "a@example.com", UserID: 1},
		{Email: "b@example.com", UserID: 2},
		{Email: "c@example.com", UserID: 3},
	}

	if err := l.SoftDelete(context.Background(), ev.ID, ev.CreatedBy, "venue flooded, refunds follow"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if store.events[ev.ID].IsActive {
		t.Errorf("event should be deactivated, not removed")
	}

	select {
	case note := <-notifier.ch:
		if note.Action != queue.ActionEventDeleted {
			t.Errorf("action = %q, want event_deleted", note.Action)
		}
		if note.Message != "venue flooded, refunds follow" {
			t.Errorf("message = %q, want the creator's reason forwarded verbatim", note.Message)
		}
		if len(note.Emails) != 3 || len(note.UserIDs) != 3 {
			t.Errorf("notification recipients = %v / %v, want all three batched", note.Emails, note.UserIDs)
		}
	default:
		t.Fatal("no deletion notification published")
	}
	select {
	case extra := <-notifier.ch:
		t.Errorf("unexpected second notification %+v, deletion must publish exactly one", extra)
	default:
	}
}

func TestSoftDeleteDefaultMessage(t *testing.T) {
	ev := testEvent()
	l, _, subs, notifier := newLifecycleFixture(ev)
	subs.contacts = []repository.Contact{{Email: "a@example.com", UserID: 1}}

	if err := l.SoftDelete(context.Background(), ev.ID, ev.CreatedBy, "   "); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	select {
	case note := <-notifier.ch:
		if note.Message != "Winter Gala on 2026-12-01 has been cancelled" {
			t.Errorf("message = %q, want the stock cancellation text when no reason is given", note.Message)
		}
	default:
		t.Fatal("no deletion notification published")
	}
}

func TestSoftDeleteRequiresCreator(t *testing.T) {
	ev := testEvent()
	l, store, _, notifier := newLifecycleFixture(ev)

	err := l.SoftDelete(context.Background(), ev.ID, ev.CreatedBy+1, "")
	if !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if !store.events[ev.ID].IsActive {
		t.Errorf("foreign delete must not deactivate the event")
	}
	select {
	case note := <-notifier.ch:
		t.Errorf("unexpected notification %+v", note)
	default:
	}
}

func TestSoftDeleteUnknownEvent(t *testing.T) {
	l, _, _, _ := newLifecycleFixture()

	if err := l.SoftDelete(context.Background(), 999, 7, ""); !errors.Is(err, repository.ErrEventNotFound) {
		t.Errorf("err = %v, want ErrEventNotFound", err)
	}
}
