package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eonhq/eon-backend/internal/model"
	"github.com/eonhq/eon-backend/internal/queue"
	"github.com/eonhq/eon-backend/internal/repository"
)

type fakeEventReader struct {
	events map[uint64]*model.Event
}

func (f *fakeEventReader) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	if ev, ok := f.events[id]; ok && ev.IsActive {
		return ev, nil
	}
	return nil, repository.ErrEventNotFound
}

// fakeLedger mirrors the conditional-update semantics of the real
// reservation: check and decrement under one lock, insert while the
// lock is held.
type fakeLedger struct {
	mu        sync.Mutex
	remaining map[uint64]uint32
}

func (f *fakeLedger) Reserve(_ context.Context, eventID uint64, count uint32, insert func(tx *sql.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	left, ok := f.remaining[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	if left < count {
		return repository.ErrInsufficientTickets
	}
	if err := insert(nil); err != nil {
		return err
	}
	f.remaining[eventID] = left - count
	return nil
}

type fakeWriter struct {
	mu   sync.Mutex
	next uint64
	rows []*model.Subscription
}

func (f *fakeWriter) CreateTx(_ context.Context, _ *sql.Tx, sub *model.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	sub.ID = f.next
	f.rows = append(f.rows, sub)
	return nil
}

type fakeNotifier struct {
	ch chan queue.NotificationEvent
}

func (f *fakeNotifier) Publish(_ context.Context, event queue.NotificationEvent) error {
	f.ch <- event
	return nil
}

func newSubscribeFixture(ev *model.Event) (*Subscriptions, *fakeLedger, *fakeWriter, *fakePayments, *fakeNotifier) {
	events := &fakeEventReader{events: map[uint64]*model.Event{ev.ID: ev}}
	ledger := &fakeLedger{remaining: map[uint64]uint32{ev.ID: ev.NoOfTickets - ev.SoldTickets}}
	writer := &fakeWriter{}
	payments := &fakePayments{rows: map[uint64]*model.Payment{}}
	notifier := &fakeNotifier{ch: make(chan queue.NotificationEvent, 64)}
	s := NewSubscriptions(events, ledger, writer, payments, notifier)
	s.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s, ledger, writer, payments, notifier
}

func freeEvent() *model.Event {
	ev := testEvent()
	ev.SubscriptionFee = 0
	return ev
}

func TestSubscribeFreeEvent(t *testing.T) {
	s, ledger, _, _, notifier := newSubscribeFixture(freeEvent())

	conf, err := s.Subscribe(context.Background(), 42, 10, 3, nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if conf.Subscription.ID == 0 || !conf.Subscription.IsActive {
		t.Errorf("subscription = %+v, want persisted active row", conf.Subscription)
	}
	if conf.Subscription.PaymentID != nil {
		t.Errorf("free event must not reference a payment")
	}
	if conf.Receipt != nil {
		t.Errorf("free event must not produce a receipt")
	}
	if left := ledger.remaining[10]; left != 57 {
		t.Errorf("remaining = %d, want 57", left)
	}

	select {
	case note := <-notifier.ch:
		if note.Action != queue.ActionSubscriptionConfirmed || note.EventID != 10 {
			t.Errorf("notification = %+v, want subscription_confirmed for event 10", note)
		}
	case <-time.After(time.Second):
		t.Errorf("no confirmation notification published")
	}
}

func TestSubscribePaidEventWithPayment(t *testing.T) {
	s, _, _, payments, _ := newSubscribeFixture(testEvent())
	paymentID := uint64(77)
	payments.rows[paymentID] = &model.Payment{ID: paymentID, TotalAmount: 1000, DiscountAmount: 250}

	conf, err := s.Subscribe(context.Background(), 42, 10, 2, &paymentID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if conf.Subscription.PaymentID == nil || *conf.Subscription.PaymentID != paymentID {
		t.Errorf("payment_id = %v, want 77", conf.Subscription.PaymentID)
	}
	r := conf.Receipt
	if r == nil {
		t.Fatal("paid purchase must produce a receipt")
	}
	if r.Amount != 1000 || r.NoOfTickets != 2 || r.EventName != "Winter Gala" || r.EventDate != "2026-12-01" {
		t.Errorf("receipt = %+v", r)
	}
}

func TestSubscribePaidEventWithoutPayment(t *testing.T) {
	s, ledger, writer, _, _ := newSubscribeFixture(testEvent())

	_, err := s.Subscribe(context.Background(), 42, 10, 2, nil)
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
	if ledger.remaining[10] != 60 {
		t.Errorf("rejected purchase must not touch the ledger")
	}
	if len(writer.rows) != 0 {
		t.Errorf("rejected purchase must not persist a subscription")
	}
}

func TestSubscribeValidation(t *testing.T) {
	s, _, _, _, _ := newSubscribeFixture(freeEvent())

	if _, err := s.Subscribe(context.Background(), 42, 10, 0, nil); !errors.Is(err, ErrMissingFields) {
		t.Errorf("zero tickets: err = %v, want ErrMissingFields", err)
	}
	if _, err := s.Subscribe(context.Background(), 42, 0, 1, nil); !errors.Is(err, ErrMissingFields) {
		t.Errorf("zero event: err = %v, want ErrMissingFields", err)
	}
	if _, err := s.Subscribe(context.Background(), 42, 999, 1, nil); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("unknown event: err = %v, want ErrInvalidEvent", err)
	}
}

func TestSubscribePastEventRejected(t *testing.T) {
	ev := freeEvent()
	ev.Date = "2026-05-30"
	s, _, _, _, _ := newSubscribeFixture(ev)

	if _, err := s.Subscribe(context.Background(), 42, 10, 1, nil); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("past event: err = %v, want ErrInvalidEvent", err)
	}
}

func TestSubscribeInsufficientTickets(t *testing.T) {
	ev := freeEvent()
	ev.SoldTickets = 98 // 2 left
	s, _, _, _, _ := newSubscribeFixture(ev)

	if _, err := s.Subscribe(context.Background(), 42, 10, 3, nil); !errors.Is(err, repository.ErrInsufficientTickets) {
		t.Errorf("err = %v, want ErrInsufficientTickets", err)
	}
}

// Concurrent buyers racing for limited capacity must never oversell:
// the number of granted tickets equals exactly the initial remainder.
func TestSubscribeNeverOversells(t *testing.T) {
	ev := freeEvent()
	ev.NoOfTickets = 10
	ev.SoldTickets = 0
	s, ledger, writer, _, _ := newSubscribeFixture(ev)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(user uint64) {
			defer wg.Done()
			_, _ = s.Subscribe(context.Background(), user, 10, 1, nil)
		}(uint64(100 + i))
	}
	wg.Wait()

	if ledger.remaining[10] != 0 {
		t.Errorf("remaining = %d, want 0", ledger.remaining[10])
	}
	var granted uint32
	for _, sub := range writer.rows {
		granted += sub.NoOfTickets
	}
	if granted != 10 {
		t.Errorf("granted tickets = %d, want exactly 10", granted)
	}
}
