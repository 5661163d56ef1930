package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eonhq/eon-backend/internal/model"
	"github.com/eonhq/eon-backend/internal/queue"
	"github.com/eonhq/eon-backend/internal/repository"
)

// ErrMissingFields is returned when a purchase request is incomplete,
// including a paid event without a payment reference.
var ErrMissingFields = errors.New("missing required fields")

// ErrInvalidEvent is returned when the target event does not exist,
// is inactive, or lies in the past.
var ErrInvalidEvent = errors.New("invalid event")

// Ledger performs the atomic reservation.  Implemented by
// repository.EventRepo.
type Ledger interface {
	Reserve(ctx context.Context, eventID uint64, count uint32, insert func(tx *sql.Tx) error) error
}

// SubscriptionWriter inserts the purchase row inside the reservation
// transaction.  Implemented by repository.SubscriptionRepo.
type SubscriptionWriter interface {
	CreateTx(ctx context.Context, tx *sql.Tx, sub *model.Subscription) error
}

// EventReader loads events for validation and receipts.  Implemented
// by repository.EventRepo.
type EventReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// Notifier dispatches a notification event to the broker.
// Implemented by queue.Publisher.
type Notifier interface {
	Publish(ctx context.Context, event queue.NotificationEvent) error
}

// Receipt summarises a paid purchase for the confirmation response;
// free events produce no receipt.
type Receipt struct {
	PaymentID     uint64 `json:"payment_id"`
	Amount        uint32 `json:"amount"`
	NoOfTickets   uint32 `json:"no_of_tickets"`
	EventName     string `json:"event_name"`
	EventDate     string `json:"event_date"`
	EventTime     string `json:"event_time"`
	EventLocation string `json:"event_location"`
}

// Confirmation is the result of a successful purchase.
type Confirmation struct {
	Subscription *model.Subscription `json:"subscription"`
	Receipt      *Receipt            `json:"receipt,omitempty"`
}

// Subscriptions runs the purchase workflow.  Validation, the atomic
// capacity reservation and the subscription insert happen before the
// confirmation is returned; the broker notification is dispatched
// afterwards and its failure never fails the purchase.
type Subscriptions struct {
	events   EventReader
	ledger   Ledger
	writer   SubscriptionWriter
	payments PaymentStore
	notifier Notifier
	now      func() time.Time
}

// NewSubscriptions constructs the purchase workflow service.
func NewSubscriptions(events EventReader, ledger Ledger, writer SubscriptionWriter, payments PaymentStore, notifier Notifier) *Subscriptions {
	return &Subscriptions{
		events:   events,
		ledger:   ledger,
		writer:   writer,
		payments: payments,
		notifier: notifier,
		now:      time.Now,
	}
}

// Subscribe purchases tickets for the user.  The capacity check and
// the decrement happen in one transaction with the subscription
// insert, so two buyers racing for the last tickets can never both
// succeed.  paymentID is required for paid events and ignored for
// free ones.
func (s *Subscriptions) Subscribe(ctx context.Context, userID, eventID uint64, tickets uint32, paymentID *uint64) (*Confirmation, error) {
	if eventID == 0 || tickets == 0 {
		return nil, ErrMissingFields
	}

	ev, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, repository.ErrEventNotFound) {
		return nil, ErrInvalidEvent
	}
	if err != nil {
		return nil, err
	}
	if ev.Date < s.now().UTC().Format("2006-01-02") {
		return nil, ErrInvalidEvent
	}

	var payment *model.Payment
	if ev.SubscriptionFee > 0 {
		if paymentID == nil {
			return nil, ErrMissingFields
		}
		payment, err = s.payments.GetByID(ctx, *paymentID)
		if err != nil {
			return nil, err
		}
	}

	sub := &model.Subscription{
		EventID:     eventID,
		UserID:      userID,
		NoOfTickets: tickets,
		IsActive:    true,
	}
	if payment != nil {
		sub.PaymentID = paymentID
	}

	err = s.ledger.Reserve(ctx, eventID, tickets, func(tx *sql.Tx) error {
		return s.writer.CreateTx(ctx, tx, sub)
	})
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return nil, ErrInvalidEvent
	case err != nil:
		return nil, err
	}

	confirmation := &Confirmation{Subscription: sub}
	if payment != nil {
		confirmation.Receipt = &Receipt{
			PaymentID:     payment.ID,
			Amount:        payment.TotalAmount,
			NoOfTickets:   tickets,
			EventName:     ev.Name,
			EventDate:     ev.Date,
			EventTime:     ev.Time,
			EventLocation: ev.Location,
		}
	}

	if s.notifier != nil {
		note := queue.NewNotificationEvent(queue.ActionSubscriptionConfirmed, eventID,
			fmt.Sprintf("%d ticket(s) confirmed for %s on %s", tickets, ev.Name, ev.Date))
		note.UserIDs = []uint64{userID}
		go func() { _ = s.notifier.Publish(context.Background(), note) }()
	}

	return confirmation, nil
}
