package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eonhq/eon-backend/internal/model"
)

// SubscriptionRepo provides persistence for ticket purchases.  Rows are
// inserted exactly once inside the reservation transaction and are
// immutable afterwards.
type SubscriptionRepo struct {
	db *sql.DB
}

// NewSubscriptionRepo returns a new SubscriptionRepo bound to the given database.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// CreateTx inserts a subscription within the scope of an existing
// transaction and populates the generated ID.  The caller (the ticket
// ledger) commits or rolls back.
func (r *SubscriptionRepo) CreateTx(ctx context.Context, tx *sql.Tx, sub *model.Subscription) error {
	const q = `INSERT INTO subscriptions (event_id, user_id, no_of_tickets, payment_id, is_active)
		VALUES (?, ?, ?, ?, 1)`
	res, err := tx.ExecContext(ctx, q, sub.EventID, sub.UserID, sub.NoOfTickets, sub.PaymentID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sub.ID = uint64(id)
	sub.IsActive = true
	return nil
}

// GetActiveByUserAndEvent returns the caller's active subscription for
// an event, or ErrSubscriptionNotFound when none exists.  Absence is an
// expected state on the detail view.
func (r *SubscriptionRepo) GetActiveByUserAndEvent(ctx context.Context, userID, eventID uint64) (*model.Subscription, error) {
	const q = `SELECT id, event_id, user_id, no_of_tickets, payment_id, is_active, created_at
		FROM subscriptions WHERE user_id = ? AND event_id = ? AND is_active = 1 LIMIT 1`
	var (
		sub model.Subscription
		pay sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, userID, eventID).Scan(
		&sub.ID, &sub.EventID, &sub.UserID, &sub.NoOfTickets, &pay, &sub.IsActive, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	if pay.Valid {
		id := uint64(pay.Int64)
		sub.PaymentID = &id
	}
	return &sub, nil
}

// ExistsForUserAndEvent reports whether the user holds any subscription
// for the event.  Used for the is_subscribed flag on listing entries.
func (r *SubscriptionRepo) ExistsForUserAndEvent(ctx context.Context, userID, eventID uint64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_id = ? AND event_id = ?)`,
		userID, eventID).Scan(&ok)
	return ok, err
}

// SubscriptionListItem is one row of the subscription listing: the
// subscription joined with the subscriber's contact details and the
// paid amount.  PaidAmount is zero for free subscriptions.
type SubscriptionListItem struct {
	ID            uint64 `json:"id"`
	EventID       uint64 `json:"event_id"`
	UserID        uint64 `json:"user_id"`
	NoOfTickets   uint32 `json:"no_of_tickets"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
	PaidAmount    uint32 `json:"paid_amount"`
}

// ListByEvent returns all subscriptions, optionally restricted to one
// event, joined with subscriber contact details.  Paid and unpaid rows
// come back from one query; COALESCE substitutes zero where no payment
// is attached.
func (r *SubscriptionRepo) ListByEvent(ctx context.Context, eventID uint64) ([]SubscriptionListItem, error) {
	q := `SELECT s.id, s.event_id, s.user_id, s.no_of_tickets, u.email,
	             COALESCE(up.name, ''), COALESCE(up.contact_number, ''),
	             COALESCE(p.total_amount, 0)
	      FROM subscriptions s
	      JOIN users u ON u.id = s.user_id
	      LEFT JOIN user_profiles up ON up.user_id = s.user_id
	      LEFT JOIN payments p ON p.id = s.payment_id`
	args := []any{}
	if eventID != 0 {
		q += ` WHERE s.event_id = ?`
		args = append(args, eventID)
	}
	q += ` ORDER BY s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SubscriptionListItem, 0)
	for rows.Next() {
		var it SubscriptionListItem
		if err := rows.Scan(&it.ID, &it.EventID, &it.UserID, &it.NoOfTickets,
			&it.Email, &it.Name, &it.ContactNumber, &it.PaidAmount); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Contact is a (email, user id) pair used for batched notifications.
type Contact struct {
	Email  string
	UserID uint64
}

// DistinctContactsByEvent returns the distinct contact pairs of every
// user holding any subscription to the event, regardless of active
// flag.  The soft-delete path hands this list to the notifier in a
// single batch.
func (r *SubscriptionRepo) DistinctContactsByEvent(ctx context.Context, eventID uint64) ([]Contact, error) {
	const q = `SELECT DISTINCT u.email, u.id
	           FROM subscriptions s
	           JOIN users u ON u.id = s.user_id
	           WHERE s.event_id = ?`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Contact, 0)
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.Email, &c.UserID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
