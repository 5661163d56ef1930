package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eonhq/eon-backend/internal/model"
)

// PaymentRepo reads externally produced payment rows.  Payments are
// opaque facts keyed by ID; this service never inserts or modifies
// them.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// GetByID returns a payment or ErrPaymentNotFound.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	var p model.Payment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, total_amount, discount_amount FROM payments WHERE id = ? LIMIT 1`,
		id).Scan(&p.ID, &p.TotalAmount, &p.DiscountAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
