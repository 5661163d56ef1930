package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/eonhq/eon-backend/internal/model"
)

// InvitationRepo provides persistence for organizer-issued discount
// offers.  Invitations are addressed to an email; the user reference is
// bound later, when the invited email registers or logs in.
type InvitationRepo struct {
	db *sql.DB
}

// NewInvitationRepo returns a new InvitationRepo bound to the given database.
func NewInvitationRepo(db *sql.DB) *InvitationRepo { return &InvitationRepo{db: db} }

// Create inserts an invitation after verifying that the caller created
// the target event.  sql.ErrNoRows is returned when the event does not
// exist, ErrForbidden when it belongs to another organizer and
// ErrDuplicate when the email was already invited to this event.
func (r *InvitationRepo) Create(ctx context.Context, inv *model.Invitation, callerID uint64) error {
	var creator uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT created_by FROM events WHERE id = ? AND is_active = 1`, inv.EventID).Scan(&creator)
	if err != nil {
		return err
	}
	if creator != callerID {
		return ErrForbidden
	}

	inv.Email = strings.ToLower(strings.TrimSpace(inv.Email))
	// If the invited email already has an account, bind it immediately.
	var userID sql.NullInt64
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = ? LIMIT 1`, inv.Email).Scan(&userID.Int64)
	if err == nil {
		userID.Valid = true
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (event_id, email, user_id, discount_percentage, is_active)
		 VALUES (?, ?, ?, ?, 1)`,
		inv.EventID, inv.Email, userID, inv.DiscountPercentage)
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
	inv.ID = uint64(id)
	if userID.Valid {
		uid := uint64(userID.Int64)
		inv.UserID = &uid
	}
	inv.IsActive = true
	return nil
}

// GetActiveByUserAndEvent returns the active invitation bound to a
// (user, event) pair, or ErrInvitationNotFound.  Absence is the normal
// case for most users and is converted to a zero discount upstream.
func (r *InvitationRepo) GetActiveByUserAndEvent(ctx context.Context, userID, eventID uint64) (*model.Invitation, error) {
	const q = `SELECT id, event_id, email, user_id, discount_percentage, is_active, created_at
		FROM invitations WHERE user_id = ? AND event_id = ? AND is_active = 1 LIMIT 1`
	inv, err := scanInvitation(r.db.QueryRowContext(ctx, q, userID, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvitationNotFound
	}
	return inv, err
}

// ListActiveByEvent returns every active invitation for an event in
// creation order.  Used to build the organizer's invitee list.
func (r *InvitationRepo) ListActiveByEvent(ctx context.Context, eventID uint64) ([]model.Invitation, error) {
	const q = `SELECT id, event_id, email, user_id, discount_percentage, is_active, created_at
		FROM invitations WHERE event_id = ? AND is_active = 1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// Revoke deactivates an invitation after verifying that the caller owns
// the event it belongs to.  sql.ErrNoRows when the invitation does not
// exist, ErrForbidden when the event belongs to someone else.
func (r *InvitationRepo) Revoke(ctx context.Context, invitationID, callerID uint64) error {
	var creator uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT e.created_by FROM invitations i
		 JOIN events e ON e.id = i.event_id
		 WHERE i.id = ?`, invitationID).Scan(&creator)
	if err != nil {
		return err
	}
	if creator != callerID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE invitations SET is_active = 0 WHERE id = ?`, invitationID)
	return err
}

// BindUser attaches a registered user to every invitation addressed to
// their email.  Called on registration and login so that discounts
// become resolvable for the account.
func (r *InvitationRepo) BindUser(ctx context.Context, email string, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET user_id = ? WHERE email = ? AND user_id IS NULL`,
		userID, strings.ToLower(strings.TrimSpace(email)))
	return err
}

func scanInvitation(row interface{ Scan(...any) error }) (*model.Invitation, error) {
	var (
		inv model.Invitation
		uid sql.NullInt64
	)
	err := row.Scan(&inv.ID, &inv.EventID, &inv.Email, &uid,
		&inv.DiscountPercentage, &inv.IsActive, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	if uid.Valid {
		u := uint64(uid.Int64)
		inv.UserID = &u
	}
	return &inv, nil
}
