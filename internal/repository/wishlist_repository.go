package repository

import (
	"context"
	"database/sql"
)

// WishListRepo persists (user, event) saved-interest pairs.  The pair
// is unique per user and event; entries have no lifecycle logic of
// their own.
type WishListRepo struct {
	db *sql.DB
}

// NewWishListRepo returns a new WishListRepo bound to the given database.
func NewWishListRepo(db *sql.DB) *WishListRepo { return &WishListRepo{db: db} }

// Add saves an event to the user's wishlist.  A second add of the same
// pair returns ErrDuplicate.
func (r *WishListRepo) Add(ctx context.Context, userID, eventID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wishlists (user_id, event_id) VALUES (?, ?)`, userID, eventID)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// Remove deletes the pair.  Removing an absent pair is a no-op; the
// reported row count lets handlers answer 404 when nothing matched.
func (r *WishListRepo) Remove(ctx context.Context, userID, eventID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlists WHERE user_id = ? AND event_id = ?`, userID, eventID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// EventIDs returns the IDs of every event the user has wishlisted, in
// insertion order.  The listing endpoint uses this set as a filter.
func (r *WishListRepo) EventIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT event_id FROM wishlists WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Exists reports whether the user has wishlisted the event.
func (r *WishListRepo) Exists(ctx context.Context, userID, eventID uint64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM wishlists WHERE user_id = ? AND event_id = ?)`,
		userID, eventID).Scan(&ok)
	return ok, err
}
