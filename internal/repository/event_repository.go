package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/eonhq/eon-backend/internal/model"
)

// EventRepo provides persistence for events and the ticket counter.
// The sold_tickets column is only ever mutated through Reserve, which
// performs the capacity check and the increment as a single conditional
// UPDATE inside a transaction so that concurrent purchases can never
// oversell an event.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

// eventColumns is the shared SELECT list for event rows.  DATE and TIME
// columns are formatted in SQL so every caller sees the same string
// representation regardless of driver parse settings.
const eventColumns = `e.id, e.name, e.type_id, DATE_FORMAT(e.date,'%Y-%m-%d'),
       TIME_FORMAT(e.time,'%H:%i:%s'), e.location, e.description,
       e.no_of_tickets, e.sold_tickets, e.subscription_fee, e.created_by,
       e.is_active, e.image_key, e.external_links, e.created_at, e.updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var ev model.Event
	err := row.Scan(
		&ev.ID, &ev.Name, &ev.TypeID, &ev.Date, &ev.Time, &ev.Location,
		&ev.Description, &ev.NoOfTickets, &ev.SoldTickets, &ev.SubscriptionFee,
		&ev.CreatedBy, &ev.IsActive, &ev.ImageKey, &ev.ExternalLinks,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// Create inserts a new event and populates the generated ID and the
// DB-defaulted fields on the passed struct.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	const q = `INSERT INTO events
		(name, type_id, date, time, location, description, no_of_tickets,
		 sold_tickets, subscription_fee, created_by, is_active, image_key, external_links)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, 1, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		ev.Name, ev.TypeID, ev.Date, ev.Time, ev.Location, ev.Description,
		ev.NoOfTickets, ev.SubscriptionFee, ev.CreatedBy, ev.ImageKey, ev.ExternalLinks)
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
	ev.ID = uint64(id)
	fresh, err := r.GetByID(ctx, ev.ID)
	if err != nil {
		return err
	}
	*ev = *fresh
	return nil
}

// GetByID returns an active event by its ID or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	ev, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.id = ? AND e.is_active = 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return ev, err
}

// EventFilter carries the optional predicates of the listing endpoint.
// Zero values mean "not filtered".  FromDate implements the expiry
// predicate on the read path: only events on or after that day are
// returned, without writing anything (the status flip itself happens in
// ExpirePast).
type EventFilter struct {
	Search    string   // substring match on name or location
	Location  string   // exact (case-insensitive) location
	TypeID    uint64   // event type filter
	StartDate string   // inclusive date range start (with EndDate)
	EndDate   string   // inclusive date range end
	CreatedBy uint64   // only events created by this user
	IDs       []uint64 // restrict to this ID set (wishlist filter); nil = no restriction
	FromDate  string   // exclude events before this day
}

// List returns active events matching the filter, in insertion order.
// Ranking is applied by the service layer so that tie order stays
// stable and testable.
func (r *EventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	where := []string{"e.is_active = 1"}
	args := []any{}

	if f.FromDate != "" {
		where = append(where, "e.date >= ?")
		args = append(args, f.FromDate)
	}
	if f.Search != "" {
		where = append(where, "(LOWER(e.name) LIKE ? OR LOWER(e.location) LIKE ?)")
		pat := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, pat, pat)
	}
	if f.Location != "" {
		where = append(where, "LOWER(e.location) = ?")
		args = append(args, strings.ToLower(f.Location))
	}
	if f.TypeID != 0 {
		where = append(where, "e.type_id = ?")
		args = append(args, f.TypeID)
	}
	if f.StartDate != "" && f.EndDate != "" {
		where = append(where, "e.date BETWEEN ? AND ?")
		args = append(args, f.StartDate, f.EndDate)
	}
	if f.CreatedBy != 0 {
		where = append(where, "e.created_by = ?")
		args = append(args, f.CreatedBy)
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []model.Event{}, nil
		}
		placeholders := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		where = append(where, "e.id IN ("+strings.Join(placeholders, ",")+")")
	}

	q := `SELECT ` + eventColumns + ` FROM events e WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY e.id ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// UpdateByIDAndCreator persists the mutable fields of an event after
// verifying that the caller created it.  ErrEventNotFound is returned
// when the event does not exist or is inactive; ErrForbidden when it
// belongs to another organizer.
func (r *EventRepo) UpdateByIDAndCreator(ctx context.Context, ev *model.Event, creatorID uint64) error {
	var actual uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT created_by FROM events WHERE id = ? AND is_active = 1`, ev.ID).Scan(&actual)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if actual != creatorID {
		return ErrForbidden
	}
	const q = `UPDATE events SET name = ?, type_id = ?, date = ?, time = ?,
		location = ?, description = ?, no_of_tickets = ?, subscription_fee = ?,
		image_key = ?, external_links = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q,
		ev.Name, ev.TypeID, ev.Date, ev.Time, ev.Location, ev.Description,
		ev.NoOfTickets, ev.SubscriptionFee, ev.ImageKey, ev.ExternalLinks, ev.ID)
	return err
}

// Deactivate flips an event to inactive.  Used by the soft-delete path;
// dependent subscriptions, invitations and wishlist entries are left in
// place.
func (r *EventRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ExpirePast flips every active event dated before the given day to
// inactive and reports how many rows changed.  The statement is
// idempotent: a second run with the same day affects zero rows.  It is
// invoked by the background sweeper, never by the read path.
func (r *EventRepo) ExpirePast(ctx context.Context, today string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET is_active = 0 WHERE is_active = 1 AND date < ?`, today)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Reserve atomically sells `count` tickets of an event and runs the
// caller's insert (the subscription row) in the same transaction.  The
// capacity check and the increment are one conditional UPDATE, so a
// concurrent reservation can never observe a stale counter.  On any
// failure the transaction is rolled back and the counter is unchanged.
func (r *EventRepo) Reserve(ctx context.Context, eventID uint64, count uint32, insert func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE events SET sold_tickets = sold_tickets + ?
		 WHERE id = ? AND is_active = 1 AND no_of_tickets - sold_tickets >= ?`,
		count, eventID, count)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// The guard failed: either the event is gone or it lacks capacity.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM events WHERE id = ? AND is_active = 1)`,
			eventID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrEventNotFound
		}
		return ErrInsufficientTickets
	}
	if err := insert(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// TypeExists reports whether an event type ID is known.
func (r *EventRepo) TypeExists(ctx context.Context, typeID uint64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM event_types WHERE id = ?)`, typeID).Scan(&ok)
	return ok, err
}

// ListTypes returns all event categories.
func (r *EventRepo) ListTypes(ctx context.Context) ([]model.EventType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, type FROM event_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.EventType, 0)
	for rows.Next() {
		var t model.EventType
		if err := rows.Scan(&t.ID, &t.Type); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// isDuplicate detects MySQL unique-constraint violations (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
