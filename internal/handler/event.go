package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eonhq/eon-backend/internal/model"
	"github.com/eonhq/eon-backend/internal/repository"
	"github.com/eonhq/eon-backend/internal/service"
)

// EventHandler serves event CRUD, listing and the role-shaped detail
// views.
type EventHandler struct {
	Events     *repository.EventRepo
	Wishlist   *repository.WishListRepo
	Visibility *service.Visibility
	Lifecycle  *service.Lifecycle
}

func NewEventHandler(events *repository.EventRepo, wishlist *repository.WishListRepo, visibility *service.Visibility, lifecycle *service.Lifecycle) *EventHandler {
	return &EventHandler{Events: events, Wishlist: wishlist, Visibility: visibility, Lifecycle: lifecycle}
}

type eventReq struct {
	Name            string `json:"name"`
	EventType       uint64 `json:"event_type"`
	Date            string `json:"date"` // YYYY-MM-DD
	Time            string `json:"time"` // HH:MM:SS
	Location        string `json:"location"`
	Description     string `json:"description"`
	NoOfTickets     uint32 `json:"no_of_tickets"`
	SubscriptionFee uint32 `json:"subscription_fee"`
	Images          string `json:"images"` // object key, not a URL
	ExternalLinks   string `json:"external_links"`
}

// validate normalizes the request and reports the first problem found.
func (r *eventReq) validate(today string) string {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	if r.Name == "" || r.Location == "" || r.Date == "" || r.Time == "" || r.EventType == 0 {
		return "name, event_type, date, time and location are required"
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return "date must be YYYY-MM-DD"
	}
	if _, err := time.Parse("15:04:05", r.Time); err != nil {
		return "time must be HH:MM:SS"
	}
	if r.Date < today {
		return "date must not be in the past"
	}
	if r.NoOfTickets == 0 {
		return "no_of_tickets must be positive"
	}
	return ""
}

// List returns active upcoming events ranked by popularity.  Filters:
// search, location, event_type, start_date+end_date, wishlisted=true.
// Organizers see only events they created; subscribers see every
// upcoming event, with their personal flags attached.
func (h *EventHandler) List(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}
	role := getRole(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f := repository.EventFilter{
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Location: strings.TrimSpace(c.QueryParam("location")),
		FromDate: time.Now().UTC().Format("2006-01-02"),
	}
	if v := c.QueryParam("event_type"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "event_type must be numeric")
		}
		f.TypeID = n
	}
	start, end := c.QueryParam("start_date"), c.QueryParam("end_date")
	if (start == "") != (end == "") {
		return fail(c, http.StatusBadRequest, "start_date and end_date must be given together")
	}
	f.StartDate, f.EndDate = start, end

	if role == model.RoleOrganizer {
		f.CreatedBy = uid
	} else if c.QueryParam("wishlisted") == "true" {
		ids, err := h.Wishlist.EventIDs(ctx, uid)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "load wishlist failed")
		}
		f.IDs = ids
	}

	events, err := h.Events.List(ctx, f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "list events failed")
	}
	service.Rank(events)

	entries, err := h.Visibility.ListView(ctx, events, role, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "assemble listing failed")
	}
	return success(c, http.StatusOK, "ok", entries)
}

// Create stores a new event for the calling organizer.
func (h *EventHandler) Create(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}

	var req eventReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if msg := req.validate(time.Now().UTC().Format("2006-01-02")); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	known, err := h.Events.TypeExists(ctx, req.EventType)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "validate event_type failed")
	}
	if !known {
		return fail(c, http.StatusBadRequest, "unknown event_type")
	}

	ev := &model.Event{
		Name:            req.Name,
		TypeID:          req.EventType,
		Date:            req.Date,
		Time:            req.Time,
		Location:        req.Location,
		Description:     req.Description,
		NoOfTickets:     req.NoOfTickets,
		SubscriptionFee: req.SubscriptionFee,
		CreatedBy:       uid,
		IsActive:        true,
		ImageKey:        strings.TrimSpace(req.Images),
		ExternalLinks:   req.ExternalLinks,
	}
	if err := h.Events.Create(ctx, ev); err != nil {
		return fail(c, http.StatusInternalServerError, "create event failed")
	}
	return success(c, http.StatusCreated, "event created", echo.Map{"id": ev.ID})
}

// Get returns the event detail, shaped by the caller's role.  The
// organizer variant carries operational counters and the invitee list;
// everyone else gets the subscriber variant with their own purchase or
// discount eligibility.
func (h *EventHandler) Get(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid event id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if errors.Is(err, repository.ErrEventNotFound) {
		return fail(c, http.StatusNotFound, "event not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load event failed")
	}

	if getRole(c) == model.RoleOrganizer {
		view, err := h.Visibility.OrganizerView(ctx, ev, uid)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "assemble view failed")
		}
		return success(c, http.StatusOK, "ok", view)
	}

	view, err := h.Visibility.SubscriberView(ctx, ev, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "assemble view failed")
	}
	return success(c, http.StatusOK, "ok", view)
}

// Update modifies an event's mutable fields.  Only the creator may
// update; anyone else gets 403.
func (h *EventHandler) Update(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid event id")
	}

	var req eventReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if msg := req.validate(time.Now().UTC().Format("2006-01-02")); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := &model.Event{
		ID:              id,
		Name:            req.Name,
		TypeID:          req.EventType,
		Date:            req.Date,
		Time:            req.Time,
		Location:        req.Location,
		Description:     req.Description,
		NoOfTickets:     req.NoOfTickets,
		SubscriptionFee: req.SubscriptionFee,
		ImageKey:        strings.TrimSpace(req.Images),
		ExternalLinks:   req.ExternalLinks,
	}
	err := h.Events.UpdateByIDAndCreator(ctx, ev, uid)
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "not your event")
	case errors.Is(err, repository.ErrEventNotFound):
		return fail(c, http.StatusNotFound, "event not found")
	case err != nil:
		return fail(c, http.StatusInternalServerError, "update event failed")
	}
	return success(c, http.StatusOK, "event updated", nil)
}

// Delete soft-deletes an event on behalf of its creator.  Subscribers
// and invitees are notified in one batched message; an optional
// {"message": ...} body supplies the cancellation reason forwarded to
// them.
func (h *EventHandler) Delete(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid event id")
	}

	var body struct {
		Message string `json:"message"`
	}
	_ = c.Bind(&body) // body is optional

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Lifecycle.SoftDelete(ctx, id, uid, body.Message)
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "not your event")
	case errors.Is(err, repository.ErrEventNotFound):
		return fail(c, http.StatusNotFound, "event not found")
	case err != nil:
		return fail(c, http.StatusInternalServerError, "delete event failed")
	}
	return success(c, http.StatusOK, "event deleted", nil)
}

// Types lists the known event categories.
func (h *EventHandler) Types(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	types, err := h.Events.ListTypes(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "list event types failed")
	}
	out := make([]echo.Map, 0, len(types))
	for _, t := range types {
		out = append(out, echo.Map{"id": t.ID, "type": t.Type})
	}
	return success(c, http.StatusOK, "ok", out)
}
