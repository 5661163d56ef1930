package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eonhq/eon-backend/internal/repository"
	"github.com/eonhq/eon-backend/internal/service"
)

// SubscriptionHandler serves ticket purchases and the organizer's
// subscriber listing.
type SubscriptionHandler struct {
	Events        *repository.EventRepo
	Subscriptions *repository.SubscriptionRepo
	Workflow      *service.Subscriptions
}

func NewSubscriptionHandler(events *repository.EventRepo, subs *repository.SubscriptionRepo, workflow *service.Subscriptions) *SubscriptionHandler {
	return &SubscriptionHandler{Events: events, Subscriptions: subs, Workflow: workflow}
}

type subscribeReq struct {
	EventID     uint64  `json:"event_id"`
	NoOfTickets uint32  `json:"no_of_tickets"`
	PaymentID   *uint64 `json:"payment_id"`
}

type subscribeResp struct {
	ID          uint64           `json:"id"`
	EventID     uint64           `json:"event_id"`
	NoOfTickets uint32           `json:"no_of_tickets"`
	PaymentID   *uint64          `json:"payment_id,omitempty"`
	Receipt     *service.Receipt `json:"receipt,omitempty"`
}

// Create purchases tickets for the calling subscriber.  Capacity is
// reserved atomically; two buyers racing for the last tickets can
// never both succeed.
func (h *SubscriptionHandler) Create(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}

	var req subscribeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	conf, err := h.Workflow.Subscribe(ctx, uid, req.EventID, req.NoOfTickets, req.PaymentID)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return fail(c, http.StatusBadRequest, "missing required fields")
	case errors.Is(err, service.ErrInvalidEvent):
		return fail(c, http.StatusBadRequest, fmt.Sprintf("Given event id %d does not exist", req.EventID))
	case errors.Is(err, repository.ErrInsufficientTickets):
		return fail(c, http.StatusBadRequest, "Number of tickets are invalid")
	case errors.Is(err, repository.ErrPaymentNotFound):
		return fail(c, http.StatusBadRequest, "unknown payment_id")
	case err != nil:
		return fail(c, http.StatusInternalServerError, "subscribe failed")
	}

	return success(c, http.StatusCreated, "subscription confirmed", subscribeResp{
		ID:          conf.Subscription.ID,
		EventID:     conf.Subscription.EventID,
		NoOfTickets: conf.Subscription.NoOfTickets,
		PaymentID:   conf.Subscription.PaymentID,
		Receipt:     conf.Receipt,
	})
}

// List returns the subscriptions of one of the caller's events,
// joined with subscriber contact details.  The event_id query
// parameter is required and the event must belong to the caller.
func (h *SubscriptionHandler) List(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}

	eventID, err := strconv.ParseUint(c.QueryParam("event_id"), 10, 64)
	if err != nil || eventID == 0 {
		return fail(c, http.StatusBadRequest, "event_id query parameter required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if errors.Is(err, repository.ErrEventNotFound) {
		return fail(c, http.StatusNotFound, "event not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load event failed")
	}
	if ev.CreatedBy != uid {
		return fail(c, http.StatusForbidden, "not your event")
	}

	items, err := h.Subscriptions.ListByEvent(ctx, eventID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "list subscriptions failed")
	}
	return success(c, http.StatusOK, "ok", echo.Map{
		"count":         len(items),
		"subscriptions": items,
	})
}
