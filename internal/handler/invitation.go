package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eonhq/eon-backend/internal/model"
	"github.com/eonhq/eon-backend/internal/repository"
)

// InvitationHandler serves the organizer's invitation CRUD.
type InvitationHandler struct {
	Events      *repository.EventRepo
	Invitations *repository.InvitationRepo
}

func NewInvitationHandler(events *repository.EventRepo, invitations *repository.InvitationRepo) *InvitationHandler {
	return &InvitationHandler{Events: events, Invitations: invitations}
}

type invitationReq struct {
	EventID            uint64 `json:"event_id"`
	Email              string `json:"email"`
	DiscountPercentage uint8  `json:"discount_percentage"`
}

type invitationResp struct {
	ID                 uint64  `json:"id"`
	EventID            uint64  `json:"event_id"`
	Email              string  `json:"email"`
	UserID             *uint64 `json:"user_id,omitempty"`
	DiscountPercentage uint8   `json:"discount_percentage"`
}

// Create invites an email to one of the caller's events with a
// discount percentage.  If the email already has an account the
// invitation is bound to it immediately; otherwise binding happens
// when that email registers or logs in.
func (h *InvitationHandler) Create(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}

	var req invitationReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.EventID == 0 || req.Email == "" {
		return fail(c, http.StatusBadRequest, "event_id and email are required")
	}
	if req.DiscountPercentage > 100 {
		return fail(c, http.StatusBadRequest, "discount_percentage must be between 0 and 100")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	inv := &model.Invitation{
		EventID:            req.EventID,
		Email:              req.Email,
		DiscountPercentage: req.DiscountPercentage,
	}
	err := h.Invitations.Create(ctx, inv, uid)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fail(c, http.StatusNotFound, "event not found")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "not your event")
	case errors.Is(err, repository.ErrDuplicate):
		return fail(c, http.StatusBadRequest, "email already invited to this event")
	case err != nil:
		return fail(c, http.StatusInternalServerError, "create invitation failed")
	}

	return success(c, http.StatusCreated, "invitation created", invitationResp{
		ID:                 inv.ID,
		EventID:            inv.EventID,
		Email:              inv.Email,
		UserID:             inv.UserID,
		DiscountPercentage: inv.DiscountPercentage,
	})
}

// List returns the active invitations of one of the caller's events.
// Mounted at /v1/events/:id/invitations; the event must belong to the
// caller.
func (h *InvitationHandler) List(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}

	eventID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid event id")
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

	invitations, err := h.Invitations.ListActiveByEvent(ctx, eventID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "list invitations failed")
	}

	out := make([]invitationResp, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, invitationResp{
			ID:                 inv.ID,
			EventID:            inv.EventID,
			Email:              inv.Email,
			UserID:             inv.UserID,
			DiscountPercentage: inv.DiscountPercentage,
		})
	}
	return success(c, http.StatusOK, "ok", out)
}

// Revoke deactivates an invitation belonging to one of the caller's
// events.
func (h *InvitationHandler) Revoke(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid invitation id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Invitations.Revoke(ctx, id, uid)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fail(c, http.StatusNotFound, "invitation not found")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "not your event")
	case err != nil:
		return fail(c, http.StatusInternalServerError, "revoke invitation failed")
	}
	return success(c, http.StatusOK, "invitation revoked", nil)
}
