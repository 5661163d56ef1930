package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eonhq/eon-backend/internal/model"
	"github.com/eonhq/eon-backend/internal/repository"
	"github.com/eonhq/eon-backend/internal/service"
)

// WishListHandler lets subscribers bookmark events.
type WishListHandler struct {
	Events     *repository.EventRepo
	Wishlist   *repository.WishListRepo
	Visibility *service.Visibility
}

func NewWishListHandler(events *repository.EventRepo, wishlist *repository.WishListRepo, visibility *service.Visibility) *WishListHandler {
	return &WishListHandler{Events: events, Wishlist: wishlist, Visibility: visibility}
}

type wishlistReq struct {
	EventID uint64 `json:"event_id"`
}

// Add bookmarks an event for the caller.  Adding twice is reported as
// a duplicate rather than a server error.
func (h *WishListHandler) Add(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}

	var req wishlistReq
	if err := c.Bind(&req); err != nil || req.EventID == 0 {
		return fail(c, http.StatusBadRequest, "event_id required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, req.EventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return fail(c, http.StatusNotFound, "event not found")
		}
		return fail(c, http.StatusInternalServerError, "load event failed")
	}

	err := h.Wishlist.Add(ctx, uid, req.EventID)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return fail(c, http.StatusBadRequest, "event already wishlisted")
	case err != nil:
		return fail(c, http.StatusInternalServerError, "add to wishlist failed")
	}
	return success(c, http.StatusCreated, "added to wishlist", nil)
}

// Remove drops an event from the caller's wishlist.
func (h *WishListHandler) Remove(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}
	id, ok := pathID(c, "event_id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid event id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Wishlist.Remove(ctx, uid, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "remove from wishlist failed")
	}
	if n == 0 {
		return fail(c, http.StatusNotFound, "event not in wishlist")
	}
	return success(c, http.StatusOK, "removed from wishlist", nil)
}

// List returns the caller's wishlisted events that are still active
// and upcoming, shaped like the regular listing.
func (h *WishListHandler) List(c echo.Context) error {
	uid, ok := callerID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Wishlist.EventIDs(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load wishlist failed")
	}
	events, err := h.Events.List(ctx, repository.EventFilter{
		IDs:      ids,
		FromDate: time.Now().UTC().Format("2006-01-02"),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "list events failed")
	}
	service.Rank(events)

	entries, err := h.Visibility.ListView(ctx, events, model.RoleSubscriber, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "assemble listing failed")
	}
	return success(c, http.StatusOK, "ok", entries)
}
