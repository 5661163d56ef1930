package service

import (
	"context"
	"errors"

	"github.com/eonhq/eon-backend/internal/model"
	"github.com/eonhq/eon-backend/internal/repository"
)

// InvitationStore is the slice of the invitation repository the
// services need.  Implemented by repository.InvitationRepo.
type InvitationStore interface {
	GetActiveByUserAndEvent(ctx context.Context, userID, eventID uint64) (*model.Invitation, error)
	ListActiveByEvent(ctx context.Context, eventID uint64) ([]model.Invitation, error)
}

// DiscountResolver determines the discount a user is eligible for on
// an event before purchase.  Eligibility comes from an active
// invitation; not being invited is the normal case and resolves to
// zero, never to an error.  The percentage actually applied to a past
// purchase is a different quantity, derived from the payment row in
// the visibility layer.
type DiscountResolver struct {
	invitations InvitationStore
}

// NewDiscountResolver constructs a DiscountResolver.
func NewDiscountResolver(invitations InvitationStore) *DiscountResolver {
	return &DiscountResolver{invitations: invitations}
}

// Resolve returns the discount percentage offered to the user for the
// event, in [0,100].  Zero when no active invitation is bound to the
// pair.
func (d *DiscountResolver) Resolve(ctx context.Context, userID, eventID uint64) (uint8, error) {
	inv, err := d.invitations.GetActiveByUserAndEvent(ctx, userID, eventID)
	if errors.Is(err, repository.ErrInvitationNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return inv.DiscountPercentage, nil
}
