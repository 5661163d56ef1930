package service

import (
	"context"
	"errors"

	"github.com/eonhq/eon-backend/internal/model"
	"github.com/eonhq/eon-backend/internal/repository"
)

// SubscriptionStore is the slice of the subscription repository the
// services need.  Implemented by repository.SubscriptionRepo.
type SubscriptionStore interface {
	GetActiveByUserAndEvent(ctx context.Context, userID, eventID uint64) (*model.Subscription, error)
	ExistsForUserAndEvent(ctx context.Context, userID, eventID uint64) (bool, error)
	DistinctContactsByEvent(ctx context.Context, eventID uint64) ([]repository.Contact, error)
}

// PaymentStore reads payment rows.  Implemented by repository.PaymentRepo.
type PaymentStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Payment, error)
}

// ProfileStore reads user contact profiles.  Implemented by repository.UserRepo.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uint64) (model.UserProfile, error)
}

// WishListStore answers wishlist membership.  Implemented by repository.WishListRepo.
type WishListStore interface {
	Exists(ctx context.Context, userID, eventID uint64) (bool, error)
}

// URLSigner exchanges an object key for a time-limited signed URL.
// Implemented by storage.Presigner.
type URLSigner interface {
	PresignedURL(objectKey string) string
}

// EventListEntry is one row of the listing response.  The subscriber
// flags are pointers so organizer listings omit them entirely rather
// than reporting false.
type EventListEntry struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Location        string `json:"location"`
	EventType       uint64 `json:"event_type"`
	Description     string `json:"description"`
	NoOfTickets     uint32 `json:"no_of_tickets"`
	SoldTickets     uint32 `json:"sold_tickets"`
	SubscriptionFee uint32 `json:"subscription_fee"`
	Images          string `json:"images"`
	ExternalLinks   string `json:"external_links"`
	IsSubscribed    *bool  `json:"is_subscribed,omitempty"`
	IsWishlisted    *bool  `json:"is_wishlisted,omitempty"`
}

// InviteeUser is the profile summary attached to an invitee entry once
// the invited email has registered.
type InviteeUser struct {
	UserID        uint64 `json:"user_id"`
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
	Organization  string `json:"organization"`
}

// Invitee is one entry of the organizer's invitee list.  User is nil
// while the invited email has not registered, or when the profile
// lookup fails (a missing profile is non-fatal).
type Invitee struct {
	InvitationID       uint64       `json:"invitation_id"`
	Email              string       `json:"email"`
	DiscountPercentage uint8        `json:"discount_percentage"`
	User               *InviteeUser `json:"user,omitempty"`
}

// OrganizerEventView is the detail document rendered for the event's
// creator.  It exposes the operational counters and the invitee list;
// it never carries another user's subscription details.
type OrganizerEventView struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Location        string    `json:"location"`
	EventType       uint64    `json:"event_type"`
	Description     string    `json:"description"`
	NoOfTickets     uint32    `json:"no_of_tickets"`
	SoldTickets     uint32    `json:"sold_tickets"`
	SubscriptionFee uint32    `json:"subscription_fee"`
	Images          string    `json:"images"`
	ExternalLinks   string    `json:"external_links"`
	InviteeList     []Invitee `json:"invitee_list"`
}

// SubscriptionDetails summarises the caller's own purchase of the
// event.  DiscountPercentage here is derived from the stored payment
// (discount_amount / total_amount), which is a display quantity and
// deliberately distinct from the eligibility percentage carried by an
// invitation.
type SubscriptionDetails struct {
	IsSubscribed       bool   `json:"is_subscribed"`
	ID                 uint64 `json:"id"`
	NoOfTicketsBought  uint32 `json:"no_of_tickets_bought"`
	AmountPaid         uint32 `json:"amount_paid"`
	DiscountGiven      uint32 `json:"discount_given"`
	DiscountPercentage uint8  `json:"discount_percentage"`
}

// SubscriberEventView is the detail document rendered for any
// authenticated caller who is not the creator.  It hides sold_tickets
// and the invitee list.  Exactly one of SubscriptionDetails (an
// existing purchase) or DiscountPercentage (pre-purchase eligibility)
// is populated.
type SubscriberEventView struct {
	ID                  uint64               `json:"id"`
	Name                string               `json:"name"`
	Date                string               `json:"date"`
	Time                string               `json:"time"`
	Location            string               `json:"location"`
	EventType           uint64               `json:"event_type"`
	Description         string               `json:"description"`
	SubscriptionFee     uint32               `json:"subscription_fee"`
	NoOfTickets         uint32               `json:"no_of_tickets"`
	Images              string               `json:"images"`
	ExternalLinks       string               `json:"external_links"`
	SubscriptionDetails *SubscriptionDetails `json:"subscription_details"`
	DiscountPercentage  *uint8               `json:"discount_percentage,omitempty"`
}

// Visibility assembles role-shaped response documents.  The two detail
// shapes are explicit tagged variants selected by the caller's role;
// fields are never assembled ad hoc.  Image keys are always exchanged
// for presigned URLs before leaving this layer.
type Visibility struct {
	invitations   InvitationStore
	subscriptions SubscriptionStore
	payments      PaymentStore
	profiles      ProfileStore
	wishlist      WishListStore
	discounts     *DiscountResolver
	signer        URLSigner
}

// NewVisibility constructs a Visibility service.
func NewVisibility(
	invitations InvitationStore,
	subscriptions SubscriptionStore,
	payments PaymentStore,
	profiles ProfileStore,
	wishlist WishListStore,
	signer URLSigner,
) *Visibility {
	return &Visibility{
		invitations:   invitations,
		subscriptions: subscriptions,
		payments:      payments,
		profiles:      profiles,
		wishlist:      wishlist,
		discounts:     NewDiscountResolver(invitations),
		signer:        signer,
	}
}

// ListView renders listing entries for the caller.  Subscribers get
// their personal is_subscribed / is_wishlisted flags; organizers see
// the plain rows.
func (v *Visibility) ListView(ctx context.Context, events []model.Event, role string, userID uint64) ([]EventListEntry, error) {
	out := make([]EventListEntry, 0, len(events))
	for i := range events {
		ev := &events[i]
		entry := EventListEntry{
			ID:              ev.ID,
			Name:            ev.Name,
			Date:            ev.Date,
			Time:            ev.Time,
			Location:        ev.Location,
			EventType:       ev.TypeID,
			Description:     ev.Description,
			NoOfTickets:     ev.NoOfTickets,
			SoldTickets:     ev.SoldTickets,
			SubscriptionFee: ev.SubscriptionFee,
			Images:          v.signer.PresignedURL(ev.ImageKey),
			ExternalLinks:   ev.ExternalLinks,
		}
		if role == model.RoleSubscriber {
			subscribed, err := v.subscriptions.ExistsForUserAndEvent(ctx, userID, ev.ID)
			if err != nil {
				return nil, err
			}
			wishlisted, err := v.wishlist.Exists(ctx, userID, ev.ID)
			if err != nil {
				return nil, err
			}
			entry.IsSubscribed = &subscribed
			entry.IsWishlisted = &wishlisted
		}
		out = append(out, entry)
	}
	return out, nil
}

// OrganizerView renders the organizer detail variant.  The invitee
// list is populated only when the caller created the event; another
// organizer sees an empty list.
func (v *Visibility) OrganizerView(ctx context.Context, ev *model.Event, callerID uint64) (*OrganizerEventView, error) {
	view := &OrganizerEventView{
		ID:              ev.ID,
		Name:            ev.Name,
		Date:            ev.Date,
		Time:            ev.Time,
		Location:        ev.Location,
		EventType:       ev.TypeID,
		Description:     ev.Description,
		NoOfTickets:     ev.NoOfTickets,
		SoldTickets:     ev.SoldTickets,
		SubscriptionFee: ev.SubscriptionFee,
		Images:          v.signer.PresignedURL(ev.ImageKey),
		ExternalLinks:   ev.ExternalLinks,
		InviteeList:     []Invitee{},
	}
	if ev.CreatedBy != callerID {
		return view, nil
	}
	invitations, err := v.invitations.ListActiveByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	for _, inv := range invitations {
		entry := Invitee{
			InvitationID:       inv.ID,
			Email:              inv.Email,
			DiscountPercentage: inv.DiscountPercentage,
		}
		if inv.UserID != nil {
			profile, err := v.profiles.GetProfile(ctx, *inv.UserID)
			switch {
			case err == nil:
				entry.User = &InviteeUser{
					UserID:        *inv.UserID,
					Name:          profile.Name,
					ContactNumber: profile.ContactNumber,
					Address:       profile.Address,
					Organization:  profile.Organization,
				}
			case errors.Is(err, repository.ErrProfileNotFound):
				// entry is emitted without the user sub-object
			default:
				return nil, err
			}
		}
		view.InviteeList = append(view.InviteeList, entry)
	}
	return view, nil
}

// SubscriberView renders the subscriber detail variant for the caller.
// With an active subscription the details derive from the stored
// payment; otherwise the pre-purchase eligibility percentage is
// resolved and subscription_details stays empty.
func (v *Visibility) SubscriberView(ctx context.Context, ev *model.Event, userID uint64) (*SubscriberEventView, error) {
	view := &SubscriberEventView{
		ID:              ev.ID,
		Name:            ev.Name,
		Date:            ev.Date,
		Time:            ev.Time,
		Location:        ev.Location,
		EventType:       ev.TypeID,
		Description:     ev.Description,
		SubscriptionFee: ev.SubscriptionFee,
		NoOfTickets:     ev.NoOfTickets,
		Images:          v.signer.PresignedURL(ev.ImageKey),
		ExternalLinks:   ev.ExternalLinks,
	}

	sub, err := v.subscriptions.GetActiveByUserAndEvent(ctx, userID, ev.ID)
	switch {
	case err == nil:
		details := &SubscriptionDetails{
			IsSubscribed:      true,
			ID:                sub.ID,
			NoOfTicketsBought: sub.NoOfTickets,
		}
		if sub.PaymentID != nil {
			payment, err := v.payments.GetByID(ctx, *sub.PaymentID)
			if err != nil {
				return nil, err
			}
			details.AmountPaid = payment.TotalAmount
			details.DiscountGiven = payment.DiscountAmount
			details.DiscountPercentage = payment.DiscountPercentage()
		}
		view.SubscriptionDetails = details
		return view, nil
	case errors.Is(err, repository.ErrSubscriptionNotFound):
		pct, err := v.discounts.Resolve(ctx, userID, ev.ID)
		if err != nil {
			return nil, err
		}
		view.DiscountPercentage = &pct
		return view, nil
	default:
		return nil, err
	}
}
