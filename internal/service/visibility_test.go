package service

import (
	"context"
	"testing"

	"github.com/eonhq/eon-backend/internal/model"
	"github.com/eonhq/eon-backend/internal/repository"
)

type fakeInvitations struct {
	byUser  map[uint64]*model.Invitation
	byEvent map[uint64][]model.Invitation
}

func (f *fakeInvitations) GetActiveByUserAndEvent(_ context.Context, userID, _ uint64) (*model.Invitation, error) {
	if inv, ok := f.byUser[userID]; ok {
		return inv, nil
	}
	return nil, repository.ErrInvitationNotFound
}

func (f *fakeInvitations) ListActiveByEvent(_ context.Context, eventID uint64) ([]model.Invitation, error) {
	return f.byEvent[eventID], nil
}

type fakeSubscriptions struct {
	active map[uint64]*model.Subscription
}

func (f *fakeSubscriptions) GetActiveByUserAndEvent(_ context.Context, userID, _ uint64) (*model.Subscription, error) {
	if sub, ok := f.active[userID]; ok {
		return sub, nil
	}
	return nil, repository.ErrSubscriptionNotFound
}

func (f *fakeSubscriptions) ExistsForUserAndEvent(_ context.Context, userID, _ uint64) (bool, error) {
	_, ok := f.active[userID]
	return ok, nil
}

func (f *fakeSubscriptions) DistinctContactsByEvent(_ context.Context, _ uint64) ([]repository.Contact, error) {
	return nil, nil
}

type fakePayments struct {
	rows map[uint64]*model.Payment
}

func (f *fakePayments) GetByID(_ context.Context, id uint64) (*model.Payment, error) {
	if p, ok := f.rows[id]; ok {
		return p, nil
	}
	return nil, repository.ErrPaymentNotFound
}

type fakeProfiles struct {
	rows map[uint64]model.UserProfile
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID uint64) (model.UserProfile, error) {
	if p, ok := f.rows[userID]; ok {
		return p, nil
	}
	return model.UserProfile{}, repository.ErrProfileNotFound
}

type fakeWishlist struct {
	entries map[uint64]bool
}

func (f *fakeWishlist) Exists(_ context.Context, userID, _ uint64) (bool, error) {
	return f.entries[userID], nil
}

type fakeSigner struct{}

func (fakeSigner) PresignedURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://media.test/" + key
}

func newVisibilityFixture() (*Visibility, *fakeInvitations, *fakeSubscriptions, *fakePayments, *fakeProfiles, *fakeWishlist) {
	invitations := &fakeInvitations{byUser: map[uint64]*model.Invitation{}, byEvent: map[uint64][]model.Invitation{}}
	subscriptions := &fakeSubscriptions{active: map[uint64]*model.Subscription{}}
	payments := &fakePayments{rows: map[uint64]*model.Payment{}}
	profiles := &fakeProfiles{rows: map[uint64]model.UserProfile{}}
	wishlist := &fakeWishlist{entries: map[uint64]bool{}}
	v := NewVisibility(invitations, subscriptions, payments, profiles, wishlist, fakeSigner{})
	return v, invitations, subscriptions, payments, profiles, wishlist
}

func testEvent() *model.Event {
	return &model.Event{
		ID:              10,
		Name:            "Winter Gala",
		TypeID:          2,
		Date:            "2026-12-01",
		Time:            "19:00:00",
		Location:        "Riverside Hall",
		Description:     "Annual gala",
		NoOfTickets:     100,
		SoldTickets:     40,
		SubscriptionFee: 500,
		CreatedBy:       7,
		IsActive:        true,
		ImageKey:        "events/10/banner.jpg",
	}
}

func TestOrganizerViewCreatorSeesInvitees(t *testing.T) {
	v, invitations, _, _, profiles, _ := newVisibilityFixture()
	ev := testEvent()

	registered := uint64(31)
	invitations.byEvent[ev.ID] = []model.Invitation{
		{ID: 1, EventID: ev.ID, Email: "pending@example.com", DiscountPercentage: 10},
		{ID: 2, EventID: ev.ID, Email: "member@example.com", UserID: &registered, DiscountPercentage: 25},
	}
	profiles.rows[registered] = model.UserProfile{
		UserID: registered, Name: "Sam Vine", ContactNumber: "555-0101",
		Address: "12 Elm St", Organization: "Vine Co",
	}

	view, err := v.OrganizerView(context.Background(), ev, ev.CreatedBy)
	if err != nil {
		t.Fatalf("OrganizerView: %v", err)
	}
	if view.SoldTickets != 40 {
		t.Errorf("sold_tickets = %d, want 40", view.SoldTickets)
	}
	if len(view.InviteeList) != 2 {
		t.Fatalf("invitee_list length = %d, want 2", len(view.InviteeList))
	}
	if view.InviteeList[0].User != nil {
		t.Errorf("unregistered invitee should have no user sub-object")
	}
	got := view.InviteeList[1]
	if got.User == nil || got.User.Name != "Sam Vine" || got.DiscountPercentage != 25 {
		t.Errorf("registered invitee = %+v, want Sam Vine at 25%%", got)
	}
	if view.Images != "https://media.test/events/10/banner.jpg" {
		t.Errorf("images = %q, want presigned URL", view.Images)
	}
}

func TestOrganizerViewMissingProfileIsNonFatal(t *testing.T) {
	v, invitations, _, _, _, _ := newVisibilityFixture()
	ev := testEvent()

	registered := uint64(31)
	invitations.byEvent[ev.ID] = []model.Invitation{
		{ID: 1, EventID: ev.ID, Email: "member@example.com", UserID: &registered, DiscountPercentage: 25},
	}

	view, err := v.OrganizerView(context.Background(), ev, ev.CreatedBy)
	if err != nil {
		t.Fatalf("OrganizerView: %v", err)
	}
	if len(view.InviteeList) != 1 {
		t.Fatalf("invitee_list length = %d, want 1", len(view.InviteeList))
	}
	if view.InviteeList[0].User != nil {
		t.Errorf("invitee without profile row should still render, without user sub-object")
	}
}

func TestOrganizerViewNonCreatorGetsEmptyInviteeList(t *testing.T) {
	v, invitations, _, _, _, _ := newVisibilityFixture()
	ev := testEvent()
	invitations.byEvent[ev.ID] = []model.Invitation{
		{ID: 1, EventID: ev.ID, Email: "pending@example.com", DiscountPercentage: 10},
	}

	view, err := v.OrganizerView(context.Background(), ev, ev.CreatedBy+1)
	if err != nil {
		t.Fatalf("OrganizerView: %v", err)
	}
	if view.InviteeList == nil || len(view.InviteeList) != 0 {
		t.Errorf("invitee_list = %v, want empty non-nil list", view.InviteeList)
	}
}

func TestSubscriberViewWithActivePurchase(t *testing.T) {
	v, _, subscriptions, payments, _, _ := newVisibilityFixture()
	ev := testEvent()

	paymentID := uint64(77)
	subscriptions.active[42] = &model.Subscription{
		ID: 5, UserID: 42, EventID: ev.ID, NoOfTickets: 2, PaymentID: &paymentID, IsActive: true,
	}
	payments.rows[paymentID] = &model.Payment{ID: paymentID, TotalAmount: 1000, DiscountAmount: 250}

	view, err := v.SubscriberView(context.Background(), ev, 42)
	if err != nil {
		t.Fatalf("SubscriberView: %v", err)
	}
	d := view.SubscriptionDetails
	if d == nil || !d.IsSubscribed {
		t.Fatalf("subscription_details = %+v, want populated", d)
	}
	if d.NoOfTicketsBought != 2 || d.AmountPaid != 1000 || d.DiscountGiven != 250 {
		t.Errorf("details = %+v, want 2 tickets, 1000 paid, 250 off", d)
	}
	if d.DiscountPercentage != 25 {
		t.Errorf("payment-derived percentage = %d, want 25", d.DiscountPercentage)
	}
	if view.DiscountPercentage != nil {
		t.Errorf("eligibility percentage should be absent once subscribed")
	}
}

func TestSubscriberViewInvitedButNotSubscribed(t *testing.T) {
	v, invitations, _, _, _, _ := newVisibilityFixture()
	ev := testEvent()
	invitations.byUser[42] = &model.Invitation{
		ID: 1, EventID: ev.ID, Email: "member@example.com", DiscountPercentage: 30, IsActive: true,
	}

	view, err := v.SubscriberView(context.Background(), ev, 42)
	if err != nil {
		t.Fatalf("SubscriberView: %v", err)
	}
	if view.SubscriptionDetails != nil {
		t.Errorf("subscription_details = %+v, want nil", view.SubscriptionDetails)
	}
	if view.DiscountPercentage == nil || *view.DiscountPercentage != 30 {
		t.Errorf("discount_percentage = %v, want 30", view.DiscountPercentage)
	}
}

func TestSubscriberViewUninvitedResolvesZero(t *testing.T) {
	v, _, _, _, _, _ := newVisibilityFixture()
	ev := testEvent()

	view, err := v.SubscriberView(context.Background(), ev, 42)
	if err != nil {
		t.Fatalf("SubscriberView: %v", err)
	}
	if view.DiscountPercentage == nil || *view.DiscountPercentage != 0 {
		t.Errorf("discount_percentage = %v, want 0", view.DiscountPercentage)
	}
}

func TestListViewSubscriberFlags(t *testing.T) {
	v, _, subscriptions, _, _, wishlist := newVisibilityFixture()
	ev := testEvent()
	subscriptions.active[42] = &model.Subscription{ID: 5, UserID: 42, EventID: ev.ID, IsActive: true}
	wishlist.entries[42] = true

	entries, err := v.ListView(context.Background(), []model.Event{*ev}, model.RoleSubscriber, 42)
	if err != nil {
		t.Fatalf("ListView: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.IsSubscribed == nil || !*e.IsSubscribed {
		t.Errorf("is_subscribed = %v, want true", e.IsSubscribed)
	}
	if e.IsWishlisted == nil || !*e.IsWishlisted {
		t.Errorf("is_wishlisted = %v, want true", e.IsWishlisted)
	}
}

func TestListViewOrganizerOmitsFlags(t *testing.T) {
	v, _, _, _, _, _ := newVisibilityFixture()
	ev := testEvent()

	entries, err := v.ListView(context.Background(), []model.Event{*ev}, model.RoleOrganizer, 7)
	if err != nil {
		t.Fatalf("ListView: %v", err)
	}
	e := entries[0]
	if e.IsSubscribed != nil || e.IsWishlisted != nil {
		t.Errorf("organizer listing should omit subscriber flags, got %v / %v", e.IsSubscribed, e.IsWishlisted)
	}
}
