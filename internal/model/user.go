package model

import "time"

// User represents an application user record as stored in the
// `users` table.  The json tags are omitted because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – name of the role (SUBSCRIBER or ORGANIZER).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// UserProfile carries the contact details shown to organizers when
// an invited user has registered.  Profiles are optional; a missing
// profile never fails a request.
//
// Fields:
//  UserID        – owning user.
//  Name          – display name.
//  ContactNumber – phone number.
//  Address       – postal address.
//  Organization  – company or group the user belongs to.
type UserProfile struct {
	UserID        uint64 // user_profiles.user_id
	Name          string // user_profiles.name
	ContactNumber string // user_profiles.contact_number
	Address       string // user_profiles.address
	Organization  string // user_profiles.organization
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// Roles accepted by the API.  Organizers create and manage events;
// subscribers browse, wishlist and purchase tickets.
const (
	RoleOrganizer  = "ORGANIZER"
	RoleSubscriber = "SUBSCRIBER"
)
