package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password on
	// sign-in; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when signing up with an email that already
	// has a profile.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrSessionExpired covers unknown, revoked and expired tokens alike.
	ErrSessionExpired = errors.New("session expired or unknown")

	// ErrIdentityNotFound is returned by lookups for an unknown email.
	ErrIdentityNotFound = errors.New("identity not found")
)

// Identity is the authenticated user record governing note ownership. The
// core only reads it; its lifecycle belongs to the session provider.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SessionProvider owns credential verification and the current-identity
// lifecycle. The mongo-backed Provider is the production implementation;
// handlers and tests consume only this interface.
type SessionProvider interface {
	SignUp(ctx context.Context, email, password, userName string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (token string, id Identity, err error)
	SignOut(ctx context.Context, token string) error
	IdentityFromToken(ctx context.Context, token string) (Identity, error)
	LookupByEmail(ctx context.Context, email string) (Identity, error)
}

// profile mirrors the hosted `profiles` table plus the password hash the
// hosted provider kept to itself.
type profile struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"user_name"`
	Email        string    `bson:"user_email"`
	PasswordHash []byte    `bson:"password_hash"`
	CreatedOn    time.Time `bson:"created_on"`
	LastUpdate   time.Time `bson:"last_update"`
}

// session is a bearer-token row; mongo's TTL monitor reaps expired ones.
type session struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	CreatedOn time.Time `bson:"created_on"`
	ExpiresOn time.Time `bson:"expires_on"`
}
