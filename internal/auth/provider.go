package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Provider is the MongoDB-backed session provider: profiles hold the
// credentials, sessions hold live bearer tokens.
type Provider struct {
	profiles   *mongo.Collection
	sessions   *mongo.Collection
	sessionTTL time.Duration
}

var _ SessionProvider = (*Provider)(nil)

func NewProvider(db *mongo.Database, sessionTTL time.Duration) *Provider {
	return &Provider{
		profiles:   db.Collection("profiles"),
		sessions:   db.Collection("sessions"),
		sessionTTL: sessionTTL,
	}
}

// EnsureIndexes creates the unique email index and the session TTL index.
func (p *Provider) EnsureIndexes(ctx context.Context) error {
	_, err := p.profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create profile indexes: %w", err)
	}

	_, err = p.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_on", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create session indexes: %w", err)
	}
	return nil
}

// SignUp registers a new identity with a bcrypt-hashed password.
func (p *Provider) SignUp(ctx context.Context, email, password, userName string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Identity{}, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	prof := profile{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(userName),
		Email:        email,
		PasswordHash: hash,
		CreatedOn:    now,
		LastUpdate:   now,
	}

	if _, err := p.profiles.InsertOne(ctx, prof); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Identity{}, ErrEmailTaken
		}
		return Identity{}, fmt.Errorf("insert profile: %w", err)
	}

	return identityOf(prof), nil
}

// SignIn verifies the credentials and mints a bearer token.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var prof profile
	err := p.profiles.FindOne(ctx, bson.M{"user_email": email}).Decode(&prof)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", Identity{}, fmt.Errorf("find profile: %w", err)
	}

	if bcrypt.CompareHashAndPassword(prof.PasswordHash, []byte(password)) != nil {
		return "", Identity{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	sess := session{
		Token:     uuid.NewString(),
		UserID:    prof.ID,
		CreatedOn: now,
		ExpiresOn: now.Add(p.sessionTTL),
	}
	if _, err := p.sessions.InsertOne(ctx, sess); err != nil {
		return "", Identity{}, fmt.Errorf("insert session: %w", err)
	}

	return sess.Token, identityOf(prof), nil
}

// SignOut revokes the token. Revoking an unknown token is a no-op.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	if _, err := p.sessions.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// IdentityFromToken resolves a bearer token to its identity. The TTL
// monitor reaps expired rows lazily, so the expiry is also checked here.
func (p *Provider) IdentityFromToken(ctx context.Context, token string) (Identity, error) {
	var sess session
	err := p.sessions.FindOne(ctx, bson.M{"_id": token}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Identity{}, ErrSessionExpired
	}
	if err != nil {
		return Identity{}, fmt.Errorf("find session: %w", err)
	}
	if time.Now().After(sess.ExpiresOn) {
		return Identity{}, ErrSessionExpired
	}

	var prof profile
	err = p.profiles.FindOne(ctx, bson.M{"_id": sess.UserID}).Decode(&prof)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Identity{}, ErrSessionExpired
	}
	if err != nil {
		return Identity{}, fmt.Errorf("find profile: %w", err)
	}

	return identityOf(prof), nil
}

// LookupByEmail returns the identity registered under email.
func (p *Provider) LookupByEmail(ctx context.Context, email string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var prof profile
	err := p.profiles.FindOne(ctx, bson.M{"user_email": email}).Decode(&prof)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Identity{}, ErrIdentityNotFound
	}
	if err != nil {
		return Identity{}, fmt.Errorf("find profile: %w", err)
	}

	return identityOf(prof), nil
}

func identityOf(p profile) Identity {
	return Identity{ID: p.ID, Email: p.Email, Name: p.Name}
}
