package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/bodaform/internal/dependencies/clock"
	"github.com/mcoot/bodaform/internal/dependencies/random"
	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingFields      = errors.New("username and password are required")
)

const (
	issuer = "bodaform"

	secretAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	secretLength     = 48
	generatedPwdSize = 20
)

// Claims are the JWT claims carried by a session token
type Claims struct {
	jwt.RegisteredClaims
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// Session represents an authenticated session
type Session struct {
	Token     string
	ID        string
	Identity  model.Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// User is the public view of a credential. It never carries a password.
type User struct {
	Username  string
	Role      model.Role
	CreatedAt time.Time
}

// Service handles authentication, user management and session tokens
type Service struct {
	storage storage.CredentialStore
	clock   clock.Clock
	random  random.Random

	secret          []byte
	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs session tokens. A random secret is generated when empty,
	// which invalidates tokens on every restart.
	Secret          string
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(store storage.CredentialStore, clock clock.Clock, rnd random.Random, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	secret := cfg.Secret
	if secret == "" {
		secret = rnd.String(secretLength, secretAlphabet)
	}
	return &Service{
		storage:         store,
		clock:           clock,
		random:          rnd,
		secret:          []byte(secret),
		sessionDuration: cfg.SessionDuration,
	}
}

// SessionDuration returns how long issued tokens stay valid
func (s *Service) SessionDuration() time.Duration {
	return s.sessionDuration
}

// Authenticate checks a username/password pair against the credential store.
// Empty fields, unknown users and wrong passwords all yield
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (model.Identity, error) {
	if username == "" || password == "" {
		return model.Identity{}, ErrInvalidCredentials
	}

	cred, err := s.storage.GetCredential(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.Identity{}, ErrInvalidCredentials
		}
		return model.Identity{}, err
	}

	if !passwordMatches(cred, password) {
		return model.Identity{}, ErrInvalidCredentials
	}

	return cred.Identity(), nil
}

// Login authenticates and issues a session token
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.IssueToken(identity)
}

// CreateUser stores a new credential with a bcrypt hash of the password
func (s *Service) CreateUser(ctx context.Context, username, password, role string) (*User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	if err := model.ValidateIdentity(username); err != nil {
		return nil, err
	}
	parsedRole, err := model.ParseRole(role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	cred := &model.Credential{
		Username:     username,
		PasswordHash: string(hash),
		Role:         parsedRole,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreateCredential(ctx, cred); err != nil {
		return nil, err
	}

	return toUser(cred), nil
}

// ListUsers returns every user in creation order without passwords
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	creds, err := s.storage.ListCredentials(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(creds))
	for _, c := range creds {
		users = append(users, toUser(c))
	}
	return users, nil
}

// EnsureAdmin creates an admin account when the store has no admin yet.
// An empty password is replaced by a generated one, which is returned so the
// caller can report it. created is false when an admin already existed.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (generated string, created bool, err error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return "", false, err
	}
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			return "", false, nil
		}
	}

	if password == "" {
		password = s.random.String(generatedPwdSize, secretAlphabet)
		generated = password
	}

	if _, err := s.CreateUser(ctx, username, password, string(model.RoleAdmin)); err != nil {
		return "", false, fmt.Errorf("bootstrap admin %s: %w", username, err)
	}
	return generated, true, nil
}

// IssueToken signs a new session token for an identity
func (s *Service) IssueToken(identity model.Identity) (*Session, error) {
	now := s.clock.Now()
	expires := now.Add(s.sessionDuration)
	id := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    issuer,
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Username: identity.Username,
		Role:     identity.Role,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     signed,
		ID:        id,
		Identity:  identity,
		IssuedAt:  now,
		ExpiresAt: expires,
	}, nil
}

// ValidateToken parses and verifies a session token
func (s *Service) ValidateToken(tokenString string) (*Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Username == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	role, err := model.ParseRole(string(claims.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	session := &Session{
		Token:    tokenString,
		ID:       claims.ID,
		Identity: model.Identity{Username: claims.Username, Role: role},
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// passwordMatches compares against the bcrypt hash, or verbatim for legacy records
func passwordMatches(cred *model.Credential, password string) bool {
	if cred.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) == nil
	}
	if cred.LegacyPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cred.LegacyPassword), []byte(password)) == 1
}

func toUser(c *model.Credential) *User {
	return &User{
		Username:  c.Username,
		Role:      c.Identity().Role,
		CreatedAt: c.CreatedAt,
	}
}
