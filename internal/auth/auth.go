// Package auth handles accounts and browser sessions: bcrypt password
// hashes and opaque session tokens of which only a hash is stored.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/imkarma/trophy/internal/store"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username taken")
	ErrWeakPassword       = errors.New("password too short")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrMissingFields      = errors.New("username and password required")
)

// Service issues and verifies sessions.
type Service struct {
	store      *store.Store
	sessionTTL time.Duration
	cost       int
}

// NewService creates a Service whose sessions live for ttl.
func NewService(s *store.Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{store: s, sessionTTL: ttl, cost: bcrypt.DefaultCost}
}

// SetCost overrides the bcrypt cost, for tests.
func (s *Service) SetCost(cost int) {
	s.cost = cost
}

// Login is the outcome of a successful signup or login.
type Login struct {
	User      store.User
	Token     string
	ExpiresAt time.Time
}

func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// HashPassword validates and hashes a password.
func (s *Service) HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", fmt.Errorf("%w: at least %d characters", ErrWeakPassword, MinPasswordLen)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Signup creates an account and starts a session for it.
func (s *Service) Signup(ctx context.Context, username, password string, now time.Time) (*Login, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := s.store.CreateUser(ctx, username, hash)
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, *u, now)
}

// Login verifies credentials and starts a session. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string, now time.Time) (*Login, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	u, err := s.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	// Accounts created by `trophy init` have no password and cannot log in.
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(ctx, *u, now)
}

func (s *Service) startSession(ctx context.Context, u store.User, now time.Time) (*Login, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	sess := store.Session{
		TokenHash: hashToken(token),
		Username:  u.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return &Login{User: u, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// Authenticate resolves a session token to its username. Expired sessions
// are deleted on sight, along with any other expired ones.
func (s *Service) Authenticate(ctx context.Context, token string, now time.Time) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	sess, err := s.store.GetSession(ctx, hashToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if now.After(sess.ExpiresAt) {
		if _, err := s.store.DeleteExpiredSessions(ctx, now); err != nil {
			return "", err
		}
		return "", ErrUnauthorized
	}
	return sess.Username, nil
}

// Logout ends the session behind token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, hashToken(token))
}

// SetPassword sets or replaces a user's password, creating the user if
// needed. Used by the CLI.
func (s *Service) SetPassword(ctx context.Context, username, password string) error {
	username = normalizeUsername(username)
	if username == "" {
		return ErrMissingFields
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.store.EnsureUser(ctx, username); err != nil {
		return err
	}
	return s.store.SetPassword(ctx, username, hash)
}
