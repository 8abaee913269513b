package session

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/jewelry-admin/internal/localcache"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

// Cache is the slice of the local cache the token store needs.
type Cache interface {
	ReadString(ctx context.Context, key string) (string, bool, error)
	WriteString(ctx context.Context, key, value string) error
	DeleteKey(ctx context.Context, key string) error
}

// Authenticator exchanges credentials for an access token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Store keeps the access token in the local cache so every remote call reads the
// current value.
type Store struct {
	cache Cache
	auth  Authenticator
	logg  *logger.Logger
}

// Status describes the stored token without exposing it.
type Status struct {
	LoggedIn  bool       `json:"loggedIn"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
}

func NewStore(cache Cache, auth Authenticator, logg *logger.Logger) (*Store, error) {
	if cache == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session cache required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{cache: cache, auth: auth, logg: logg}, nil
}

// SetAuthenticator attaches the login backend once it exists.
func (s *Store) SetAuthenticator(auth Authenticator) {
	s.auth = auth
}

// Token returns the stored token, or "" when nobody has logged in.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, found, err := s.cache.ReadString(ctx, localcache.TokenKey)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return strings.TrimSpace(token), nil
}

// Login authenticates against the backend and stores the returned token.
func (s *Store) Login(ctx context.Context, email, password string) (Status, error) {
	if s.auth == nil {
		return Status{}, pkgerrors.New(pkgerrors.CodeDependency, "login backend not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return Status{}, pkgerrors.MissingField("email")
	}
	if password == "" {
		return Status{}, pkgerrors.MissingField("password")
	}

	token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return Status{}, err
	}
	if err := s.cache.WriteString(ctx, localcache.TokenKey, token); err != nil {
		return Status{}, err
	}
	s.logg.Info(s.logg.WithField(ctx, "event", "session.login"), "access token stored")
	return statusFor(token, time.Now()), nil
}

// Logout forgets the stored token.
func (s *Store) Logout(ctx context.Context) error {
	return s.cache.DeleteKey(ctx, localcache.TokenKey)
}

// Status reports whether a token is stored and when it expires.
func (s *Store) Status(ctx context.Context) (Status, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return Status{}, err
	}
	return statusFor(token, time.Now()), nil
}

func statusFor(token string, now time.Time) Status {
	if token == "" {
		return Status{}
	}
	status := Status{LoggedIn: true}
	if exp, ok := Expiry(token); ok {
		status.ExpiresAt = &exp
		status.Expired = !now.Before(exp)
	}
	return status
}

// Expiry reads the exp claim without verifying the signature. The token is only
// inspected for display; the backend remains the authority.
func Expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time.UTC(), true
}
