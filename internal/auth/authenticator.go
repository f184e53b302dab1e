package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bikereport/internal/config"
)

const issuer = "bikereport"

// maxPasswordBytes is the longest input bcrypt accepts
const maxPasswordBytes = 72

// Credentials are the login input
type Credentials struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required"`
}

var validate = validator.New()

func validateCredentials(c Credentials) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(c.Password) > maxPasswordBytes {
		return fmt.Errorf("%w: password longer than %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	return nil
}

// Session is the result of a successful login
type Session struct {
	Username  string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type claims struct {
	jwt.RegisteredClaims
}

// Authenticator checks credentials against a Store and issues sessions
type Authenticator struct {
	store  Store
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	// compared for unknown users so both paths run bcrypt
	dummyHash []byte
}

// NewAuthenticator creates an authenticator signing sessions with cfg.SigningKey
func NewAuthenticator(store Store, cfg config.AuthConfig, logger *slog.Logger) (*Authenticator, error) {
	if store == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if len(cfg.SigningKey) < 16 {
		return nil, fmt.Errorf("signing key must be at least 16 characters")
	}
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.SessionTimeout
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("bikereport"), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare authenticator: %w", err)
	}

	return &Authenticator{
		store:     store,
		secret:    []byte(cfg.SigningKey),
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Login verifies the credentials and returns a new session
func (a *Authenticator) Login(ctx context.Context, username, password string) (Session, error) {
	if err := validateCredentials(Credentials{Username: username, Password: password}); err != nil {
		return Session{}, err
	}

	if err := a.store.Ping(ctx); err != nil {
		a.logger.ErrorContext(ctx, "Credential store unreachable", slog.String("error", err.Error()))
		if errors.Is(err, ErrStoreUnavailable) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	user, err := a.store.Lookup(ctx, username)
	switch {
	case errors.Is(err, ErrUserNotFound):
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		a.logger.WarnContext(ctx, "Login failed", slog.String("username", username))
		return Session{}, ErrInvalidCredentials
	case err != nil:
		return Session{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.logger.WarnContext(ctx, "Login failed", slog.String("username", username))
		return Session{}, ErrInvalidCredentials
	}

	session, err := a.issue(user.Username)
	if err != nil {
		return Session{}, err
	}
	a.logger.InfoContext(ctx, "Login succeeded",
		slog.String("username", username),
		slog.Time("expires_at", session.ExpiresAt))
	return session, nil
}

func (a *Authenticator) issue(username string) (Session, error) {
	// JWT times have second precision
	now := a.now().Truncate(time.Second)
	expires := now.Add(a.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign session: %w", err)
	}

	return Session{
		Username:  username,
		Token:     signed,
		IssuedAt:  now,
		ExpiresAt: expires,
	}, nil
}

// Verify parses a session token issued by this authenticator
func (a *Authenticator) Verify(token string) (Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject == "" || c.IssuedAt == nil || c.ExpiresAt == nil {
		return Session{}, ErrSessionInvalid
	}

	return Session{
		Username:  c.Subject,
		Token:     token,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Prompter asks the operator for credentials. attempt starts at 1.
type Prompter interface {
	Prompt(ctx context.Context, attempt int) (username, password string, err error)
}

// PromptFunc adapts a function to Prompter
type PromptFunc func(ctx context.Context, attempt int) (string, string, error)

// Prompt implements Prompter
func (f PromptFunc) Prompt(ctx context.Context, attempt int) (string, string, error) {
	return f(ctx, attempt)
}

// LoginWithRetry prompts up to maxAttempts times. Wrong or malformed
// credentials use up an attempt; any other error ends the loop at once.
func (a *Authenticator) LoginWithRetry(ctx context.Context, p Prompter, maxAttempts int) (Session, error) {
	if maxAttempts <= 0 {
		maxAttempts = config.MaxLoginAttempts
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Session{}, err
		}

		username, password, err := p.Prompt(ctx, attempt)
		if err != nil {
			return Session{}, fmt.Errorf("failed to read credentials: %w", err)
		}

		session, err := a.Login(ctx, username, password)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, ErrInvalidCredentials) && !errors.Is(err, ErrInvalidInput) {
			return Session{}, err
		}

		a.logger.WarnContext(ctx, "Login attempt rejected",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts))
	}

	return Session{}, fmt.Errorf("%w (%d)", ErrTooManyAttempts, maxAttempts)
}
