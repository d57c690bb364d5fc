// package auth implements account sign-up, sign-in and session resolution.
//
// [LocalProvider] handles email and password accounts, hashing passwords with bcrypt and issuing opaque
// session tokens stored in SQLite. [OAuthProvider] runs the authorization code flow against Google, GitHub
// or Facebook and signs the matching local account in, creating it on first use.
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/sonata/internal/models"
	"github.com/desertthunder/sonata/internal/repositories"
	"github.com/desertthunder/sonata/internal/shared"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input beyond 72 bytes.
	MaxPasswordBytes = 72

	DefaultSessionTTL = 30 * 24 * time.Hour
)

// Result is a signed-in user together with the session issued for them.
type Result struct {
	User    *models.User    `json:"user"`
	Session *models.Session `json:"session"`
}

// Token returns the session token.
func (r *Result) Token() string {
	return r.Session.Token
}

// Identity is the account contract used by the HTTP API and CLI.
type Identity interface {
	SignUp(ctx context.Context, email, password, name string) (*Result, error)
	SignIn(ctx context.Context, email, password string) (*Result, error)
	SignOut(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// LocalProvider implements [Identity] for email and password accounts.
type LocalProvider struct {
	users    *repositories.UserRepository
	sessions *repositories.SessionRepository
	logger   *log.Logger
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

// NewLocalProvider creates a [LocalProvider] over db with the default session lifetime and bcrypt cost.
func NewLocalProvider(db *sql.DB, logger *log.Logger) *LocalProvider {
	return &LocalProvider{
		users:    repositories.NewUserRepository(db),
		sessions: repositories.NewSessionRepository(db),
		logger:   logger,
		ttl:      DefaultSessionTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// SetCost overrides the bcrypt cost. Tests use [bcrypt.MinCost].
func (p *LocalProvider) SetCost(cost int) {
	p.cost = cost
}

// SetSessionTTL overrides how long issued sessions stay valid.
func (p *LocalProvider) SetSessionTTL(ttl time.Duration) {
	p.ttl = ttl
}

// SignUp creates an account and signs it in. The display name is optional.
func (p *LocalProvider) SignUp(ctx context.Context, email, password, name string) (*Result, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(email, name, models.ProviderPassword)
	user.PasswordHash = string(hash)
	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}

	p.logger.Info("signed up", "user", user.ID, "email", user.Email)
	return p.Issue(ctx, user)
}

// SignIn checks the password and issues a new session.
// Unknown emails and wrong passwords fail identically with [shared.ErrInvalidCredentials].
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Result, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, fmt.Errorf("%w: account uses %s sign-in", shared.ErrInvalidCredentials, user.Provider)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	return p.Issue(ctx, user)
}

// SignOut revokes the session. Unknown tokens are ignored.
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return shared.ErrNotAuthenticated
	}
	return p.sessions.Delete(ctx, token)
}

// Resolve returns the user a live session belongs to. Expired sessions are removed.
func (p *LocalProvider) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	session, err := p.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Expired(p.now()) {
		if err := p.sessions.Delete(ctx, token); err != nil {
			p.logger.Warn("failed to remove expired session", "err", err)
		}
		return nil, shared.ErrSessionExpired
	}

	user, err := p.users.Get(ctx, session.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrNotAuthenticated
		}
		return nil, err
	}
	return user, nil
}

// Issue creates a session for an existing user.
func (p *LocalProvider) Issue(ctx context.Context, user *models.User) (*Result, error) {
	token, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	session := &models.Session{Token: token, UserID: user.ID, CreatedAt: now, ExpiresAt: now.Add(p.ttl)}
	if err := p.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return &Result{User: user, Session: session}, nil
}

// FindOrCreate returns the account registered under email, creating one for provider if none exists.
func (p *LocalProvider) FindOrCreate(ctx context.Context, email, name, provider string) (*models.User, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	user = models.NewUser(email, name, provider)
	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}
	p.logger.Info("created account", "user", user.ID, "provider", provider)
	return user, nil
}

// PurgeExpired removes sessions that have expired.
func (p *LocalProvider) PurgeExpired(ctx context.Context) (int64, error) {
	return p.sessions.DeleteExpired(ctx, p.now().UTC())
}

// ValidatePassword enforces the password length rules.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", shared.ErrInvalidInput, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", shared.ErrInvalidInput, MaxPasswordBytes)
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
