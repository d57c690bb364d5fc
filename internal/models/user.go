package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderGitHub   = "github"
	ProviderFacebook = "facebook"
)

// User is an account. PasswordHash is only set for email sign-ups.
type User struct {
	Entity
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Provider     string `json:"provider"`
}

// NewUser creates a user with a normalized email.
func NewUser(email, name, provider string) *User {
	if provider == "" {
		provider = ProviderPassword
	}
	return &User{Email: NormalizeEmail(email), Name: strings.TrimSpace(name), Provider: provider}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName returns the name or, when unset, the local part of the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if i := strings.Index(u.Email, "@"); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("invalid email %q", u.Email)
	}
	switch u.Provider {
	case ProviderPassword, ProviderGoogle, ProviderGitHub, ProviderFacebook:
	default:
		return fmt.Errorf("unknown provider %q", u.Provider)
	}
	return nil
}

// Session is an opaque bearer token issued on sign-in.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) Validate() error {
	if s.Token == "" || s.UserID == "" {
		return fmt.Errorf("session requires a token and user ID")
	}
	return nil
}
