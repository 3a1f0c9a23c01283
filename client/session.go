package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the decoded credential held for the lifetime of a login. The
// claims are parsed without verification: they feed UI state only, and the
// server re-verifies the signature on every call.
type Session struct {
	UserID    string
	Email     string
	IsAdmin   bool
	Token     string
	ExpiresAt time.Time
}

// SessionFromToken decodes the bearer credential into a Session.
func SessionFromToken(token string) (*Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("decode credential: missing user_id claim")
	}
	email, _ := claims["email"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	sess := &Session{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		Token:   token,
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	return sess, nil
}

// Valid reports whether the session exists and has not expired locally.
func (s *Session) Valid() bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}
