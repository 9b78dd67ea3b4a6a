package model

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair is the access/refresh pair issued by /api/token/.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ExpiresAt reads the exp claim of the access token. The console cannot verify
// the signature (the key lives on the backend); it only needs the expiry.
func (p TokenPair) ExpiresAt() (time.Time, error) {
	return tokenExpiry(p.Access)
}

// Expired reports whether the access token is past its exp claim at now.
// Tokens without a readable exp are treated as not expired.
func (p TokenPair) Expired(now time.Time) bool {
	exp, err := p.ExpiresAt()
	if err != nil || exp.IsZero() {
		return false
	}
	return !now.Before(exp)
}

func tokenExpiry(raw string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read exp: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// AdminLoginRequest is the username/password form of the token login.
type AdminLoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RefreshRequest is the body of /api/token/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}
