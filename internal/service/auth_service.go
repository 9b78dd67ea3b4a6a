package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/repository"
)

// AuthService handles teacher and admin logins.
type AuthService struct {
	teachers *repository.TeacherRepository
	tokens   *repository.TokenRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(teachers *repository.TeacherRepository, tokens *repository.TokenRepository, log zerolog.Logger) *AuthService {
	return &AuthService{
		teachers: teachers,
		tokens:   tokens,
		log:      log.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

// TeacherLogin matches phone and password against the staff list.
// The returned identity never includes the password.
func (s *AuthService) TeacherLogin(ctx context.Context, req model.TeacherLoginRequest) (*model.TeacherIdentity, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	teachers, err := s.teachers.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}

	phone := strings.TrimSpace(req.Phone)
	for _, t := range teachers {
		if t.TeacherPhone == phone && secretEqual(t.TeacherPassword, req.Password) {
			return model.IdentityFromTeacher(t), nil
		}
	}
	s.log.Info().Str("phone", phone).Msg("Teacher login rejected")
	return nil, ErrInvalidCredentials
}

// AdminLogin exchanges credentials for a backend token pair.
func (s *AuthService) AdminLogin(ctx context.Context, req model.AdminLoginRequest) (*model.TokenPair, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	pair, err := s.tokens.Obtain(ctx, req)
	if err != nil {
		if apiErr, ok := backend.AsAPIError(err); ok && isAuthStatus(apiErr.Status) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("obtain token: %w", err)
	}
	return pair, nil
}

// EnsureFresh refreshes pair in place when its access token has expired.
// It reports whether the pair changed.
func (s *AuthService) EnsureFresh(ctx context.Context, pair *model.TokenPair) (bool, error) {
	if pair == nil || !pair.Expired(s.now()) {
		return false, nil
	}
	if pair.Refresh == "" {
		return false, ErrTokenExpired
	}

	access, err := s.tokens.Refresh(ctx, pair.Refresh)
	if err != nil {
		if apiErr, ok := backend.AsAPIError(err); ok && isAuthStatus(apiErr.Status) {
			return false, ErrTokenExpired
		}
		return false, fmt.Errorf("refresh token: %w", err)
	}
	if access == "" {
		return false, ErrTokenExpired
	}
	pair.Access = access
	s.log.Debug().Msg("Admin access token refreshed")
	return true, nil
}

func isAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusBadRequest || status == http.StatusForbidden
}

// secretEqual compares a stored secret with user input in constant time.
// Input is trimmed the way the login forms always did.
func secretEqual(stored, input string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(input))) == 1
}

