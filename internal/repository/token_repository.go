package repository

import (
	"context"
	"net/http"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/model"
)

// TokenRepository talks to the backend's JWT endpoints.
type TokenRepository struct {
	client *backend.Client
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(client *backend.Client) *TokenRepository {
	return &TokenRepository{client: client}
}

// Obtain exchanges credentials for a token pair.
func (r *TokenRepository) Obtain(ctx context.Context, req model.AdminLoginRequest) (*model.TokenPair, error) {
	var pair model.TokenPair
	err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathToken,
		Body:   backend.JSONBody(req),
	}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh trades a refresh token for a new access token.
func (r *TokenRepository) Refresh(ctx context.Context, refresh string) (string, error) {
	var pair model.TokenPair
	err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathTokenRefresh,
		Body:   backend.JSONBody(model.RefreshRequest{Refresh: refresh}),
	}, &pair)
	return pair.Access, err
}
