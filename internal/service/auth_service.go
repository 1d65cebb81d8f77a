package service

import (
	"context"
	"net/http"

	"github.com/RubachokBoss/kattis-report/internal/config"
	"github.com/RubachokBoss/kattis-report/internal/models"
	"github.com/RubachokBoss/kattis-report/internal/service/integration"
	"github.com/rs/zerolog"
)

type AuthService interface {
	Authenticate(ctx context.Context, cfg *config.Config) (*models.LoginResult, error)
}

type authService struct {
	kattisClient integration.KattisClient
	logger       zerolog.Logger
}

func NewAuthService(kattisClient integration.KattisClient, logger zerolog.Logger) AuthService {
	return &authService{
		kattisClient: kattisClient,
		logger:       logger,
	}
}

// Authenticate validates credentials, logs in once and turns any non-200
// status into an *AuthError. Nothing is retried.
func (s *authService) Authenticate(ctx context.Context, cfg *config.Config) (*models.LoginResult, error) {
	creds, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}

	endpoint, err := cfg.Endpoint()
	if err != nil {
		return nil, err
	}

	result, err := s.kattisClient.Login(ctx, endpoint, creds)
	if err != nil {
		return nil, err
	}

	if result.StatusCode != http.StatusOK {
		s.logger.Warn().
			Str("login_url", endpoint.LoginURL).
			Int("status", result.StatusCode).
			Msg("Login rejected")
		return result, &AuthError{StatusCode: result.StatusCode}
	}

	s.logger.Info().Str("user", creds.Username).Msg("Logged in")

	return result, nil
}
