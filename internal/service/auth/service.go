package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/idib19/glamstore-sub001/internal/config"
	"github.com/idib19/glamstore-sub001/pkg/auth"
	apperrors "github.com/idib19/glamstore-sub001/pkg/errors"
)

// Service authenticates the shop owner. There is a single admin account,
// configured at deploy time; customer-facing endpoints need no login.
type Service struct {
	admin  config.AdminConfig
	jwtSvc auth.JWTService
}

func NewService(admin config.AdminConfig, jwtSvc auth.JWTService) *Service {
	return &Service{admin: admin, jwtSvc: jwtSvc}
}

type TokenResponse struct {
	Token string `json:"token"`
}

func (s *Service) Login(_ context.Context, email, password string) (*TokenResponse, error) {
	if email != s.admin.Email {
		return nil, apperrors.Unauthorized(nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	token, err := s.jwtSvc.GenerateToken(email, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &TokenResponse{Token: token}, nil
}
