// Package auth authenticates console operators and issues their tokens.
package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"evadmin/backend/services/admin-service/internal/models"
)

// ErrInvalidCredentials represents a failed login.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Service checks credentials and produces tokens.
type Service struct {
	repo      AdminRepository
	hasher    Hasher
	tokenizer *TokenService
	logger    *zap.Logger
}

// NewService builds a Service.
func NewService(repo AdminRepository, hasher Hasher, tokenizer *TokenService, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// Login authenticates an admin and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(admin.PasswordHash, password); err != nil {
		if errors.Is(err, ErrMalformedHash) {
			s.logger.Error("stored password hash is unusable", zap.String("username", admin.Username), zap.Error(err))
		} else {
			s.logger.Info("login rejected", zap.String("username", admin.Username))
		}
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenizer.GenerateToken(admin.ID, admin.Role)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("admin logged in", zap.String("admin_id", admin.ID))
	return token, admin, nil
}

// Validate decodes a bearer token.
func (s *Service) Validate(token string) (*Claims, error) {
	return s.tokenizer.ValidateToken(token)
}
