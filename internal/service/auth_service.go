package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/satprep-api/internal/domain/entity"
	"github.com/yourusername/satprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
	"github.com/yourusername/satprep-api/pkg/auth"
)

// AuthService handles registration and login with bearer access tokens.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWT service is required")
	}
	return &AuthService{userRepo: userRepo, jwtService: jwtService}, nil
}

// Register creates a new user account and issues an access token. The
// password is hashed by the entity's BeforeSave hook.
func (s *AuthService) Register(username, email, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, "", fmt.Errorf("%w: email taken", ErrUserAlreadyExists)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", err
	}
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, "", fmt.Errorf("%w: username taken", ErrUserAlreadyExists)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", err
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: password,
		Role:     "user",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Registered user #%d (%s)", user.ID, user.Username)
	return user, token, nil
}

// Login checks credentials and issues an access token.
func (s *AuthService) Login(email, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.CheckPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// TokenTTLSeconds reports the lifetime of issued tokens for responses.
func (s *AuthService) TokenTTLSeconds() int {
	return s.jwtService.TTLSeconds()
}
