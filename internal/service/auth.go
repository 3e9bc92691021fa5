package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/Aphidet6/earth-bettashop/internal/auth"
	"github.com/Aphidet6/earth-bettashop/internal/domain"
	"github.com/Aphidet6/earth-bettashop/internal/repository"
	apperrors "github.com/Aphidet6/earth-bettashop/pkg/errors"
	"github.com/Aphidet6/earth-bettashop/pkg/validator"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// AuthService implements registration, password login, and token validation.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=admin seller customer"`
}

// LoginInput holds the parameters for password login.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new user account with a bcrypt-hashed password. No
// token is issued; the client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := validator.Validate(input); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)

	return user.Sanitized(), nil
}

// Login verifies a username and password and issues an access token.
// The failure messages distinguish an unknown username from a wrong
// password, matching the storefront's existing client contract.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, string, error) {
	if err := validator.Validate(input); err != nil {
		return nil, "", apperrors.InvalidInput(err.Error())
	}

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.Unauthorized("incorrect username")
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	// Provider-only accounts have no password to check against.
	if user.PasswordHash == "" {
		return nil, "", apperrors.Unauthorized("incorrect password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", apperrors.Unauthorized("incorrect password")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user.Sanitized(), token, nil
}

// Authenticate validates a bearer token and resolves its subject against the
// store. The role comes from the live user row, not the token, so a role
// change takes effect on the next request and a deleted user's tokens stop
// working immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("unknown token subject")
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}

	return user.Sanitized(), nil
}

// GetUser returns the sanitized user for the given id.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, err
	}
	return user.Sanitized(), nil
}
