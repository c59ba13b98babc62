package service

import (
	"context"
	"errors"
	"fmt"

	"ordersystem/internal/auth"
	"ordersystem/internal/models"
	"ordersystem/internal/store"
	"ordersystem/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCredentials is the single answer for a failed login,
	// regardless of whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("service: invalid credentials")

	// ErrUsernameTaken rejects registration with an existing username.
	ErrUsernameTaken = errors.New("service: username already taken")
)

// UserStore is the account persistence consumed by UserService.
// Implemented by *store.Store.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenIssuer signs session tokens. Implemented by *auth.TokenService.
type TokenIssuer interface {
	Issue(userID string, roles []string) (string, error)
}

// RegisterRequest carries the fields needed to create an account
type RegisterRequest struct {
	FirstName string
	LastName  string
	Username  string
	Password  string
}

// UserService handles registration and login
type UserService struct {
	store  UserStore
	tokens TokenIssuer
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store UserStore, tokens TokenIssuer) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// RegisterUser creates an account with the User role
func (s *UserService) RegisterUser(ctx context.Context, req RegisterRequest) (*models.User, error) {
	return s.register(ctx, req, models.RoleUser)
}

// RegisterModerator creates an account with the Moderator role
func (s *UserService) RegisterModerator(ctx context.Context, req RegisterRequest) (*models.User, error) {
	return s.register(ctx, req, models.RoleModerator)
}

func (s *UserService) register(ctx context.Context, req RegisterRequest, role string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.register")
	defer span.End()

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Roles:        []string{role},
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("role", role))
	return user, nil
}

// Login verifies credentials and issues a session token
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Login")
	defer span.End()

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		util.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Roles)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	util.LoginsTotal.WithLabelValues("success").Inc()
	util.TokensIssuedTotal.Inc()
	s.logger.Info("User logged in", zap.String("user_id", user.ID))

	return user, token, nil
}
