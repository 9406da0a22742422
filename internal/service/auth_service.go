package service

import (
	"context"

	"notes-service/internal/errs"
	"notes-service/internal/model"
	"notes-service/pkg/password"
	"notes-service/prometheus"

	"go.uber.org/zap"
)

// UserStore is the storage the auth service needs
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// TokenIssuer signs identity tokens
type TokenIssuer interface {
	GenerateToken(identity model.Identity) (string, error)
}

// LoginResult is a successful login: a token and the user with its tenant loaded
type LoginResult struct {
	Token string
	User  *model.User
}

// AuthService checks credentials and issues tokens
type AuthService struct {
	users     UserStore
	hasher    password.Hasher
	tokens    TokenIssuer
	log       *zap.Logger
	metrics   *prometheus.Metrics
	dummyHash string
}

var errInvalidCredentials = errs.New(errs.Unauthorized, "Invalid credentials")

// NewAuthService creates an auth service
func NewAuthService(users UserStore, hasher password.Hasher, tokens TokenIssuer, log *zap.Logger, metrics *prometheus.Metrics) (*AuthService, error) {
	// Unknown emails are still checked against a hash so both failures cost the same
	dummyHash, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		log:       log,
		metrics:   metrics,
		dummyHash: dummyHash,
	}, nil
}

// Login verifies email and password and returns a signed token. Unknown email
// and wrong password fail with the same error.
func (s *AuthService) Login(ctx context.Context, email, plain string) (*LoginResult, error) {
	s.metrics.RecordLogin()

	if email == "" || plain == "" {
		return nil, errs.New(errs.Validation, "Email and password are required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if !errs.Is(err, errs.NotFound) {
			return nil, err
		}
		s.hasher.Verify(plain, s.dummyHash)
		s.metrics.RecordAuthError("user_not_found")
		s.log.Info("Login failed", zap.String("reason", "unknown_email"))
		return nil, errInvalidCredentials
	}

	if !s.hasher.Verify(plain, user.PasswordHash) {
		s.metrics.RecordAuthError("invalid_password")
		s.log.Info("Login failed", zap.String("reason", "invalid_password"), zap.Uint("user_id", user.ID))
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(model.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		TenantID: user.TenantID,
	})
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "generate token", err)
	}

	s.log.Info("User logged in", zap.Uint("user_id", user.ID), zap.Uint("tenant_id", user.TenantID))
	return &LoginResult{Token: token, User: user}, nil
}
