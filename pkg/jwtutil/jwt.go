package jwtutil

import (
	"errors"
	"time"

	"notes-service/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpiredToken     = errors.New("token expired")
)

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	UserID   uint   `json:"userId"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID uint   `json:"tenantId"`
	jwt.RegisteredClaims
}

// Identity returns the caller identity carried by the claims
func (c *UserClaims) Identity() model.Identity {
	return model.Identity{
		UserID:   c.UserID,
		Email:    c.Email,
		Role:     model.Role(c.Role),
		TenantID: c.TenantID,
	}
}

// JWTUtil issues and validates identity tokens
type JWTUtil struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(config JWTConfig) (*JWTUtil, error) {
	if config.SigningKey == "" {
		return nil, errors.New("JWT signing key not provided")
	}
	hours := config.ExpirationHours
	if hours <= 0 {
		hours = 24
	}
	return &JWTUtil{
		signingKey: []byte(config.SigningKey),
		ttl:        time.Duration(hours) * time.Hour,
		now:        time.Now,
	}, nil
}

// GenerateToken creates a signed token for identity expiring after the configured TTL
func (j *JWTUtil) GenerateToken(identity model.Identity) (string, error) {
	issuedAt := j.now()
	claims := UserClaims{
		UserID:   identity.UserID,
		Email:    identity.Email,
		Role:     string(identity.Role),
		TenantID: identity.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.signingKey)
}

// ValidateToken checks signature and expiry and returns the decoded claims
func (j *JWTUtil) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return j.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 || claims.TenantID == 0 || !model.Role(claims.Role).Valid() {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
