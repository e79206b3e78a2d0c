package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/utafrali/commerce-auth/internal/domain"
	apperrors "github.com/utafrali/commerce-auth/pkg/errors"
)

const issuer = "commerce-auth"

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims are the claims carried by a refresh token. Only the user
// ID is embedded; everything else is refetched from the store on refresh.
type RefreshClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the two token kinds. Access and refresh
// tokens use independent secrets so one kind can never stand in for the
// other.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenCodec creates a codec with the given secrets and lifetimes.
func NewTokenCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// SignAccess creates a signed access token for the user.
func (c *TokenCodec) SignAccess(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := &AccessClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique token ID so every signed token differs even within
			// the same second.
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// SignRefresh creates a signed refresh token for the user.
func (c *TokenCodec) SignRefresh(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := &RefreshClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// SignPair creates a matched access and refresh token for the user.
func (c *TokenCodec) SignPair(user *domain.User) (domain.TokenPair, error) {
	access, err := c.SignAccess(user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := c.SignRefresh(user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess parses and validates an access token.
func (c *TokenCodec) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(tokenString, claims, c.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token.
func (c *TokenCodec) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(tokenString, claims, c.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *TokenCodec) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("parse token: %w", apperrors.ErrTokenExpired)
		}
		return fmt.Errorf("parse token: %w: %w", apperrors.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return apperrors.ErrTokenInvalid
	}
	return nil
}
