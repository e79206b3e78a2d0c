package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/commerce-auth/internal/auth"
	"github.com/utafrali/commerce-auth/internal/domain"
	"github.com/utafrali/commerce-auth/internal/password"
	"github.com/utafrali/commerce-auth/internal/repository"
	apperrors "github.com/utafrali/commerce-auth/pkg/errors"
)

// eventPublishTimeout bounds background event publishing so a slow broker
// never delays a response.
const eventPublishTimeout = 5 * time.Second

// EventPublisher is the subset of the event producer the service uses.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishUserBanStatus(ctx context.Context, user *domain.User) error
}

// AuthService implements registration, login, token refresh, profile
// fetch, and admin ban management.
type AuthService struct {
	users  repository.UserRepository
	codec  *auth.TokenCodec
	hasher *password.Hasher
	events EventPublisher
	log    *slog.Logger
}

// NewAuthService creates the auth service. events may be nil when event
// publishing is disabled.
func NewAuthService(
	users repository.UserRepository,
	codec *auth.TokenCodec,
	hasher *password.Hasher,
	events EventPublisher,
	log *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		codec:  codec,
		hasher: hasher,
		events: events,
		log:    log,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new customer account and signs its first token pair.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, domain.TokenPair, error) {
	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, domain.TokenPair{}, fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return nil, domain.TokenPair{}, apperrors.Conflict("Email is already registered")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique constraint on email backstops the pre-check for
	// concurrent registrations; Create returns the same conflict.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, domain.TokenPair{}, err
	}

	tokens, err := s.codec.SignPair(user)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	s.log.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	s.publishAsync(ctx, user, func(ctx context.Context, u *domain.User) error {
		return s.events.PublishUserRegistered(ctx, u)
	})

	return user, tokens, nil
}

// Login verifies credentials and signs a fresh token pair. Unknown email
// and wrong password return the identical error so the response does not
// reveal which one failed.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (*domain.User, domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.TokenPair{}, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, domain.TokenPair{}, fmt.Errorf("fetch user by email: %w", err)
	}

	if user.IsBanned {
		return nil, domain.TokenPair{}, apperrors.Forbidden("Your account has been suspended")
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		return nil, domain.TokenPair{}, apperrors.Unauthorized("Invalid email or password")
	}

	tokens, err := s.codec.SignPair(user)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	s.log.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return user, tokens, nil
}

// RefreshTokens verifies a refresh token, refetches the user, and rotates
// both tokens. The user is refetched so bans and deletions since issuance
// take effect immediately.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			return domain.TokenPair{}, apperrors.Unauthorized("Refresh token has expired")
		}
		return domain.TokenPair{}, apperrors.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.TokenPair{}, apperrors.Unauthorized("User no longer exists")
		}
		return domain.TokenPair{}, fmt.Errorf("fetch user for refresh: %w", err)
	}

	if user.IsBanned {
		return domain.TokenPair{}, apperrors.Forbidden("Your account has been suspended")
	}

	tokens, err := s.codec.SignPair(user)
	if err != nil {
		return domain.TokenPair{}, err
	}

	s.log.DebugContext(ctx, "tokens refreshed", slog.String("user_id", user.ID))

	return tokens, nil
}

// GetProfile returns the client-facing profile of the given user.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Profile{}, apperrors.NotFound("User not found")
		}
		return domain.Profile{}, fmt.Errorf("fetch user: %w", err)
	}

	return user.Profile(), nil
}

// SetBanStatus marks a user banned or unbanned. Admin-only; enforced at
// the routing layer.
func (s *AuthService) SetBanStatus(ctx context.Context, userID string, banned bool) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	if user.IsBanned == banned {
		return user, nil
	}

	user.IsBanned = banned
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("update ban status: %w", err)
	}

	s.log.InfoContext(ctx, "user ban status changed",
		slog.String("user_id", user.ID),
		slog.Bool("is_banned", banned),
	)

	s.publishAsync(ctx, user, func(ctx context.Context, u *domain.User) error {
		return s.events.PublishUserBanStatus(ctx, u)
	})

	return user, nil
}

// publishAsync fires an event in the background. Publishing is best
// effort; failures are logged and never affect the caller's response.
func (s *AuthService) publishAsync(ctx context.Context, user *domain.User, publish func(context.Context, *domain.User) error) {
	if s.events == nil {
		return
	}

	bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	go func() {
		defer cancel()
		if err := publish(bgCtx, user); err != nil {
			s.log.WarnContext(bgCtx, "event publish failed",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}()
}
