package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/commerce-auth/internal/domain"
	pkgkafka "github.com/utafrali/commerce-auth/pkg/kafka"
)

// Kafka topics for auth domain events.
const (
	TopicUserRegistered = "auth.user.registered"
	TopicUserBanned     = "auth.user.banned"
	TopicUserUnbanned   = "auth.user.unbanned"
)

// Source identifier for events originating from this service.
const Source = "commerce-auth"

// UserRegisteredData is the payload for an auth.user.registered event.
type UserRegisteredData struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// UserBanStatusData is the payload for ban and unban events.
type UserBanStatusData struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	IsBanned bool   `json:"isBanned"`
}

// Publisher is the event sink the service depends on.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes auth domain events to Kafka.
type Producer struct {
	sink Publisher
	log  *slog.Logger
}

// NewProducer creates an event producer backed by the given sink.
func NewProducer(sink Publisher, log *slog.Logger) *Producer {
	return &Producer{sink: sink, log: log}
}

// PublishUserRegistered publishes an auth.user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}

	ev, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, Source, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.sink.Publish(ctx, TopicUserRegistered, ev); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.log.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
	)

	return nil
}

// PublishUserBanStatus publishes an auth.user.banned or auth.user.unbanned
// event depending on the user's current ban state.
func (p *Producer) PublishUserBanStatus(ctx context.Context, user *domain.User) error {
	topic := TopicUserUnbanned
	if user.IsBanned {
		topic = TopicUserBanned
	}

	data := UserBanStatusData{
		UserID:   user.ID,
		Email:    user.Email,
		IsBanned: user.IsBanned,
	}

	ev, err := pkgkafka.NewEvent(topic, user.ID, Source, data)
	if err != nil {
		return fmt.Errorf("create ban status event: %w", err)
	}

	if err := p.sink.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish ban status event: %w", err)
	}

	p.log.DebugContext(ctx, "published ban status event",
		slog.String("user_id", user.ID),
		slog.Bool("is_banned", user.IsBanned),
	)

	return nil
}
