package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"prompt-sharing-service/internal/domain"
	"prompt-sharing-service/internal/errors"
	"prompt-sharing-service/internal/worker"
	"prompt-sharing-service/redis"
)

// TaskPool is the slice of the worker pool this service needs.
type TaskPool interface {
	Submit(t worker.Task)
}

// Input carries everything needed to create one inbox entry.
type Input struct {
	UserID     string
	Type       domain.NotificationType
	Title      string
	Message    string
	PromptID   *uint64
	SenderID   *string
	SenderName *string
	Metadata   map[string]any
}

type Service interface {
	Notify(ctx context.Context, input Input) (*domain.ShareNotification, error)
	Dispatch(ctx context.Context, input Input)
	Inbox(ctx context.Context, userID string, unreadOnly bool) ([]domain.ShareNotification, error)
	MarkRead(ctx context.Context, id uint64, userID string) (bool, error)
}

type DefaultService struct {
	repository Repository
	sink       *WebhookClient
	pool       TaskPool
	cache      *redis.Cache
}

// NewService creates the notification service. sink and pool may be nil;
// delivery is then skipped or done inline respectively.
func NewService(repository Repository, sink *WebhookClient, pool TaskPool, cache *redis.Cache) Service {
	return &DefaultService{
		repository: repository,
		sink:       sink,
		pool:       pool,
		cache:      cache,
	}
}

// Notify stores an unread inbox entry and hands it to the delivery sink.
// Storage errors surface to the caller; delivery failures never do.
func (s *DefaultService) Notify(ctx context.Context, input Input) (*domain.ShareNotification, error) {
	if _, err := domain.ParseNotificationType(string(input.Type)); err != nil {
		return nil, errors.UnprocessableEntity("Unknown notification type!", err)
	}

	n := &domain.ShareNotification{
		UserID:     input.UserID,
		Type:       input.Type,
		Title:      input.Title,
		Message:    input.Message,
		PromptID:   input.PromptID,
		SenderID:   input.SenderID,
		SenderName: input.SenderName,
		CreatedAt:  time.Now().UTC(),
		Metadata:   input.Metadata,
	}

	if err := s.repository.Create(ctx, n); err != nil {
		return nil, err
	}

	s.cache.IncrementVersion(ctx, inboxVersionKey(input.UserID))
	s.deliver(n)

	return n, nil
}

// Dispatch is the best-effort variant used by other components: a failure
// to notify never fails the operation that triggered it.
func (s *DefaultService) Dispatch(ctx context.Context, input Input) {
	if _, err := s.Notify(ctx, input); err != nil {
		log.Printf("[NOTIFY] failed to notify user %s (%s): %v", input.UserID, input.Type, err)
	}
}

func (s *DefaultService) deliver(n *domain.ShareNotification) {
	if s.sink == nil {
		return
	}

	if s.pool == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.sink.Deliver(ctx, n); err != nil {
			log.Printf("[NOTIFY] delivery failed for notification %d: %v", n.ID, err)
		}
		return
	}

	s.pool.Submit(func(taskCtx context.Context) error {
		ctx, cancel := context.WithTimeout(taskCtx, 5*time.Second)
		defer cancel()
		return s.sink.Deliver(ctx, n)
	})
}

func (s *DefaultService) Inbox(ctx context.Context, userID string, unreadOnly bool) ([]domain.ShareNotification, error) {
	v := s.cache.GetVersion(ctx, inboxVersionKey(userID))
	cacheKey := fmt.Sprintf("inbox:u:%s:v:%d:unread:%t", userID, v, unreadOnly)

	var cached []domain.ShareNotification
	found, _ := s.cache.Get(ctx, cacheKey, &cached)
	if found {
		return cached, nil
	}

	notifications, err := s.repository.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, err
	}

	go s.cache.Set(context.Background(), cacheKey, notifications, time.Hour)

	return notifications, nil
}

func (s *DefaultService) MarkRead(ctx context.Context, id uint64, userID string) (bool, error) {
	ok, err := s.repository.MarkRead(ctx, id, userID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	if ok {
		s.cache.IncrementVersion(ctx, inboxVersionKey(userID))
	}
	return ok, nil
}

func inboxVersionKey(userID string) string {
	return fmt.Sprintf("user:%s:inbox:version", userID)
}
