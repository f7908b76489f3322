package activity

import (
	"context"
	"log"
	"time"

	"prompt-sharing-service/internal/domain"
	"prompt-sharing-service/internal/worker"
)

const (
	defaultTailLimit = 50
	maxTailLimit     = 200
)

// TaskPool is the slice of the worker pool this service needs.
type TaskPool interface {
	Submit(t worker.Task)
}

type Service interface {
	Append(ctx context.Context, entry *domain.ShareActivity) error
	Record(ctx context.Context, promptID uint64, userID, userName, action, details string, metadata map[string]any)
	Tail(ctx context.Context, promptID uint64, limit int) ([]domain.ShareActivity, error)
}

type DefaultService struct {
	repository Repository
	pool       TaskPool
}

// NewService creates the activity service. pool may be nil; Record then
// writes inline instead of queueing.
func NewService(repository Repository, pool TaskPool) Service {
	return &DefaultService{repository: repository, pool: pool}
}

// Append inserts one audit row and surfaces any storage error.
func (s *DefaultService) Append(ctx context.Context, entry *domain.ShareActivity) error {
	return s.repository.Create(ctx, entry)
}

// Record is the fire-and-forget variant used by mutating operations. A
// failed append is logged and never fails the operation it describes.
func (s *DefaultService) Record(ctx context.Context, promptID uint64, userID, userName, action, details string, metadata map[string]any) {
	entry := &domain.ShareActivity{
		PromptID:  promptID,
		UserID:    userID,
		UserName:  userName,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}

	if s.pool == nil {
		if err := s.repository.Create(ctx, entry); err != nil {
			log.Printf("[ACTIVITY] failed to log %q for prompt %d: %v", action, promptID, err)
		}
		return
	}

	s.pool.Submit(func(taskCtx context.Context) error {
		return s.repository.Create(taskCtx, entry)
	})
}

func (s *DefaultService) Tail(ctx context.Context, promptID uint64, limit int) ([]domain.ShareActivity, error) {
	if limit <= 0 {
		limit = defaultTailLimit
	}
	if limit > maxTailLimit {
		limit = maxTailLimit
	}
	return s.repository.Tail(ctx, promptID, limit)
}
