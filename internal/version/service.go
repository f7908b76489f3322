package version

import (
	"context"
	defError "errors"
	"fmt"
	"time"

	"prompt-sharing-service/internal/domain"
	"prompt-sharing-service/internal/errors"
	"prompt-sharing-service/internal/notification"
	"prompt-sharing-service/redis"

	"gorm.io/gorm"
)

// PermissionSource answers capability checks against the collaborator set.
type PermissionSource interface {
	PermissionFor(ctx context.Context, promptID uint64, userID string) (domain.Permission, error)
}

// CollaboratorSource lists the parties to notify on a new version.
type CollaboratorSource interface {
	List(ctx context.Context, promptID uint64) ([]domain.Collaborator, error)
}

// Recorder appends best-effort audit entries.
type Recorder interface {
	Record(ctx context.Context, promptID uint64, userID, userName, action, details string, metadata map[string]any)
}

// Dispatcher enqueues best-effort notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, input notification.Input)
}

type CommitInput struct {
	Title         string
	Content       string
	ChangeSummary string
}

type PaginatedHistory struct {
	Data []domain.PromptVersion `json:"data"`
	Meta HistoryMeta            `json:"meta"`
}

type Service interface {
	Commit(ctx context.Context, promptID uint64, authorID, authorName string, input CommitInput) (*domain.PromptVersion, error)
	History(ctx context.Context, promptID uint64, page, pageSize int) (*PaginatedHistory, error)
	Current(ctx context.Context, promptID uint64) (*domain.PromptVersion, error)
}

type DefaultService struct {
	repository    Repository
	permissions   PermissionSource
	collaborators CollaboratorSource
	recorder      Recorder
	dispatcher    Dispatcher
	cache         *redis.Cache
}

func NewService(
	repository Repository,
	permissions PermissionSource,
	collaborators CollaboratorSource,
	recorder Recorder,
	dispatcher Dispatcher,
	cache *redis.Cache,
) Service {
	return &DefaultService{
		repository:    repository,
		permissions:   permissions,
		collaborators: collaborators,
		recorder:      recorder,
		dispatcher:    dispatcher,
		cache:         cache,
	}
}

// Commit appends the next snapshot and makes it current. The author needs
// write or better on the prompt.
func (s *DefaultService) Commit(ctx context.Context, promptID uint64, authorID, authorName string, input CommitInput) (*domain.PromptVersion, error) {
	permission, err := s.permissions.PermissionFor(ctx, promptID, authorID)
	if err != nil {
		return nil, err
	}
	if !permission.Covers(domain.PermissionWrite) {
		return nil, errors.Forbidden("Write permission required to commit a version!", nil)
	}

	v := &domain.PromptVersion{
		PromptID:      promptID,
		Title:         input.Title,
		Content:       input.Content,
		CreatedBy:     authorID,
		ChangeSummary: input.ChangeSummary,
	}
	if err := s.repository.Commit(ctx, v); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Prompt not found", err)
		}
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("Version number collision, retry the commit", err)
		}
		return nil, err
	}

	s.cache.IncrementVersion(ctx, historyVersionKey(promptID))

	s.recorder.Record(ctx, promptID, authorID, authorName, "version_created",
		fmt.Sprintf("Created version %d: %s", v.VersionNumber, input.ChangeSummary), nil)

	s.notifyCollaborators(ctx, promptID, authorID, authorName, v.VersionNumber)

	return v, nil
}

// notifyCollaborators tells everyone except the author about the new
// version. Best-effort only.
func (s *DefaultService) notifyCollaborators(ctx context.Context, promptID uint64, authorID, authorName string, versionNumber uint64) {
	collaborators, err := s.collaborators.List(ctx, promptID)
	if err != nil {
		return
	}

	for _, c := range collaborators {
		if c.UserID == authorID {
			continue
		}
		s.dispatcher.Dispatch(ctx, notification.Input{
			UserID:     c.UserID,
			Type:       domain.NotificationPromptUpdated,
			Title:      "Prompt Updated",
			Message:    fmt.Sprintf("%s published version %d of a prompt you collaborate on", authorName, versionNumber),
			PromptID:   &promptID,
			SenderID:   &authorID,
			SenderName: &authorName,
		})
	}
}

func (s *DefaultService) History(ctx context.Context, promptID uint64, page, pageSize int) (*PaginatedHistory, error) {
	v := s.cache.GetVersion(ctx, historyVersionKey(promptID))
	cacheKey := fmt.Sprintf("versions:p:%d:v:%d:page:%d:ps:%d", promptID, v, page, pageSize)

	var result PaginatedHistory
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	versions, meta, err := s.repository.History(ctx, promptID, page, pageSize)
	if err != nil {
		return nil, err
	}
	result = PaginatedHistory{Data: versions, Meta: meta}

	go s.cache.Set(context.Background(), cacheKey, result, 24*time.Hour)

	return &result, nil
}

func (s *DefaultService) Current(ctx context.Context, promptID uint64) (*domain.PromptVersion, error) {
	current, err := s.repository.Current(ctx, promptID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("No current version for prompt", err)
		}
		return nil, err
	}
	return current, nil
}

func historyVersionKey(promptID uint64) string {
	return fmt.Sprintf("prompt:%d:versions:version", promptID)
}
