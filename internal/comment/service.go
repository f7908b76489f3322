package comment

import (
	"context"
	defError "errors"
	"fmt"

	"prompt-sharing-service/internal/domain"
	"prompt-sharing-service/internal/errors"
	"prompt-sharing-service/internal/notification"

	"gorm.io/gorm"
)

// Recorder appends best-effort audit entries.
type Recorder interface {
	Record(ctx context.Context, promptID uint64, userID, userName, action, details string, metadata map[string]any)
}

// Dispatcher enqueues best-effort notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, input notification.Input)
}

type Service interface {
	Post(ctx context.Context, promptID uint64, userID, userName, content string, parentID *uint64) (*domain.PromptComment, error)
	List(ctx context.Context, promptID uint64) ([]domain.PromptComment, error)
	Resolve(ctx context.Context, commentID, promptID uint64, userID, userName string) (bool, error)
}

type DefaultService struct {
	repository Repository
	recorder   Recorder
	dispatcher Dispatcher
}

func NewService(repository Repository, recorder Recorder, dispatcher Dispatcher) Service {
	return &DefaultService{
		repository: repository,
		recorder:   recorder,
		dispatcher: dispatcher,
	}
}

// Post adds a comment, optionally as a reply. A parent must exist on the
// same prompt; replies notify the parent's author.
func (s *DefaultService) Post(ctx context.Context, promptID uint64, userID, userName, content string, parentID *uint64) (*domain.PromptComment, error) {
	var parent *domain.PromptComment
	if parentID != nil {
		var err error
		parent, err = s.repository.FindOnPrompt(ctx, *parentID, promptID)
		if err != nil {
			if defError.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.UnprocessableEntity("Parent comment not found on this prompt!", err)
			}
			return nil, err
		}
	}

	c := &domain.PromptComment{
		PromptID: promptID,
		UserID:   userID,
		UserName: userName,
		Content:  content,
		ParentID: parentID,
	}
	if err := s.repository.Create(ctx, c); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, promptID, userID, userName, "comment_added",
		fmt.Sprintf("Added comment: %s", truncate(content, 50)), nil)

	if parent != nil && parent.UserID != userID {
		s.dispatcher.Dispatch(ctx, notification.Input{
			UserID:     parent.UserID,
			Type:       domain.NotificationCommentAdded,
			Title:      "New Reply",
			Message:    fmt.Sprintf("%s replied to your comment", userName),
			PromptID:   &promptID,
			SenderID:   &userID,
			SenderName: &userName,
		})
	}

	return c, nil
}

func (s *DefaultService) List(ctx context.Context, promptID uint64) ([]domain.PromptComment, error) {
	return s.repository.List(ctx, promptID)
}

func (s *DefaultService) Resolve(ctx context.Context, commentID, promptID uint64, userID, userName string) (bool, error) {
	ok, err := s.repository.Resolve(ctx, commentID, promptID)
	if err != nil || !ok {
		return false, err
	}

	s.recorder.Record(ctx, promptID, userID, userName, "comment_resolved",
		fmt.Sprintf("Resolved comment %d", commentID), nil)

	return true, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
