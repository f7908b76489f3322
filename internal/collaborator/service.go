package collaborator

import (
	"context"
	defError "errors"
	"fmt"

	"prompt-sharing-service/internal/domain"
	"prompt-sharing-service/internal/errors"
	"prompt-sharing-service/internal/notification"

	"gorm.io/gorm"
)

// PromptProvider resolves the owning prompt; the owner always holds admin.
type PromptProvider interface {
	FindByID(ctx context.Context, id uint64) (*domain.Prompt, error)
}

// Recorder appends best-effort audit entries.
type Recorder interface {
	Record(ctx context.Context, promptID uint64, userID, userName, action, details string, metadata map[string]any)
}

// Dispatcher enqueues best-effort notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, input notification.Input)
}

type AddInput struct {
	UserID     string
	UserName   string
	Email      string
	Permission string
}

type Service interface {
	AddOrUpdate(ctx context.Context, promptID uint64, requesterID, requesterName string, input AddInput) (*domain.Collaborator, error)
	List(ctx context.Context, promptID uint64) ([]domain.Collaborator, error)
	Remove(ctx context.Context, promptID uint64, targetUserID, requesterID, requesterName string) error
	PermissionFor(ctx context.Context, promptID uint64, userID string) (domain.Permission, error)
}

type DefaultService struct {
	repository Repository
	prompts    PromptProvider
	recorder   Recorder
	dispatcher Dispatcher
}

func NewService(repository Repository, prompts PromptProvider, recorder Recorder, dispatcher Dispatcher) Service {
	return &DefaultService{
		repository: repository,
		prompts:    prompts,
		recorder:   recorder,
		dispatcher: dispatcher,
	}
}

func (s *DefaultService) AddOrUpdate(ctx context.Context, promptID uint64, requesterID, requesterName string, input AddInput) (*domain.Collaborator, error) {
	permission, err := domain.ParsePermission(input.Permission)
	if err != nil {
		return nil, errors.UnprocessableEntity("Unknown permission level!", err)
	}

	requesterPermission, err := s.PermissionFor(ctx, promptID, requesterID)
	if err != nil {
		return nil, err
	}
	if !requesterPermission.Covers(domain.PermissionWrite) {
		return nil, errors.Forbidden("Write permission required to add collaborators!", nil)
	}

	c := &domain.Collaborator{
		PromptID:   promptID,
		UserID:     input.UserID,
		UserName:   input.UserName,
		Email:      input.Email,
		Permission: permission,
	}
	if err := s.repository.Upsert(ctx, c); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, promptID, requesterID, requesterName, "collaborator_added",
		fmt.Sprintf("Added %s as collaborator with %s permission", input.UserName, permission), nil)

	s.dispatcher.Dispatch(ctx, notification.Input{
		UserID:     input.UserID,
		Type:       domain.NotificationCollabInvite,
		Title:      "Collaboration Invitation",
		Message:    fmt.Sprintf("You've been invited to collaborate on a prompt with %s permission", permission),
		PromptID:   &promptID,
		SenderID:   &requesterID,
		SenderName: &requesterName,
	})

	return c, nil
}

func (s *DefaultService) List(ctx context.Context, promptID uint64) ([]domain.Collaborator, error) {
	return s.repository.ListActive(ctx, promptID)
}

func (s *DefaultService) Remove(ctx context.Context, promptID uint64, targetUserID, requesterID, requesterName string) error {
	requesterPermission, err := s.PermissionFor(ctx, promptID, requesterID)
	if err != nil {
		return err
	}
	if !requesterPermission.Covers(domain.PermissionWrite) {
		return errors.Forbidden("Write permission required to remove collaborators!", nil)
	}

	removed, err := s.repository.Deactivate(ctx, promptID, targetUserID)
	if err != nil {
		return err
	}
	if !removed {
		return errors.NotFound("Collaborator not found", nil)
	}

	s.recorder.Record(ctx, promptID, requesterID, requesterName, "collaborator_removed",
		fmt.Sprintf("Removed collaborator %s", targetUserID), nil)

	return nil
}

// PermissionFor resolves the effective permission of a user on a prompt.
// The owner holds admin; otherwise the active collaborator row decides;
// everyone else holds none.
func (s *DefaultService) PermissionFor(ctx context.Context, promptID uint64, userID string) (domain.Permission, error) {
	p, err := s.prompts.FindByID(ctx, promptID)
	if err != nil {
		return domain.PermissionNone, err
	}
	if p.OwnerID == userID {
		return domain.PermissionAdmin, nil
	}

	c, err := s.repository.Find(ctx, promptID, userID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return domain.PermissionNone, nil
		}
		return domain.PermissionNone, err
	}
	if !c.IsActive {
		return domain.PermissionNone, nil
	}

	return c.Permission, nil
}
