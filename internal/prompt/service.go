package prompt

import (
	"context"
	defError "errors"

	"prompt-sharing-service/internal/domain"
	"prompt-sharing-service/internal/errors"

	"gorm.io/gorm"
)

type Service interface {
	CreatePrompt(ctx context.Context, ownerID, ownerName, title, content string) (*domain.Prompt, error)
	GetPrompt(ctx context.Context, id uint64) (*domain.Prompt, error)
	DeletePrompt(ctx context.Context, id uint64, requesterID string) error
	// FindByID satisfies the PromptProvider interfaces of the sharing packages.
	FindByID(ctx context.Context, id uint64) (*domain.Prompt, error)
}

type DefaultService struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) CreatePrompt(ctx context.Context, ownerID, ownerName, title, content string) (*domain.Prompt, error) {
	p := &domain.Prompt{
		Title:     title,
		Content:   content,
		OwnerID:   ownerID,
		OwnerName: ownerName,
	}
	if err := s.repository.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *DefaultService) GetPrompt(ctx context.Context, id uint64) (*domain.Prompt, error) {
	p, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Prompt not found", err)
		}
		return nil, err
	}
	return p, nil
}

func (s *DefaultService) DeletePrompt(ctx context.Context, id uint64, requesterID string) error {
	p, err := s.GetPrompt(ctx, id)
	if err != nil {
		return err
	}

	if p.OwnerID != requesterID {
		return errors.Forbidden("Only the owner can delete a prompt!", nil)
	}

	return s.repository.Delete(ctx, id)
}

func (s *DefaultService) FindByID(ctx context.Context, id uint64) (*domain.Prompt, error) {
	return s.GetPrompt(ctx, id)
}
