package prompt

import (
	"context"
	"time"

	"prompt-sharing-service/internal/domain"

	"gorm.io/gorm"
)

// Repository owns the prompt rows the sharing core hangs off. Dependent
// rows (links, versions, comments, ...) are removed by the store's cascade
// when a prompt goes away.
type Repository interface {
	Create(ctx context.Context, p *domain.Prompt) error
	FindByID(ctx context.Context, id uint64) (*domain.Prompt, error)
	Delete(ctx context.Context, id uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, p *domain.Prompt) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Prompt, error) {
	var p domain.Prompt
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// dependent rows first; keeps deletes working even where FK
		// cascades were not installed by the migration
		for _, model := range []any{
			&domain.ShareLink{},
			&domain.Collaborator{},
			&domain.PromptVersion{},
			&domain.ShareActivity{},
			&domain.PromptComment{},
		} {
			if err := tx.Where("prompt_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.Prompt{}, id).Error
	})
}
