package comment

import (
	"context"
	"time"

	"prompt-sharing-service/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, c *domain.PromptComment) error
	FindOnPrompt(ctx context.Context, id, promptID uint64) (*domain.PromptComment, error)
	List(ctx context.Context, promptID uint64) ([]domain.PromptComment, error)
	Resolve(ctx context.Context, id, promptID uint64) (bool, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, c *domain.PromptComment) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *RepositoryImpl) FindOnPrompt(ctx context.Context, id, promptID uint64) (*domain.PromptComment, error) {
	var c domain.PromptComment
	err := r.db.WithContext(ctx).
		Where("id = ? AND prompt_id = ?", id, promptID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RepositoryImpl) List(ctx context.Context, promptID uint64) ([]domain.PromptComment, error) {
	var comments []domain.PromptComment
	err := r.db.WithContext(ctx).
		Where("prompt_id = ?", promptID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// Resolve marks a comment resolved. Comments are never hard-deleted so the
// audit trail keeps its referents.
func (r *RepositoryImpl) Resolve(ctx context.Context, id, promptID uint64) (bool, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&domain.PromptComment{}).
		Where("id = ? AND prompt_id = ?", id, promptID).
		Updates(map[string]any{
			"is_resolved": true,
			"updated_at":  now,
		})
	return result.RowsAffected > 0, result.Error
}
