package collaborator

import (
	"context"
	"time"

	"prompt-sharing-service/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Upsert(ctx context.Context, c *domain.Collaborator) error
	ListActive(ctx context.Context, promptID uint64) ([]domain.Collaborator, error)
	Find(ctx context.Context, promptID uint64, userID string) (*domain.Collaborator, error)
	Deactivate(ctx context.Context, promptID uint64, userID string) (bool, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Upsert inserts or, on the (prompt_id, user_id) key, refreshes the existing
// row. Re-adding never duplicates; it reactivates and applies the latest
// name, email and permission while keeping the original added_at.
func (r *RepositoryImpl) Upsert(ctx context.Context, c *domain.Collaborator) error {
	if c.AddedAt.IsZero() {
		c.AddedAt = time.Now().UTC()
	}
	c.IsActive = true

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "prompt_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"user_name":  c.UserName,
				"email":      c.Email,
				"permission": c.Permission,
				"is_active":  true,
			}),
		}).
		Create(c).Error
}

func (r *RepositoryImpl) ListActive(ctx context.Context, promptID uint64) ([]domain.Collaborator, error) {
	var collaborators []domain.Collaborator
	err := r.db.WithContext(ctx).
		Where("prompt_id = ? AND is_active = ?", promptID, true).
		Order("added_at ASC").
		Find(&collaborators).Error
	return collaborators, err
}

func (r *RepositoryImpl) Find(ctx context.Context, promptID uint64, userID string) (*domain.Collaborator, error) {
	var c domain.Collaborator
	err := r.db.WithContext(ctx).
		Where("prompt_id = ? AND user_id = ?", promptID, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Deactivate soft-deletes; the row stays so audit entries keep a referent.
func (r *RepositoryImpl) Deactivate(ctx context.Context, promptID uint64, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Collaborator{}).
		Where("prompt_id = ? AND user_id = ? AND is_active = ?", promptID, userID, true).
		Update("is_active", false)
	return result.RowsAffected > 0, result.Error
}
