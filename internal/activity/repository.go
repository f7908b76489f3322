package activity

import (
	"context"
	"time"

	"prompt-sharing-service/internal/domain"

	"gorm.io/gorm"
)

// Repository is the persistence boundary of the audit trail. Rows are only
// ever inserted; there is no update or delete path.
type Repository interface {
	Create(ctx context.Context, entry *domain.ShareActivity) error
	Tail(ctx context.Context, promptID uint64, limit int) ([]domain.ShareActivity, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, entry *domain.ShareActivity) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *RepositoryImpl) Tail(ctx context.Context, promptID uint64, limit int) ([]domain.ShareActivity, error) {
	var entries []domain.ShareActivity
	err := r.db.WithContext(ctx).
		Where("prompt_id = ?", promptID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
