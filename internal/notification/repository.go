package notification

import (
	"context"
	"time"

	"prompt-sharing-service/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, n *domain.ShareNotification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.ShareNotification, error)
	MarkRead(ctx context.Context, id uint64, userID string, readAt time.Time) (bool, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, n *domain.ShareNotification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *RepositoryImpl) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.ShareNotification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []domain.ShareNotification
	err := query.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

// MarkRead flips the read flag, guarded on the owning user. The guard in the
// WHERE clause means a foreign notification id reports false instead of
// leaking whether it exists.
func (r *RepositoryImpl) MarkRead(ctx context.Context, id uint64, userID string, readAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.ShareNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"is_read": true,
			"read_at": readAt,
		})
	return result.RowsAffected > 0, result.Error
}
