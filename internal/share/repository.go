package share

import (
	"context"
	"time"

	"prompt-sharing-service/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, link *domain.ShareLink) error
	FindUsable(ctx context.Context, token string, now time.Time) (*domain.ShareLink, error)
	ConsumeUsable(ctx context.Context, token string, now time.Time) (*domain.ShareLink, error)
	Revoke(ctx context.Context, token, requesterID string) (*domain.ShareLink, error)
	ListByCreator(ctx context.Context, userID string) ([]SharedPromptView, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, link *domain.ShareLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// FindUsable fetches a link only while it still grants access. A missing,
// deactivated, expired or use-exhausted token all come back as
// ErrRecordNotFound so probing callers cannot tell the cases apart.
func (r *RepositoryImpl) FindUsable(ctx context.Context, token string, now time.Time) (*domain.ShareLink, error) {
	var link domain.ShareLink
	err := r.db.WithContext(ctx).
		Where("token = ? AND is_active = ?", token, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Where("max_uses IS NULL OR current_uses < max_uses").
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ConsumeUsable burns one use as a single guarded update. The usability
// conditions sit in the WHERE clause of the same statement that increments,
// so concurrent consumers can never push current_uses past max_uses.
func (r *RepositoryImpl) ConsumeUsable(ctx context.Context, token string, now time.Time) (*domain.ShareLink, error) {
	var link domain.ShareLink
	err := r.db.WithContext(ctx).Raw(`
		UPDATE share_links
		SET current_uses = current_uses + 1,
		    last_accessed_at = ?
		WHERE token = ?
		  AND is_active = TRUE
		  AND (expires_at IS NULL OR expires_at > ?)
		  AND (max_uses IS NULL OR current_uses < max_uses)
		RETURNING *
	`, now, token, now).Scan(&link).Error
	if err != nil {
		return nil, err
	}
	if link.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &link, nil
}

// Revoke deactivates a link, guarded on its creator. A token that exists
// but belongs to someone else behaves exactly like one that never existed.
func (r *RepositoryImpl) Revoke(ctx context.Context, token, requesterID string) (*domain.ShareLink, error) {
	var link domain.ShareLink
	err := r.db.WithContext(ctx).Raw(`
		UPDATE share_links
		SET is_active = FALSE
		WHERE token = ?
		  AND created_by = ?
		  AND is_active = TRUE
		RETURNING *
	`, token, requesterID).Scan(&link).Error
	if err != nil {
		return nil, err
	}
	if link.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &link, nil
}

func (r *RepositoryImpl) ListByCreator(ctx context.Context, userID string) ([]SharedPromptView, error) {
	var views []SharedPromptView
	err := r.db.WithContext(ctx).Raw(`
		SELECT sl.id,
		       sl.prompt_id,
		       sl.token AS share_token,
		       p.title AS prompt_title,
		       sl.created_by AS owner_id,
		       p.owner_name AS owner_name,
		       sl.permission,
		       sl.created_at,
		       sl.expires_at,
		       sl.current_uses AS access_count,
		       sl.last_accessed_at,
		       sl.description
		FROM share_links sl
		JOIN prompts p ON sl.prompt_id = p.id
		WHERE sl.created_by = ? AND sl.is_active = TRUE
		ORDER BY sl.created_at DESC
	`, userID).Scan(&views).Error
	return views, err
}

// ExpireStale flips links past their expiry to inactive. Purely an
// optimization for listing views; resolve checks expiry on its own.
func (r *RepositoryImpl) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.ShareLink{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
