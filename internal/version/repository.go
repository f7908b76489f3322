package version

import (
	"context"
	"time"

	"prompt-sharing-service/internal/domain"

	"gorm.io/gorm"
)

type HistoryMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

type Repository interface {
	Commit(ctx context.Context, v *domain.PromptVersion) error
	History(ctx context.Context, promptID uint64, page, pageSize int) ([]domain.PromptVersion, HistoryMeta, error)
	Current(ctx context.Context, promptID uint64) (*domain.PromptVersion, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Commit appends the next version as one transaction: bump the per-prompt
// counter (the row lock serializes concurrent commits on the same prompt),
// demote the current row, insert the new one as current. The unique
// (prompt_id, version_number) index backstops the counter.
func (r *RepositoryImpl) Commit(ctx context.Context, v *domain.PromptVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var seq uint64
		if err := tx.Raw(`
			UPDATE prompts
			SET version_seq = version_seq + 1,
			    updated_at = ?
			WHERE id = ?
			RETURNING version_seq
		`, now, v.PromptID).Scan(&seq).Error; err != nil {
			return err
		}
		if seq == 0 {
			// version_seq starts at 1 after the first bump, so zero
			// means the prompt row does not exist
			return gorm.ErrRecordNotFound
		}

		if err := tx.Model(&domain.PromptVersion{}).
			Where("prompt_id = ? AND is_current = ?", v.PromptID, true).
			Update("is_current", false).Error; err != nil {
			return err
		}

		v.VersionNumber = seq
		v.IsCurrent = true
		v.CreatedAt = now

		return tx.Create(v).Error
	})
}

func (r *RepositoryImpl) History(ctx context.Context, promptID uint64, page, pageSize int) ([]domain.PromptVersion, HistoryMeta, error) {
	var versions []domain.PromptVersion
	var totalRecords int64

	// Count total records
	if err := r.db.WithContext(ctx).
		Model(&domain.PromptVersion{}).
		Where("prompt_id = ?", promptID).
		Count(&totalRecords).Error; err != nil {
		return versions, HistoryMeta{}, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("prompt_id = ?", promptID).
		Order("version_number DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&versions).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return versions, HistoryMeta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

func (r *RepositoryImpl) Current(ctx context.Context, promptID uint64) (*domain.PromptVersion, error) {
	var v domain.PromptVersion
	err := r.db.WithContext(ctx).
		Where("prompt_id = ? AND is_current = ?", promptID, true).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}
