package share

import (
	"context"
	defError "errors"
	"fmt"
	"time"

	"prompt-sharing-service/internal/domain"
	"prompt-sharing-service/internal/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromptProvider resolves the owning prompt for a consume response.
type PromptProvider interface {
	FindByID(ctx context.Context, id uint64) (*domain.Prompt, error)
}

// PermissionSource answers capability checks against the collaborator set.
type PermissionSource interface {
	PermissionFor(ctx context.Context, promptID uint64, userID string) (domain.Permission, error)
}

// Recorder appends best-effort audit entries.
type Recorder interface {
	Record(ctx context.Context, promptID uint64, userID, userName, action, details string, metadata map[string]any)
}

type IssueInput struct {
	Permission    string
	ExpiresInDays *int
	MaxUses       *int
	Description   string
}

// PromptSnapshot is the prompt view returned on a successful consume.
type PromptSnapshot struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ShareInfo struct {
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description"`
}

type ConsumeResponse struct {
	Prompt     PromptSnapshot    `json:"prompt"`
	Permission domain.Permission `json:"permission"`
	ShareInfo  ShareInfo         `json:"share_info"`
}

// SharedPromptView is one row of the "prompts I shared" listing.
type SharedPromptView struct {
	ID             uint64             `json:"id"`
	PromptID       uint64             `json:"prompt_id"`
	ShareToken     string             `json:"share_token"`
	PromptTitle    string             `json:"prompt_title"`
	OwnerID        string             `json:"owner_id"`
	OwnerName      string             `json:"owner_name"`
	Permission     domain.Permission  `json:"permission"`
	Status         domain.ShareStatus `json:"status" gorm:"-"`
	CreatedAt      time.Time          `json:"created_at"`
	ExpiresAt      *time.Time         `json:"expires_at,omitempty"`
	AccessCount    int                `json:"access_count"`
	LastAccessedAt *time.Time         `json:"last_accessed_at,omitempty"`
	Description    string             `json:"description"`
}

type Service interface {
	Issue(ctx context.Context, promptID uint64, issuerID, issuerName string, input IssueInput) (*domain.ShareLink, error)
	Resolve(ctx context.Context, token string) (*domain.ShareLink, error)
	Consume(ctx context.Context, token, consumerID string) (*ConsumeResponse, error)
	Revoke(ctx context.Context, token, requesterID, requesterName string) (bool, error)
	ListByCreator(ctx context.Context, userID string) ([]SharedPromptView, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type DefaultService struct {
	repository  Repository
	prompts     PromptProvider
	permissions PermissionSource
	recorder    Recorder
}

func NewService(repository Repository, prompts PromptProvider, permissions PermissionSource, recorder Recorder) Service {
	return &DefaultService{
		repository:  repository,
		prompts:     prompts,
		permissions: permissions,
		recorder:    recorder,
	}
}

// Issue mints a new bearer link on a prompt. Only the owner or an admin
// collaborator may issue; ttl and max uses must be positive when supplied.
func (s *DefaultService) Issue(ctx context.Context, promptID uint64, issuerID, issuerName string, input IssueInput) (*domain.ShareLink, error) {
	permission, err := domain.ParsePermission(input.Permission)
	if err != nil {
		return nil, errors.UnprocessableEntity("Unknown permission level!", err)
	}

	if input.ExpiresInDays != nil && *input.ExpiresInDays <= 0 {
		return nil, errors.BadRequest("expires_in_days must be positive", nil)
	}
	if input.MaxUses != nil && *input.MaxUses <= 0 {
		return nil, errors.BadRequest("max_uses must be positive", nil)
	}

	issuerPermission, err := s.permissions.PermissionFor(ctx, promptID, issuerID)
	if err != nil {
		return nil, err
	}
	if !issuerPermission.Covers(domain.PermissionAdmin) {
		return nil, errors.Forbidden("Only the owner or an admin can share a prompt!", nil)
	}

	now := time.Now().UTC()
	link := &domain.ShareLink{
		PromptID:    promptID,
		Token:       uuid.NewString(),
		Permission:  permission,
		CreatedBy:   issuerID,
		CreatedAt:   now,
		IsActive:    true,
		Description: input.Description,
	}
	if input.ExpiresInDays != nil {
		expiresAt := now.AddDate(0, 0, *input.ExpiresInDays)
		link.ExpiresAt = &expiresAt
	}
	if input.MaxUses != nil {
		maxUses := *input.MaxUses
		link.MaxUses = &maxUses
	}

	if err := s.repository.Create(ctx, link); err != nil {
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("Share token collision", err)
		}
		return nil, err
	}

	s.recorder.Record(ctx, promptID, issuerID, issuerName, "share_link_created",
		fmt.Sprintf("Created share link with %s permission", permission), nil)

	return link, nil
}

// Resolve returns a link only while it is usable. Every unusable state
// reads as not-found.
func (s *DefaultService) Resolve(ctx context.Context, token string) (*domain.ShareLink, error) {
	link, err := s.repository.FindUsable(ctx, token, time.Now().UTC())
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Share link not found", err)
		}
		return nil, err
	}
	return link, nil
}

// Consume burns one use of the link and returns the prompt snapshot it
// grants. The use-count check and increment happen in a single guarded
// statement, so the maxUses ceiling holds under concurrent access.
func (s *DefaultService) Consume(ctx context.Context, token, consumerID string) (*ConsumeResponse, error) {
	link, err := s.repository.ConsumeUsable(ctx, token, time.Now().UTC())
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Share link not found", err)
		}
		return nil, err
	}

	p, err := s.prompts.FindByID(ctx, link.PromptID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Prompt not found", err)
		}
		return nil, err
	}

	s.recorder.Record(ctx, link.PromptID, consumerID, consumerID, "prompt_accessed",
		"Accessed shared prompt via link", nil)

	return &ConsumeResponse{
		Prompt: PromptSnapshot{
			ID:        p.ID,
			Title:     p.Title,
			Content:   p.Content,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		},
		Permission: link.Permission,
		ShareInfo: ShareInfo{
			CreatedBy:   link.CreatedBy,
			CreatedAt:   link.CreatedAt,
			Description: link.Description,
		},
	}, nil
}

// Revoke deactivates a link when the requester created it. A false return
// covers both "no such token" and "not yours" without distinguishing them;
// revocation is terminal.
func (s *DefaultService) Revoke(ctx context.Context, token, requesterID, requesterName string) (bool, error) {
	link, err := s.repository.Revoke(ctx, token, requesterID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	s.recorder.Record(ctx, link.PromptID, requesterID, requesterName, "share_link_revoked",
		"Revoked share link", nil)

	return true, nil
}

func (s *DefaultService) ListByCreator(ctx context.Context, userID string) ([]SharedPromptView, error) {
	views, err := s.repository.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range views {
		if views[i].ExpiresAt != nil && !now.Before(*views[i].ExpiresAt) {
			views[i].Status = domain.StatusExpired
		} else {
			views[i].Status = domain.StatusActive
		}
	}

	return views, nil
}

// ExpireStale is the optional periodic sweep; resolve-time checks keep the
// registry correct without it.
func (s *DefaultService) ExpireStale(ctx context.Context) (int64, error) {
	return s.repository.ExpireStale(ctx, time.Now().UTC())
}
