package share

import (
	"context"
	"sync"
	"testing"
	"time"

	"prompt-sharing-service/internal/domain"
	apiError "prompt-sharing-service/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, promptID uint64, userID, userName, action, details string, metadata map[string]any) {
	m.Called(ctx, promptID, userID, userName, action, details, metadata)
}

type MockPermissionSource struct {
	mock.Mock
}

func (m *MockPermissionSource) PermissionFor(ctx context.Context, promptID uint64, userID string) (domain.Permission, error) {
	args := m.Called(ctx, promptID, userID)
	return args.Get(0).(domain.Permission), args.Error(1)
}

type MockPromptProvider struct {
	mock.Mock
}

func (m *MockPromptProvider) FindByID(ctx context.Context, id uint64) (*domain.Prompt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prompt), args.Error(1)
}

// fakeRepository keeps links in memory with the same usability semantics
// the SQL guards enforce.
type fakeRepository struct {
	mu     sync.Mutex
	links  map[string]*domain.ShareLink
	nextID uint64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{links: map[string]*domain.ShareLink{}}
}

func (f *fakeRepository) Create(ctx context.Context, link *domain.ShareLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.links[link.Token]; exists {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	link.ID = f.nextID
	stored := *link
	f.links[link.Token] = &stored
	return nil
}

func (f *fakeRepository) FindUsable(ctx context.Context, token string, now time.Time) (*domain.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[token]
	if !ok || !link.Usable(now) {
		return nil, gorm.ErrRecordNotFound
	}
	out := *link
	return &out, nil
}

func (f *fakeRepository) ConsumeUsable(ctx context.Context, token string, now time.Time) (*domain.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[token]
	if !ok || !link.Usable(now) {
		return nil, gorm.ErrRecordNotFound
	}
	link.CurrentUses++
	link.LastAccessedAt = &now
	out := *link
	return &out, nil
}

func (f *fakeRepository) Revoke(ctx context.Context, token, requesterID string) (*domain.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[token]
	if !ok || link.CreatedBy != requesterID || !link.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	link.IsActive = false
	out := *link
	return &out, nil
}

func (f *fakeRepository) ListByCreator(ctx context.Context, userID string) ([]SharedPromptView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var views []SharedPromptView
	for _, link := range f.links {
		if link.CreatedBy != userID || !link.IsActive {
			continue
		}
		views = append(views, SharedPromptView{
			ID:          link.ID,
			PromptID:    link.PromptID,
			ShareToken:  link.Token,
			OwnerID:     link.CreatedBy,
			Permission:  link.Permission,
			CreatedAt:   link.CreatedAt,
			ExpiresAt:   link.ExpiresAt,
			AccessCount: link.CurrentUses,
			Description: link.Description,
		})
	}
	return views, nil
}

func (f *fakeRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, link := range f.links {
		if link.IsActive && link.ExpiresAt != nil && !now.Before(*link.ExpiresAt) {
			link.IsActive = false
			n++
		}
	}
	return n, nil
}

func newTestService(repo Repository, permission domain.Permission) (Service, *MockRecorder, *MockPromptProvider) {
	recorder := new(MockRecorder)
	recorder.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()

	permissions := new(MockPermissionSource)
	permissions.On("PermissionFor", mock.Anything, mock.Anything, mock.Anything).Return(permission, nil).Maybe()

	prompts := new(MockPromptProvider)
	prompts.On("FindByID", mock.Anything, mock.Anything).Return(&domain.Prompt{
		ID:      1,
		Title:   "My Prompt",
		Content: "Prompt body",
		OwnerID: "alice",
	}, nil).Maybe()

	return NewService(repo, prompts, permissions, recorder), recorder, prompts
}

func TestIssue_GeneratesUniqueTokens(t *testing.T) {
	service, _, _ := newTestService(newFakeRepository(), domain.PermissionAdmin)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		link, err := service.Issue(context.Background(), 1, "alice", "Alice", IssueInput{Permission: "read"})
		assert.NoError(t, err)
		assert.NotEmpty(t, link.Token)
		assert.False(t, seen[link.Token], "token issued twice: %s", link.Token)
		seen[link.Token] = true
	}
}

func TestIssue_RejectsNonPositiveBounds(t *testing.T) {
	service, _, _ := newTestService(newFakeRepository(), domain.PermissionAdmin)

	zero := 0
	_, err := service.Issue(context.Background(), 1, "alice", "Alice", IssueInput{Permission: "read", ExpiresInDays: &zero})
	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)

	negative := -2
	_, err = service.Issue(context.Background(), 1, "alice", "Alice", IssueInput{Permission: "read", MaxUses: &negative})
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}

func TestIssue_RejectsUnknownPermission(t *testing.T) {
	service, _, _ := newTestService(newFakeRepository(), domain.PermissionAdmin)

	_, err := service.Issue(context.Background(), 1, "alice", "Alice", IssueInput{Permission: "superuser"})
	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.Status)
}

func TestIssue_RequiresAdmin(t *testing.T) {
	service, _, _ := newTestService(newFakeRepository(), domain.PermissionWrite)

	_, err := service.Issue(context.Background(), 1, "bob", "Bob", IssueInput{Permission: "read"})
	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestResolve_UnknownToken(t *testing.T) {
	service, _, _ := newTestService(newFakeRepository(), domain.PermissionAdmin)

	_, err := service.Resolve(context.Background(), "no-such-token")
	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestResolve_ExpiredLink(t *testing.T) {
	repo := newFakeRepository()
	service, _, _ := newTestService(repo, domain.PermissionAdmin)

	link, err := service.Issue(context.Background(), 1, "alice", "Alice", IssueInput{Permission: "read"})
	assert.NoError(t, err)

	// push the expiry into the past; is_active and the use count stay fine
	past := time.Now().UTC().Add(-time.Hour)
	repo.links[link.Token].ExpiresAt = &past

	_, err = service.Resolve(context.Background(), link.Token)
	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

// TestShareLinkLifecycle covers the whole arc: issue with maxUses=2, two
// successful consumes, use exhaustion, revoke by issuer, resolve failure.
func TestShareLinkLifecycle(t *testing.T) {
	repo := newFakeRepository()
	service, _, _ := newTestService(repo, domain.PermissionAdmin)
	ctx := context.Background()

	maxUses := 2
	link, err := service.Issue(ctx, 1, "alice", "Alice", IssueInput{
		Permission:  "read",
		MaxUses:     &maxUses,
		Description: "review link",
	})
	assert.NoError(t, err)

	for i := 1; i <= 2; i++ {
		result, err := service.Consume(ctx, link.Token, "bob")
		assert.NoError(t, err, "consume %d should succeed", i)
		assert.Equal(t, "My Prompt", result.Prompt.Title)
		assert.Equal(t, domain.PermissionRead, result.Permission)
		assert.Equal(t, "alice", result.ShareInfo.CreatedBy)
	}

	_, err = service.Consume(ctx, link.Token, "bob")
	var apiErr *apiError.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, 2, repo.links[link.Token].CurrentUses)

	// revoke by a non-owner is a silent no-op
	ok, err := service.Revoke(ctx, link.Token, "bob", "Bob")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, repo.links[link.Token].IsActive)

	ok, err = service.Revoke(ctx, link.Token, "alice", "Alice")
	assert.NoError(t, err)
	assert.True(t, ok)

	_, err = service.Resolve(ctx, link.Token)
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestConsume_RecordsAccessActivity(t *testing.T) {
	repo := newFakeRepository()
	recorder := new(MockRecorder)
	recorder.On("Record", mock.Anything, uint64(1), "alice", "Alice", "share_link_created", mock.Anything, mock.Anything).Return().Once()
	recorder.On("Record", mock.Anything, uint64(1), "carol", "carol", "prompt_accessed", mock.Anything, mock.Anything).Return().Once()

	permissions := new(MockPermissionSource)
	permissions.On("PermissionFor", mock.Anything, uint64(1), "alice").Return(domain.PermissionAdmin, nil)

	prompts := new(MockPromptProvider)
	prompts.On("FindByID", mock.Anything, uint64(1)).Return(&domain.Prompt{ID: 1, Title: "My Prompt", OwnerID: "alice"}, nil)

	service := NewService(repo, prompts, permissions, recorder)

	link, err := service.Issue(context.Background(), 1, "alice", "Alice", IssueInput{Permission: "write"})
	assert.NoError(t, err)

	_, err = service.Consume(context.Background(), link.Token, "carol")
	assert.NoError(t, err)

	recorder.AssertExpectations(t)
}

func TestListByCreator_MarksExpiredStatus(t *testing.T) {
	repo := newFakeRepository()
	service, _, _ := newTestService(repo, domain.PermissionAdmin)
	ctx := context.Background()

	fresh, err := service.Issue(ctx, 1, "alice", "Alice", IssueInput{Permission: "read"})
	assert.NoError(t, err)
	stale, err := service.Issue(ctx, 1, "alice", "Alice", IssueInput{Permission: "read"})
	assert.NoError(t, err)

	past := time.Now().UTC().Add(-time.Minute)
	repo.links[stale.Token].ExpiresAt = &past

	views, err := service.ListByCreator(ctx, "alice")
	assert.NoError(t, err)
	assert.Len(t, views, 2)

	statuses := map[string]domain.ShareStatus{}
	for _, v := range views {
		statuses[v.ShareToken] = v.Status
	}
	assert.Equal(t, domain.StatusActive, statuses[fresh.Token])
	assert.Equal(t, domain.StatusExpired, statuses[stale.Token])
}

func TestExpireStale_DeactivatesPastLinks(t *testing.T) {
	repo := newFakeRepository()
	service, _, _ := newTestService(repo, domain.PermissionAdmin)
	ctx := context.Background()

	link, err := service.Issue(ctx, 1, "alice", "Alice", IssueInput{Permission: "read"})
	assert.NoError(t, err)
	past := time.Now().UTC().Add(-time.Minute)
	repo.links[link.Token].ExpiresAt = &past

	n, err := service.ExpireStale(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, repo.links[link.Token].IsActive)
}
