package activity

import (
	"context"
	"testing"

	"prompt-sharing-service/internal/domain"
	"prompt-sharing-service/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, entry *domain.ShareActivity) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRepository) Tail(ctx context.Context, promptID uint64, limit int) ([]domain.ShareActivity, error) {
	args := m.Called(ctx, promptID, limit)
	if args.Get(0) == nil {
		return []domain.ShareActivity{}, args.Error(1)
	}
	return args.Get(0).([]domain.ShareActivity), args.Error(1)
}

// capturePool collects submitted tasks so tests can run them synchronously.
type capturePool struct {
	tasks []worker.Task
}

func (p *capturePool) Submit(t worker.Task) {
	p.tasks = append(p.tasks, t)
}

func TestRecord_QueuesAppend(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.ShareActivity) bool {
		return e.PromptID == 1 && e.Action == "share_link_created" && !e.Timestamp.IsZero()
	})).Return(nil)

	pool := &capturePool{}
	service := NewService(repo, pool)

	service.Record(context.Background(), 1, "alice", "Alice", "share_link_created", "Created share link", nil)

	// the insert happens on the pool, not inline
	repo.AssertNotCalled(t, "Create")
	assert.Len(t, pool.tasks, 1)

	err := pool.tasks[0](context.Background())
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRecord_InlineWithoutPool(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := NewService(repo, nil)

	service.Record(context.Background(), 1, "alice", "Alice", "prompt_accessed", "", nil)
	repo.AssertExpectations(t)
}

// Record never surfaces storage failures to the caller.
func TestRecord_SwallowsStorageError(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	service := NewService(repo, nil)
	service.Record(context.Background(), 1, "alice", "Alice", "prompt_accessed", "", nil)
	repo.AssertExpectations(t)
}

func TestTail_ClampsLimit(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Tail", mock.Anything, uint64(1), defaultTailLimit).Return([]domain.ShareActivity{}, nil).Once()
	repo.On("Tail", mock.Anything, uint64(1), maxTailLimit).Return([]domain.ShareActivity{}, nil).Once()
	repo.On("Tail", mock.Anything, uint64(1), 20).Return([]domain.ShareActivity{}, nil).Once()

	service := NewService(repo, nil)

	_, err := service.Tail(context.Background(), 1, 0)
	assert.NoError(t, err)
	_, err = service.Tail(context.Background(), 1, 5000)
	assert.NoError(t, err)
	_, err = service.Tail(context.Background(), 1, 20)
	assert.NoError(t, err)

	repo.AssertExpectations(t)
}
