package share

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"prompt-sharing-service/internal/domain"
	apiError "prompt-sharing-service/internal/errors"
	"prompt-sharing-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Issue(ctx context.Context, promptID uint64, issuerID, issuerName string, input IssueInput) (*domain.ShareLink, error) {
	args := m.Called(ctx, promptID, issuerID, issuerName, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShareLink), args.Error(1)
}

func (m *MockService) Resolve(ctx context.Context, token string) (*domain.ShareLink, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShareLink), args.Error(1)
}

func (m *MockService) Consume(ctx context.Context, token, consumerID string) (*ConsumeResponse, error) {
	args := m.Called(ctx, token, consumerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ConsumeResponse), args.Error(1)
}

func (m *MockService) Revoke(ctx context.Context, token, requesterID, requesterName string) (bool, error) {
	args := m.Called(ctx, token, requesterID, requesterName)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) ListByCreator(ctx context.Context, userID string) ([]SharedPromptView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return []SharedPromptView{}, args.Error(1)
	}
	return args.Get(0).([]SharedPromptView), args.Error(1)
}

func (m *MockService) ExpireStale(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	return router
}

func asUser(userID, userName string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_name", userName)
		next(c)
	}
}

// TestIssueHandler_Success tests successful link issuance
func TestIssueHandler_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("Issue", mock.Anything, uint64(1), "alice", "Alice", mock.MatchedBy(func(input IssueInput) bool {
		return input.Permission == "read" && input.MaxUses != nil && *input.MaxUses == 5
	})).Return(&domain.ShareLink{ID: 1, PromptID: 1, Token: "tok-1", Permission: domain.PermissionRead, IsActive: true}, nil)

	router.POST("/prompts/:id/share-links", asUser("alice", "Alice", handler.Issue))

	maxUses := 5
	body, _ := json.Marshal(IssueRequest{Permission: "read", MaxUses: &maxUses})
	req := httptest.NewRequest("POST", "/prompts/1/share-links", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response domain.ShareLink
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "tok-1", response.Token)
	mockService.AssertExpectations(t)
}

// TestIssueHandler_InvalidPermission tests rejection of an out-of-set permission
func TestIssueHandler_InvalidPermission(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	router.POST("/prompts/:id/share-links", asUser("alice", "Alice", handler.Issue))

	body := []byte(`{"permission": "root"}`)
	req := httptest.NewRequest("POST", "/prompts/1/share-links", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// 422 for validation errors (oneof)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockService.AssertNotCalled(t, "Issue")
}

// TestResolveHandler_NotFound tests that a dead token reads as 404
func TestResolveHandler_NotFound(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("Resolve", mock.Anything, "gone").
		Return(nil, apiError.NotFound("Share link not found", nil))

	router.GET("/share-links/:token", handler.Resolve)

	req := httptest.NewRequest("GET", "/share-links/gone", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

// TestConsumeHandler_Success tests consuming a link
func TestConsumeHandler_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	result := &ConsumeResponse{
		Prompt:     PromptSnapshot{ID: 7, Title: "Shared Prompt"},
		Permission: domain.PermissionWrite,
		ShareInfo:  ShareInfo{CreatedBy: "alice"},
	}
	mockService.On("Consume", mock.Anything, "tok-7", "bob").Return(result, nil)

	router.POST("/share-links/:token/consume", asUser("bob", "Bob", handler.Consume))

	req := httptest.NewRequest("POST", "/share-links/tok-7/consume", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response ConsumeResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, uint64(7), response.Prompt.ID)
	assert.Equal(t, domain.PermissionWrite, response.Permission)
	mockService.AssertExpectations(t)
}

// TestRevokeHandler_NotOwned tests that revoking someone else's link is a 404
func TestRevokeHandler_NotOwned(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("Revoke", mock.Anything, "tok-9", "mallory", "Mallory").Return(false, nil)

	router.DELETE("/share-links/:token", asUser("mallory", "Mallory", handler.Revoke))

	req := httptest.NewRequest("DELETE", "/share-links/tok-9", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

// TestListMineHandler_Success tests the shared prompts listing
func TestListMineHandler_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	views := []SharedPromptView{
		{ID: 1, PromptID: 3, ShareToken: "tok-a", PromptTitle: "Prompt A", Status: domain.StatusActive},
		{ID: 2, PromptID: 4, ShareToken: "tok-b", PromptTitle: "Prompt B", Status: domain.StatusExpired},
	}
	mockService.On("ListByCreator", mock.Anything, "alice").Return(views, nil)

	router.GET("/shared-prompts", asUser("alice", "Alice", handler.ListMine))

	req := httptest.NewRequest("GET", "/shared-prompts", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string][]SharedPromptView
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response["data"], 2)
	assert.Equal(t, "Prompt A", response["data"][0].PromptTitle)
	mockService.AssertExpectations(t)
}
