package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"verseflow/internal/models"
	"verseflow/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListOrdered(ctx context.Context, orderExpr string, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, orderExpr, limit, offset)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListSavedByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	args := m.Called(ctx, userID, postIDs)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockPostRepository) GetSavedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	args := m.Called(ctx, userID, postIDs)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockPostRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// newTestApp registers the handler behind a fake auth middleware that injects
// the given user into locals.
func newTestApp(userID uint, isAdmin bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("userID", userID)
			c.Locals("isAdmin", isAdmin)
		}
		return c.Next()
	})
	return app
}

func TestPublishPost(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(*MockPostRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"content": "frost on the gate",
				"kind":    "poetry",
			},
			mockSetup: func(repo *MockPostRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing Content",
			body: map[string]string{
				"kind": "poetry",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid Kind",
			body: map[string]string{
				"content": "a novel in parts",
				"kind":    "novel",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Quote Without Attribution",
			body: map[string]string{
				"content": "borrowed words",
				"kind":    "quote",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockPostRepository)
			if tt.mockSetup != nil {
				tt.mockSetup(mockRepo)
			}
			s := &Server{
				validate:    validator.New(),
				postService: service.NewPostService(mockRepo),
			}
			app := newTestApp(1, false)
			app.Post("/posts", s.PublishPost)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetPost(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(9)).Return(&models.Post{ID: 9, Content: "the orchard"}, nil)
		s := &Server{postService: service.NewPostService(mockRepo)}
		app := newTestApp(0, false)
		app.Get("/posts/:id", s.GetPost)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/9", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var post models.Post
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
		assert.Equal(t, "the orchard", post.Content)
		assert.False(t, post.Liked)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(404)).Return(nil, models.NewNotFoundError("Post", 404))
		s := &Server{postService: service.NewPostService(mockRepo)}
		app := newTestApp(0, false)
		app.Get("/posts/:id", s.GetPost)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/404", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		s := &Server{postService: service.NewPostService(new(MockPostRepository))}
		app := newTestApp(0, false)
		app.Get("/posts/:id", s.GetPost)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/abc", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeletePost(t *testing.T) {
	authorID := uint(1)

	t.Run("Author Deletes", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(9)).Return(&models.Post{ID: 9, UserID: &authorID}, nil)
		mockRepo.On("Delete", mock.Anything, uint(9)).Return(nil)
		s := &Server{postService: service.NewPostService(mockRepo)}
		app := newTestApp(1, false)
		app.Delete("/posts/:id", s.DeletePost)

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/posts/9", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("Stranger Rejected", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(9)).Return(&models.Post{ID: 9, UserID: &authorID}, nil)
		s := &Server{postService: service.NewPostService(mockRepo)}
		app := newTestApp(2, false)
		app.Delete("/posts/:id", s.DeletePost)

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/posts/9", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Admin Deletes", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(9)).Return(&models.Post{ID: 9, UserID: &authorID}, nil)
		mockRepo.On("Delete", mock.Anything, uint(9)).Return(nil)
		s := &Server{postService: service.NewPostService(mockRepo)}
		app := newTestApp(2, true)
		app.Delete("/posts/:id", s.DeletePost)

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/posts/9", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}
