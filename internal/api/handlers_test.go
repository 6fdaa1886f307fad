package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cafecanastra/conteudo/internal/config"
	"github.com/cafecanastra/conteudo/internal/ingest"
	"github.com/cafecanastra/conteudo/internal/models"
	"github.com/cafecanastra/conteudo/internal/normalizer"
	"github.com/cafecanastra/conteudo/internal/schedule"
	"github.com/cafecanastra/conteudo/internal/storage"
)

const testAdminKey = "chave-de-teste"

type MockPostStore struct {
	mock.Mock
}

func (m *MockPostStore) Insert(ctx context.Context, post *models.Post) (*models.Post, error) {
	args := m.Called(ctx, post)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	saved := *post
	saved.ID = uuid.New()
	return &saved, nil
}

func (m *MockPostStore) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Post, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostStore) FindBySlug(ctx context.Context, slug string, requirePublished bool) (*models.Post, error) {
	args := m.Called(ctx, slug, requirePublished)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostStore) ListPublished(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostStore) ListRecent(ctx context.Context, limit int) ([]models.PostSummary, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.PostSummary), args.Error(1)
}

func (m *MockPostStore) ListAll(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Post), args.Error(1)
}

// stubScheduleStore behaves like an empty but healthy config table.
type stubScheduleStore struct {
	saved *models.ScheduleConfig
}

func (s *stubScheduleStore) SaveConfig(ctx context.Context, cfg models.ScheduleConfig) error {
	s.saved = &cfg
	return nil
}

func (s *stubScheduleStore) LatestConfig(ctx context.Context) (*models.ScheduleConfig, error) {
	if s.saved == nil {
		return nil, storage.ErrNotFound
	}
	return s.saved, nil
}

func newTestApp(t *testing.T, store *MockPostStore) (*fiber.App, *schedule.Manager) {
	t.Helper()

	sched := schedule.NewManager(&stubScheduleStore{})
	orch := ingest.NewOrchestrator(store, normalizer.New("https://www.cafecanastra.com"), nil, sched, time.Millisecond)
	h := NewHandlers(&config.Config{}, store, sched, orch, nil)

	app := fiber.New()
	SetupRoutes(app, h, testAdminKey)
	return app, sched
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, apiKey string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestGetPostBySlug(t *testing.T) {
	store := new(MockPostStore)
	store.On("FindBySlug", mock.Anything, "bolo-de-fuba", true).
		Return(&models.Post{ID: uuid.New(), Slug: "bolo-de-fuba", Status: models.StatusPublished}, nil)

	app, _ := newTestApp(t, store)
	resp := doJSON(t, app, http.MethodGet, "/api/v1/posts/bolo-de-fuba", nil, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)
	assert.Equal(t, "bolo-de-fuba", post.Slug)

	// FindBySlug must be asked for published posts only on the public route.
	store.AssertCalled(t, "FindBySlug", mock.Anything, "bolo-de-fuba", true)
}

func TestGetPostBySlugDraftIsInvisible(t *testing.T) {
	store := new(MockPostStore)
	store.On("FindBySlug", mock.Anything, "rascunho", true).
		Return(nil, storage.ErrNotFound)

	app, _ := newTestApp(t, store)
	resp := doJSON(t, app, http.MethodGet, "/api/v1/posts/rascunho", nil, "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListRecentPosts(t *testing.T) {
	store := new(MockPostStore)
	store.On("ListRecent", mock.Anything, 5).
		Return([]models.PostSummary{{Slug: "a"}, {Slug: "b"}}, nil)

	app, _ := newTestApp(t, store)
	resp := doJSON(t, app, http.MethodGet, "/api/v1/posts/recent", nil, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Total int                  `json:"total"`
		Items []models.PostSummary `json:"items"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, 2, body.Total)
}

func TestListRecentPostsCustomLimit(t *testing.T) {
	store := new(MockPostStore)
	store.On("ListRecent", mock.Anything, 3).
		Return([]models.PostSummary{}, nil)

	app, _ := newTestApp(t, store)
	resp := doJSON(t, app, http.MethodGet, "/api/v1/posts/recent?limit=3", nil, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	store.AssertCalled(t, "ListRecent", mock.Anything, 3)
}

func TestIngestWebhookSingleObject(t *testing.T) {
	store := new(MockPostStore)
	store.On("Insert", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.Slug == "novo-post" && p.Modo == models.ModoPersonalizado
	})).Return(nil, nil).Once()

	app, _ := newTestApp(t, store)
	resp := doJSON(t, app, http.MethodPost, "/api/v1/webhook/posts?modo=personalizado",
		map[string]any{"titulo": "Novo Post"}, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result models.IngestResult
	decodeBody(t, resp, &result)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.CreatedPosts)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "novo-post", result.Results[0].Slug)
	store.AssertExpectations(t)
}

func TestIngestWebhookArray(t *testing.T) {
	store := new(MockPostStore)
	store.On("Insert", mock.Anything, mock.AnythingOfType("*models.Post")).
		Return(nil, nil)

	app, _ := newTestApp(t, store)
	resp := doJSON(t, app, http.MethodPost, "/api/v1/webhook/posts",
		[]map[string]any{{"titulo": "Um"}, {"titulo": "Dois"}}, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result models.IngestResult
	decodeBody(t, resp, &result)
	assert.Equal(t, 2, result.CreatedPosts)
}

func TestIngestWebhookRejectsNonObjectBody(t *testing.T) {
	store := new(MockPostStore)
	app, _ := newTestApp(t, store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/posts",
		bytes.NewReader([]byte(`"apenas uma string"`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	store.AssertNotCalled(t, "Insert")
}

func TestIngestScheduledDisabledIsSoftRejection(t *testing.T) {
	store := new(MockPostStore)
	app, _ := newTestApp(t, store)

	// Default config is disabled, so the gate rejects without touching the
	// generators or the store, and the HTTP status stays 200.
	resp := doJSON(t, app, http.MethodPost, "/api/v1/webhook/scheduled",
		models.ScheduledTrigger{Quantidade: 2}, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result models.IngestResult
	decodeBody(t, resp, &result)
	assert.False(t, result.Success)
	assert.Equal(t, models.RejectDisabled, result.Reason)
	store.AssertNotCalled(t, "Insert")
}

func TestAdminRequiresAPIKey(t *testing.T) {
	store := new(MockPostStore)
	app, _ := newTestApp(t, store)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/admin/posts", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/admin/posts", nil, "chave-errada")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	store.AssertNotCalled(t, "ListAll")
}

func TestListAllPostsIncludesDrafts(t *testing.T) {
	store := new(MockPostStore)
	store.On("ListAll", mock.Anything).Return([]models.Post{
		{Slug: "publicado", Status: models.StatusPublished},
		{Slug: "rascunho", Status: models.StatusDraft},
	}, nil)

	app, _ := newTestApp(t, store)
	resp := doJSON(t, app, http.MethodGet, "/api/v1/admin/posts", nil, testAdminKey)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Total int           `json:"total"`
		Items []models.Post `json:"items"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, 2, body.Total)
}

func TestUpdatePost(t *testing.T) {
	id := uuid.New()
	store := new(MockPostStore)
	store.On("Update", mock.Anything, id, map[string]interface{}{"titulo": "Novo título"}).
		Return(&models.Post{ID: id, Titulo: "Novo título"}, nil)

	app, _ := newTestApp(t, store)
	resp := doJSON(t, app, http.MethodPatch, "/api/v1/admin/posts/"+id.String(),
		map[string]any{"titulo": "Novo título"}, testAdminKey)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)
	assert.Equal(t, "Novo título", post.Titulo)
}

func TestUpdatePostInvalidID(t *testing.T) {
	store := new(MockPostStore)
	app, _ := newTestApp(t, store)

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/admin/posts/nao-e-uuid",
		map[string]any{"titulo": "x"}, testAdminKey)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	store.AssertNotCalled(t, "Update")
}

func TestUpdatePostEmptyBody(t *testing.T) {
	store := new(MockPostStore)
	app, _ := newTestApp(t, store)

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/admin/posts/"+uuid.NewString(),
		map[string]any{}, testAdminKey)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	store.AssertNotCalled(t, "Update")
}

func TestDeletePost(t *testing.T) {
	id := uuid.New()
	store := new(MockPostStore)
	store.On("Delete", mock.Anything, id).Return(nil)

	app, _ := newTestApp(t, store)
	resp := doJSON(t, app, http.MethodDelete, "/api/v1/admin/posts/"+id.String(), nil, testAdminKey)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestDeletePostNotFound(t *testing.T) {
	id := uuid.New()
	store := new(MockPostStore)
	store.On("Delete", mock.Anything, id).Return(storage.ErrNotFound)

	app, _ := newTestApp(t, store)
	resp := doJSON(t, app, http.MethodDelete, "/api/v1/admin/posts/"+id.String(), nil, testAdminKey)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPutScheduleConfig(t *testing.T) {
	store := new(MockPostStore)
	app, sched := newTestApp(t, store)

	resp := doJSON(t, app, http.MethodPut, "/api/v1/admin/schedule", models.ScheduleConfig{
		IsEnabled: true,
		StartHour: 8,
		EndHour:   11,
		Modo:      models.ModoAutomatico,
	}, testAdminKey)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cfg models.ScheduleConfig
	decodeBody(t, resp, &cfg)
	assert.True(t, cfg.IsEnabled)
	assert.Equal(t, 8, cfg.StartHour)
	assert.False(t, cfg.UpdatedAt.IsZero())

	got := sched.GetConfig(context.Background())
	assert.Equal(t, 11, got.EndHour)
}

func TestPutScheduleConfigValidation(t *testing.T) {
	store := new(MockPostStore)
	app, _ := newTestApp(t, store)

	resp := doJSON(t, app, http.MethodPut, "/api/v1/admin/schedule", models.ScheduleConfig{
		IsEnabled: true,
		StartHour: 8,
		EndHour:   25,
		Modo:      models.ModoAutomatico,
	}, testAdminKey)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Fields, "EndHour")
}

func TestPatchScheduleConfig(t *testing.T) {
	store := new(MockPostStore)
	app, sched := newTestApp(t, store)

	enabled := true
	resp := doJSON(t, app, http.MethodPatch, "/api/v1/admin/schedule",
		models.ScheduleConfigPatch{IsEnabled: &enabled}, testAdminKey)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cfg models.ScheduleConfig
	decodeBody(t, resp, &cfg)
	assert.True(t, cfg.IsEnabled)
	// Untouched fields keep their defaults.
	assert.Equal(t, 7, cfg.StartHour)
	assert.Equal(t, 10, cfg.EndHour)

	got := sched.GetConfig(context.Background())
	assert.True(t, got.IsEnabled)
}

func TestPatchScheduleConfigValidation(t *testing.T) {
	store := new(MockPostStore)
	app, _ := newTestApp(t, store)

	modo := "manual"
	resp := doJSON(t, app, http.MethodPatch, "/api/v1/admin/schedule",
		models.ScheduleConfigPatch{Modo: &modo}, testAdminKey)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUploadImageWithoutUploader(t *testing.T) {
	store := new(MockPostStore)
	app, _ := newTestApp(t, store)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/admin/posts/"+uuid.NewString()+"/image",
		nil, testAdminKey)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnknownRouteReturns404(t *testing.T) {
	store := new(MockPostStore)
	app, _ := newTestApp(t, store)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/nada", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
