package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/siddu-catalog/internal/catalog"
	"github.com/iliyamo/siddu-catalog/internal/config"
	"github.com/iliyamo/siddu-catalog/internal/events"
	"github.com/iliyamo/siddu-catalog/internal/middleware"
	"github.com/iliyamo/siddu-catalog/internal/model"
	"github.com/iliyamo/siddu-catalog/internal/repository"
	"github.com/iliyamo/siddu-catalog/internal/session"
	"github.com/iliyamo/siddu-catalog/internal/utils"
)

const testSecret = "test-secret"

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.CatalogEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type testEnv struct {
	e        *echo.Echo
	store    *repository.MemoryMovieStore
	sessions *session.MemoryStore
	pub      *recordingPublisher
	accounts *repository.MemoryAccounts
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		e:        echo.New(),
		store:    repository.NewMemoryMovieStore(repository.SeedMovies()...),
		sessions: session.NewMemoryStore(time.Hour, 10),
		pub:      &recordingPublisher{},
		accounts: repository.NewMemoryAccounts(),
	}
	h := NewCatalogHandler(env.store, env.sessions, env.pub, catalog.Options{MaxPageSize: 50, BatchConcurrency: 2})
	h.Now = func() time.Time { return time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC) }

	adminOnly := middleware.RequireRole(model.RoleAdmin)
	g := env.e.Group("/v1/admin", middleware.JWTAuth(testSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleEditor))
	g.GET("/movies", h.ListMovies)
	g.POST("/movies", h.CreateMovie)
	g.GET("/movies/:id", h.GetMovie)
	g.PUT("/movies/:id", h.ReplaceMovie)
	g.PATCH("/movies/:id", h.PatchMovie)
	g.DELETE("/movies/:id", h.DeleteMovie, adminOnly)
	g.PUT("/movies/:id/streaming-links", h.ReplaceStreamingLinks)
	g.PUT("/movies/:id/release-dates", h.ReplaceReleaseDates)
	g.PUT("/workspace/filters", h.SetFilters)
	g.POST("/workspace/sort", h.SetSort)
	g.PUT("/workspace/page", h.SetPage)
	g.POST("/workspace/selection", h.ToggleSelection)
	g.POST("/workspace/selection/page", h.SelectPage)
	g.DELETE("/workspace/selection", h.ClearSelection)
	g.POST("/batch", h.PrepareBatch)
	g.POST("/batch/confirm", h.ConfirmBatch)
	g.DELETE("/batch", h.CancelBatch)
	g.POST("/import/json", h.ImportJSON, adminOnly)
	g.POST("/import/api", h.ImportFromAPI, adminOnly)
	g.GET("/import/template", h.ImportTemplate)
	g.GET("/export", h.Export)

	p := NewPublicHandler(env.store, 50)
	env.e.GET("/v1/movies", p.ListMovies)
	env.e.GET("/v1/movies/:id", p.GetMovie)

	a := NewAuthHandler(config.Config{JWTSecret: testSecret, AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4},
		env.accounts, env.accounts)
	env.e.POST("/v1/auth/register", a.Register)
	env.e.POST("/v1/auth/login", a.Login)
	env.e.POST("/v1/auth/refresh", a.Refresh)
	env.e.POST("/v1/auth/logout", a.Logout)
	env.e.GET("/v1/me", a.Me, middleware.JWTAuth(testSecret))
	return env
}

func token(t *testing.T, userID uint64, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(testSecret, userID, role, 5)
	require.NoError(t, err)
	return at.Token
}

func (env *testEnv) call(method, path, tok, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func itemIDs(v catalog.PageView) []string {
	out := make([]string, len(v.Items))
	for i, m := range v.Items {
		out[i] = m.ID
	}
	return out
}

func TestAdminListMovies_QueryUpdatesWorkspace(t *testing.T) {
	env := newTestEnv(t)
	editor := token(t, 2, model.RoleEditor)

	rec := env.call(http.MethodGet, "/v1/admin/movies", editor, "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[catalog.PageView](t, rec)
	assert.Equal(t, []string{"2", "1", "3", "4"}, itemIDs(v))

	rec = env.call(http.MethodGet, "/v1/admin/movies?genre=action", editor, "")
	require.Equal(t, http.StatusOK, rec.Code)
	v = decode[catalog.PageView](t, rec)
	assert.Equal(t, []string{"1", "4"}, itemIDs(v))
	assert.Equal(t, "Action", v.Filter.Genre)

	// The filter sticks to the workspace.
	v = decode[catalog.PageView](t, env.call(http.MethodGet, "/v1/admin/movies?sort=title", editor, ""))
	assert.Equal(t, []string{"4", "1"}, itemIDs(v))
	assert.Equal(t, 2, v.TotalItems)

	// Another user has their own workspace.
	v = decode[catalog.PageView](t, env.call(http.MethodGet, "/v1/admin/movies", token(t, 9, model.RoleEditor), ""))
	assert.Equal(t, 4, v.TotalItems)
}

func TestAdminListMovies_Validation(t *testing.T) {
	env := newTestEnv(t)
	editor := token(t, 2, model.RoleEditor)

	for _, q := range []string{"?sort=budgetz", "?dir=sideways&sort=title", "?page=0", "?page_size=500", "?genre=polka", "?page=abc"} {
		rec := env.call(http.MethodGet, "/v1/admin/movies"+q, editor, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "validation", decode[map[string]any](t, rec)["error"], q)
	}
	assert.Equal(t, http.StatusUnauthorized, env.call(http.MethodGet, "/v1/admin/movies", "", "").Code)
}

func TestWorkspace_SortToggleAndPaging(t *testing.T) {
	env := newTestEnv(t)
	editor := token(t, 2, model.RoleEditor)

	v := decode[catalog.PageView](t, env.call(http.MethodPost, "/v1/admin/workspace/sort", editor, `{"field":"title"}`))
	assert.Equal(t, catalog.Asc, v.Sort.Direction)
	assert.Equal(t, []string{"4", "3", "1", "2"}, itemIDs(v))

	v = decode[catalog.PageView](t, env.call(http.MethodPost, "/v1/admin/workspace/sort", editor, `{"field":"title"}`))
	assert.Equal(t, catalog.Desc, v.Sort.Direction)

	v = decode[catalog.PageView](t, env.call(http.MethodPut, "/v1/admin/workspace/page", editor, `{"pageSize":3,"page":2}`))
	assert.Equal(t, 2, v.Page)
	assert.Equal(t, 2, v.TotalPages)
	assert.Len(t, v.Items, 1)

	v = decode[catalog.PageView](t, env.call(http.MethodPut, "/v1/admin/workspace/page", editor, `{"page":9}`))
	assert.Equal(t, 2, v.Page)

	rec := env.call(http.MethodPut, "/v1/admin/workspace/filters", editor, `{"status":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchPublish_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	editor := token(t, 2, model.RoleEditor)

	env.call(http.MethodPost, "/v1/admin/workspace/selection", editor, `{"id":"2","checked":true}`)
	rec := env.call(http.MethodPost, "/v1/admin/workspace/selection", editor, `{"id":"3","checked":true}`)
	v := decode[catalog.PageView](t, rec)
	assert.Equal(t, 2, v.SelectedCount)

	rec = env.call(http.MethodPost, "/v1/admin/batch", editor, `{"action":"publish"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[catalog.PendingBatch](t, rec)
	assert.Equal(t, "Publish Movies?", p.Prompt.Title)
	assert.Equal(t, []string{"2", "3"}, p.IDs)

	rec = env.call(http.MethodPost, "/v1/admin/batch", editor, `{"action":"archive"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.call(http.MethodPost, "/v1/admin/batch/confirm", editor, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[struct {
		Result catalog.BatchResult `json:"result"`
		View   catalog.PageView    `json:"view"`
	}](t, rec)
	assert.Equal(t, "2 Movie(s) Published", out.Result.Summary)
	assert.Empty(t, out.Result.Failed)
	assert.Equal(t, 0, out.View.SelectedCount)
	assert.Equal(t, catalog.PhaseIdle, out.View.Phase)

	for _, id := range []string{"2", "3"} {
		m, err := env.store.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, m.IsPublished(), id)
	}
	assert.Equal(t, []string{events.BatchApplied}, env.pub.types())

	assert.Equal(t, http.StatusConflict, env.call(http.MethodPost, "/v1/admin/batch/confirm", editor, "").Code)
}

func TestBatch_EmptySelectionAndCancel(t *testing.T) {
	env := newTestEnv(t)
	editor := token(t, 2, model.RoleEditor)

	rec := env.call(http.MethodPost, "/v1/admin/batch", editor, `{"action":"publish"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.call(http.MethodPost, "/v1/admin/batch", editor, `{"action":"explode"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.call(http.MethodPost, "/v1/admin/workspace/selection/page", editor, `{"checked":true}`)
	require.Equal(t, http.StatusOK, env.call(http.MethodPost, "/v1/admin/batch", editor, `{"action":"unpublish"}`).Code)
	v := decode[catalog.PageView](t, env.call(http.MethodDelete, "/v1/admin/batch", editor, ""))
	assert.Equal(t, catalog.PhaseIdle, v.Phase)
	assert.Equal(t, 4, v.SelectedCount)
	assert.Equal(t, http.StatusConflict, env.call(http.MethodDelete, "/v1/admin/batch", editor, "").Code)

	v = decode[catalog.PageView](t, env.call(http.MethodDelete, "/v1/admin/workspace/selection", editor, ""))
	assert.Equal(t, 0, v.SelectedCount)
}

func TestBatchDelete_NeedsAdmin(t *testing.T) {
	env := newTestEnv(t)
	editor := token(t, 2, model.RoleEditor)
	admin := token(t, 1, model.RoleAdmin)

	env.call(http.MethodPost, "/v1/admin/workspace/selection", editor, `{"id":"4","checked":true}`)
	assert.Equal(t, http.StatusForbidden, env.call(http.MethodPost, "/v1/admin/batch", editor, `{"action":"delete"}`).Code)

	env.call(http.MethodPost, "/v1/admin/workspace/selection", admin, `{"id":"4","checked":true}`)
	env.call(http.MethodPost, "/v1/admin/workspace/selection", admin, `{"id":"missing","checked":true}`)
	require.Equal(t, http.StatusOK, env.call(http.MethodPost, "/v1/admin/batch", admin, `{"action":"delete"}`).Code)
	rec := env.call(http.MethodPost, "/v1/admin/batch/confirm", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[struct {
		Result catalog.BatchResult `json:"result"`
	}](t, rec)
	assert.Equal(t, []string{"4", "missing"}, out.Result.Succeeded)
	assert.Empty(t, out.Result.Failed)
	assert.Equal(t, "2 Movie(s) Deleted", out.Result.Summary)

	_, err := env.store.GetByID(context.Background(), "4")
	assert.ErrorIs(t, err, repository.ErrMovieNotFound)
}

func TestWorkspace_BusyWhileLocked(t *testing.T) {
	env := newTestEnv(t)
	release, err := env.sessions.Acquire(context.Background(), "2")
	require.NoError(t, err)

	rec := env.call(http.MethodPost, "/v1/admin/batch/confirm", token(t, 2, model.RoleEditor), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "busy", decode[map[string]any](t, rec)["error"])

	release()
	assert.Equal(t, http.StatusOK, env.call(http.MethodGet, "/v1/admin/movies", token(t, 2, model.RoleEditor), "").Code)
}

func TestMovieCRUD(t *testing.T) {
	env := newTestEnv(t)
	editor := token(t, 2, model.RoleEditor)
	admin := token(t, 1, model.RoleAdmin)

	rec := env.call(http.MethodPost, "/v1/admin/movies", editor, `{"title":"  Night Tram ","genres":["drama"],"releaseDate":"2025-03-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Movie](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Night Tram", created.Title)
	assert.Equal(t, []model.Genre{"Drama"}, created.Genres)
	assert.Equal(t, model.StatusDraft, created.Status)
	assert.Equal(t, "Manual", created.ImportedFrom)
	assert.Equal(t, repository.PlaceholderPoster, created.Poster)

	rec = env.call(http.MethodPost, "/v1/admin/movies", editor, `{"title":"x","runtime":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "runtime", decode[map[string]any](t, rec)["field"])

	rec = env.call(http.MethodPatch, "/v1/admin/movies/"+created.ID, editor, `{"status":"released","runtime":101}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[model.Movie](t, rec)
	assert.Equal(t, model.StatusReleased, patched.Status)
	assert.Equal(t, 101, patched.Runtime)
	assert.Equal(t, "Night Tram", patched.Title)
	assert.True(t, patched.CreatedAt.Equal(created.CreatedAt))

	assert.Equal(t, http.StatusBadRequest,
		env.call(http.MethodPatch, "/v1/admin/movies/"+created.ID, editor, `{"status":"lost"}`).Code)
	assert.Equal(t, http.StatusNotFound,
		env.call(http.MethodPut, "/v1/admin/movies/nope", editor, `{"title":"x"}`).Code)

	rec = env.call(http.MethodPut, "/v1/admin/movies/"+created.ID, editor, `{"title":"Night Tram (Cut)","releaseDate":"2025-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	replaced := decode[model.Movie](t, rec)
	assert.Equal(t, model.StatusDraft, replaced.Status)
	assert.Equal(t, "Manual", replaced.ImportedFrom)

	assert.Equal(t, http.StatusForbidden, env.call(http.MethodDelete, "/v1/admin/movies/"+created.ID, editor, "").Code)
	rec = env.call(http.MethodDelete, "/v1/admin/movies/"+created.ID, admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"Night Tram (Cut)" Deleted`, decode[map[string]any](t, rec)["message"])
	assert.Equal(t, http.StatusNotFound, env.call(http.MethodGet, "/v1/admin/movies/"+created.ID, editor, "").Code)
	assert.Equal(t, http.StatusNotFound, env.call(http.MethodDelete, "/v1/admin/movies/"+created.ID, admin, "").Code)

	assert.Equal(t, []string{events.MovieCreated, events.MovieUpdated, events.MovieUpdated, events.MovieDeleted}, env.pub.types())
}

func TestDeleteMovie_ClampsPage(t *testing.T) {
	env := newTestEnv(t)
	admin := token(t, 1, model.RoleAdmin)

	v := decode[catalog.PageView](t, env.call(http.MethodPut, "/v1/admin/workspace/page", admin, `{"pageSize":2,"page":2}`))
	require.Equal(t, []string{"3", "4"}, itemIDs(v))
	env.call(http.MethodDelete, "/v1/admin/movies/3", admin, "")
	env.call(http.MethodDelete, "/v1/admin/movies/4", admin, "")

	v = decode[catalog.PageView](t, env.call(http.MethodGet, "/v1/admin/movies", admin, ""))
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, []string{"2", "1"}, itemIDs(v))
}

func TestReplaceRelations(t *testing.T) {
	env := newTestEnv(t)
	editor := token(t, 2, model.RoleEditor)

	rec := env.call(http.MethodPut, "/v1/admin/movies/2/streaming-links", editor,
		`{"links":[{"provider":"Prime","region":"IN","url":"https://example.com","type":"rent","quality":"4K"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Streaming Links Updated", body["title"])
	assert.Equal(t, `Links for "Placeholder Movie Beta" saved.`, body["message"])

	m, err := env.store.GetByID(context.Background(), "2")
	require.NoError(t, err)
	require.Len(t, m.StreamingLinks, 1)
	assert.Equal(t, "Prime", m.StreamingLinks[0].Provider)

	assert.Equal(t, http.StatusBadRequest, env.call(http.MethodPut, "/v1/admin/movies/2/streaming-links", editor,
		`{"links":[{"provider":""}]}`).Code)

	rec = env.call(http.MethodPut, "/v1/admin/movies/2/release-dates", editor,
		`{"releaseDates":[{"region":"US","date":"2024-02-01","type":"Theatrical"},{"region":"IN","date":"2024-03-01","type":"Digital"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	m, err = env.store.GetByID(context.Background(), "2")
	require.NoError(t, err)
	assert.Len(t, m.ReleaseDates, 2)

	assert.Equal(t, http.StatusBadRequest, env.call(http.MethodPut, "/v1/admin/movies/2/release-dates", editor,
		`{"releaseDates":[{"region":"US","date":"soon"}]}`).Code)
	assert.Equal(t, http.StatusNotFound, env.call(http.MethodPut, "/v1/admin/movies/zz/release-dates", editor,
		`{"releaseDates":[]}`).Code)
}

func TestImportJSON(t *testing.T) {
	env := newTestEnv(t)
	admin := token(t, 1, model.RoleAdmin)

	rec := env.call(http.MethodPost, "/v1/admin/import/json", admin,
		`{"movies":[{"title":"A","releaseDate":"2024-01-01"},{"title":"B"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Invalid JSON: Item at index 1 is missing 'releaseDate'.", body["message"])
	assert.EqualValues(t, 1, body["index"])
	all, err := env.store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 4)

	rec = env.call(http.MethodPost, "/v1/admin/import/json", admin,
		`{"movies":[{"title":"X","releaseDate":"soon","sidduScore":42}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body = decode[map[string]any](t, rec)
	assert.Equal(t, "releaseDate", body["field"])
	assert.EqualValues(t, 0, body["index"])

	rec = env.call(http.MethodPost, "/v1/admin/import/json", admin,
		`{"movies":[{"title":"X","releaseDate":"2024-01-01","sidduScore":42}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "sidduScore", decode[map[string]any](t, rec)["field"])

	rec = env.call(http.MethodPost, "/v1/admin/import/json", admin, `{"movies":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "movies", decode[map[string]any](t, rec)["field"])

	all, err = env.store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Empty(t, env.pub.types())

	rec = env.call(http.MethodPost, "/v1/admin/import/json", admin,
		`{"movies":[{"title":"A","releaseDate":"2024-01-01"},{"title":"B","releaseDate":"2024-06-01","status":"upcoming"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[importResp](t, rec)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Successfully imported 2 movies!", resp.Message)
	assert.Equal(t, "JSON", resp.Movies[0].ImportedFrom)
	assert.Equal(t, model.StatusUpcoming, resp.Movies[1].Status)
	assert.Equal(t, []string{events.ImportCompleted}, env.pub.types())

	assert.Equal(t, http.StatusForbidden, env.call(http.MethodPost, "/v1/admin/import/json",
		token(t, 2, model.RoleEditor), `{"movies":[]}`).Code)
}

func TestImportFromAPI(t *testing.T) {
	env := newTestEnv(t)
	admin := token(t, 1, model.RoleAdmin)

	rec := env.call(http.MethodPost, "/v1/admin/import/api", admin,
		`{"movies":[{"id":"tt1","title":"Dune","year":"2021","source":"tmdb"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[importResp](t, rec)
	require.Len(t, resp.Movies, 1)
	assert.Equal(t, "2021-01-01", resp.Movies[0].ReleaseDate)
	assert.Equal(t, "TMDB", resp.Movies[0].ImportedFrom)
	assert.Equal(t, "1 of 1 movies imported.", resp.Message)

	rec = env.call(http.MethodPost, "/v1/admin/import/api", admin,
		`{"movies":[{"id":"tt2","title":"Heat","year":"1995","source":"tmdb"},{"id":"tt3","title":"Alien","year":"1979","source":"omdb"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env.pub.mu.Lock()
	sources := []string{env.pub.events[0].Source, env.pub.events[1].Source}
	env.pub.mu.Unlock()
	assert.Equal(t, []string{"TMDB", "API"}, sources)

	assert.Equal(t, http.StatusBadRequest, env.call(http.MethodPost, "/v1/admin/import/api", admin, `{"movies":[]}`).Code)
}

func TestImportTemplateAndExport(t *testing.T) {
	env := newTestEnv(t)
	editor := token(t, 2, model.RoleEditor)

	rec := env.call(http.MethodGet, "/v1/admin/import/template", editor, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "sample-movies-template.json")

	rec = env.call(http.MethodGet, "/v1/admin/export?scope=selected", editor, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.call(http.MethodPost, "/v1/admin/workspace/selection", editor, `{"id":"1","checked":true}`)
	rec = env.call(http.MethodGet, "/v1/admin/export?scope=selected&relations=false&pretty=false", editor, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "movies-export-2025-05-04.json")
	doc := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, doc["count"])
	assert.Equal(t, "movies", doc["type"])
	item := doc["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "1", item["id"])
	assert.NotContains(t, item, "cast")
	assert.Contains(t, item, "createdAt")

	env.call(http.MethodPut, "/v1/admin/workspace/filters", editor, `{"genre":"Drama"}`)
	doc = decode[map[string]any](t, env.call(http.MethodGet, "/v1/admin/export?scope=filtered", editor, ""))
	assert.EqualValues(t, 2, doc["count"])

	doc = decode[map[string]any](t, env.call(http.MethodGet, "/v1/admin/export", editor, ""))
	assert.EqualValues(t, 4, doc["count"])

	assert.Equal(t, http.StatusBadRequest, env.call(http.MethodGet, "/v1/admin/export?scope=mine", editor, "").Code)
}

func TestPublicMovies_ReleasedOnly(t *testing.T) {
	env := newTestEnv(t)

	rec := env.call(http.MethodGet, "/v1/movies", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[publicPage](t, rec)
	assert.Equal(t, 1, page.TotalItems)
	assert.Equal(t, "1", page.Items[0].ID)

	assert.Equal(t, http.StatusOK, env.call(http.MethodGet, "/v1/movies/1", "", "").Code)
	assert.Equal(t, http.StatusNotFound, env.call(http.MethodGet, "/v1/movies/2", "", "").Code)
	assert.Equal(t, http.StatusNotFound, env.call(http.MethodGet, "/v1/movies/404", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.call(http.MethodGet, "/v1/movies?sort=nope", "", "").Code)

	page = decode[publicPage](t, env.call(http.MethodGet, "/v1/movies?page=7", "", ""))
	assert.Equal(t, 1, page.Page)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.call(http.MethodPost, "/v1/auth/register", "", `{"email":"Ed@Siddu.dev","password":"pw123456"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[authResp](t, rec)
	assert.Equal(t, model.RoleEditor, reg.User.Role)
	assert.Equal(t, "ed@siddu.dev", reg.User.Email)

	assert.Equal(t, http.StatusConflict,
		env.call(http.MethodPost, "/v1/auth/register", "", `{"email":"ed@siddu.dev","password":"another-pw"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		env.call(http.MethodPost, "/v1/auth/register", "", `{"email":"new@siddu.dev","password":"short"}`).Code)
	assert.Equal(t, http.StatusUnauthorized,
		env.call(http.MethodPost, "/v1/auth/login", "", `{"email":"ed@siddu.dev","password":"wrong"}`).Code)

	rec = env.call(http.MethodPost, "/v1/auth/login", "", `{"email":"ed@siddu.dev","password":"pw123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[authResp](t, rec)

	rec = env.call(http.MethodGet, "/v1/me", login.Access.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ed@siddu.dev", decode[userPart](t, rec).Email)

	refreshBody := `{"refresh_token":"` + login.Refresh.Token + `"}`
	require.Equal(t, http.StatusOK, env.call(http.MethodPost, "/v1/auth/refresh", "", refreshBody).Code)
	assert.Equal(t, http.StatusUnauthorized, env.call(http.MethodPost, "/v1/auth/refresh", "", refreshBody).Code)
	assert.Equal(t, http.StatusBadRequest, env.call(http.MethodPost, "/v1/auth/refresh", "", `{}`).Code)

	assert.Equal(t, http.StatusNoContent, env.call(http.MethodPost, "/v1/auth/logout", reg.Access.Token, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.call(http.MethodPost, "/v1/auth/logout", "", "").Code)
}

func TestEnsureAdmin(t *testing.T) {
	acc := repository.NewMemoryAccounts()
	ctx := context.Background()
	require.NoError(t, EnsureAdmin(ctx, acc, "root@siddu.dev", "pw", 4))
	require.NoError(t, EnsureAdmin(ctx, acc, "root@siddu.dev", "pw", 4))
	u, err := acc.GetByEmail(ctx, "root@siddu.dev")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	require.NoError(t, EnsureAdmin(ctx, acc, "", "", 4))
}
