package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truthdare/truthdare-api/internal/apperror"
	"github.com/truthdare/truthdare-api/internal/auth"
	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/handler"
	"github.com/truthdare/truthdare-api/internal/model"
	"github.com/truthdare/truthdare-api/internal/service"
)

const (
	truthsDoc = `[
		{"id": 1, "content": "What is your biggest fear?", "category": "general"},
		{"id": 2, "content": "What is the funniest thing you have googled?", "category": "funny"}
	]`
	daresDoc = `[
		{"id": 7, "content": "Do 10 jumping jacks", "difficulty": "easy"}
	]`
)

type memSource struct {
	mu   sync.Mutex
	docs map[model.Kind]string
}

func (m *memSource) set(kind model.Kind, doc string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[kind] = doc
}

func (m *memSource) Records(_ context.Context, kind model.Kind) ([]content.RawRecord, error) {
	m.mu.Lock()
	doc := m.docs[kind]
	m.mu.Unlock()
	return content.DecodeRecords(strings.NewReader(doc))
}

// firstRand makes every selection deterministic: index 0, truths on a coin flip.
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

type fixture struct {
	src    *memSource
	cache  *content.Cache
	router chi.Router
}

func newFixture(t *testing.T, rnd content.Rand) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	src := &memSource{docs: map[model.Kind]string{model.KindTruth: truthsDoc, model.KindDare: daresDoc}}
	cache := content.NewCache(content.NewLoader(src, 0))
	require.NoError(t, cache.Initialize(context.Background()))

	game := service.NewGameService(cache, content.NewSelector(rnd), logger)
	contentH := handler.NewContentHandler(game, logger)
	infoH := handler.NewInfoHandler(game, "Truth and Dare API", "1.2.3", "/api/v1", logger)

	r := chi.NewRouter()
	r.Get("/", infoH.HandleRoot)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/truth", contentH.HandleRandomTruth)
		r.Get("/truth/categories/list", contentH.HandleTruthCategories)
		r.Get("/truth/{category}", contentH.HandleTruthByCategory)
		r.Get("/dare", contentH.HandleRandomDare)
		r.Get("/dare/difficulties/list", contentH.HandleDareDifficulties)
		r.Get("/dare/{difficulty}", contentH.HandleDareByDifficulty)
		r.Get("/game/random", contentH.HandleRandomGame)
		r.Get("/health", infoH.HandleHealth)
		r.Get("/stats", infoH.HandleStats)
	})

	return &fixture{src: src, cache: cache, router: r}
}

func (f *fixture) get(t *testing.T, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if strings.HasPrefix(strings.TrimSpace(rr.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	}
	return rr, body
}

func TestContentHandler_Items(t *testing.T) {
	f := newFixture(t, firstRand{})

	rr, body := f.get(t, "/api/v1/truth")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{
		"id": float64(1), "type": "truth", "content": "What is your biggest fear?", "category": "general",
	}, body)

	rr, body = f.get(t, "/api/v1/truth/FUNNY")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(2), body["id"])
	assert.Equal(t, "funny", body["category"])

	rr, body = f.get(t, "/api/v1/dare/easy")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{
		"id": float64(7), "type": "dare", "content": "Do 10 jumping jacks", "difficulty": "easy",
	}, body)
}

func TestContentHandler_TagLists(t *testing.T) {
	f := newFixture(t, nil)

	rr, _ := f.get(t, "/api/v1/truth/categories/list")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["funny","general"]`, rr.Body.String())

	rr, _ = f.get(t, "/api/v1/dare/difficulties/list")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["easy"]`, rr.Body.String())
}

func TestContentHandler_RandomGame(t *testing.T) {
	t.Run("truth carries null difficulty", func(t *testing.T) {
		rr, body := newFixture(t, firstRand{}).get(t, "/api/v1/game/random")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "truth", body["type"])
		assert.Equal(t, "general", body["category"])
		assert.Contains(t, body, "difficulty")
		assert.Nil(t, body["difficulty"])
	})

	t.Run("dare carries null category", func(t *testing.T) {
		rr, body := newFixture(t, lastRand{}).get(t, "/api/v1/game/random")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "dare", body["type"])
		assert.Equal(t, "easy", body["difficulty"])
		assert.Contains(t, body, "category")
		assert.Nil(t, body["category"])
	})
}

func TestContentHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantError  string
	}{
		{"unknown category", "/api/v1/truth/spicy", http.StatusNotFound, "not_found"},
		{"known but empty difficulty", "/api/v1/dare/hard", http.StatusNotFound, "not_found"},
		{"category with digits", "/api/v1/truth/abc123", http.StatusUnprocessableEntity, "validation_error"},
		{"category with space", "/api/v1/truth/fun%20ny", http.StatusUnprocessableEntity, "validation_error"},
	}

	f := newFixture(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := f.get(t, tt.path)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantError, body["error"])
			assert.Equal(t, float64(tt.wantStatus), body["status_code"])
			assert.NotEmpty(t, body["message"])
			assert.IsType(t, map[string]any{}, body["details"])
		})
	}
}

func TestContentHandler_UnknownTagDetails(t *testing.T) {
	_, body := newFixture(t, nil).get(t, "/api/v1/truth/spicy")

	details := body["details"].(map[string]any)
	assert.Equal(t, "spicy", details["requested"])
	assert.Equal(t, []any{"funny", "general"}, details["available"])
}

func TestContentHandler_EmptyCollection(t *testing.T) {
	f := newFixture(t, nil)
	f.src.set(model.KindDare, `[]`)
	_, err := f.cache.Reload(context.Background(), model.KindDare)
	require.NoError(t, err)

	rr, body := f.get(t, "/api/v1/dare")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "No data available for dares", body["message"])
}

func TestContentHandler_NotInitialized(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := content.NewCache(content.NewLoader(&memSource{docs: map[model.Kind]string{}}, 0))
	game := service.NewGameService(cache, nil, logger)
	h := handler.NewContentHandler(game, logger)

	rr := httptest.NewRecorder()
	h.HandleRandomTruth(rr, httptest.NewRequest(http.MethodGet, "/api/v1/truth", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"unavailable"`)
}

func TestInfoHandler(t *testing.T) {
	f := newFixture(t, nil)

	rr, body := f.get(t, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Welcome to Truth and Dare API", body["message"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "/api/v1/health", body["links"].(map[string]any)["health"])

	rr, body = f.get(t, "/api/v1/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(2), body["data"].(map[string]any)["total_truths"])

	rr, body = f.get(t, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(3), body["total_items"])
	assert.Equal(t, []any{"easy"}, body["dares"].(map[string]any)["available_difficulties"])
}

func TestInfoHandler_UnhealthyStillAnswers200(t *testing.T) {
	f := newFixture(t, nil)
	f.src.set(model.KindTruth, `[]`)
	f.src.set(model.KindDare, `[]`)
	_, err := f.cache.Reload(context.Background())
	require.NoError(t, err)

	rr, body := f.get(t, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "no content available", body["error"])
}

// =========================================================================
// ADMIN
// =========================================================================

type stubAuthenticator struct {
	password string
}

func (s stubAuthenticator) Login(password string) (service.LoginResult, error) {
	if password != s.password {
		return service.LoginResult{}, apperror.Unauthorized("invalid credentials")
	}
	return service.LoginResult{Token: "tok", TokenType: "Bearer"}, nil
}

type stubReloader struct {
	gotKinds []model.Kind
	report   service.ReloadReport
	err      error
}

func (s *stubReloader) Reload(_ context.Context, _ string, kinds ...model.Kind) (service.ReloadReport, error) {
	s.gotKinds = kinds
	return s.report, s.err
}

func TestAdminHandler_Login(t *testing.T) {
	h := handler.NewAdminHandler(stubAuthenticator{password: "secret"}, &stubReloader{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"correct password", `{"password":"secret"}`, http.StatusOK},
		{"wrong password", `{"password":"nope"}`, http.StatusUnauthorized},
		{"not json", `password=secret`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			h.HandleLogin(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"access_token":"tok","token_type":"Bearer","expires_at":"0001-01-01T00:00:00Z"}`, rr.Body.String())
			}
		})
	}
}

func TestAdminHandler_Reload(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	record := 3

	tests := []struct {
		name       string
		query      string
		reloader   *stubReloader
		wantStatus int
		wantKinds  []model.Kind
		wantBody   string
	}{
		{
			name:       "all kinds",
			reloader:   &stubReloader{report: service.ReloadReport{Kinds: []service.KindReport{{Kind: "truth", Status: "reloaded"}}}},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"reloaded"`,
		},
		{
			name:       "one kind",
			query:      "?kind=dares",
			reloader:   &stubReloader{},
			wantStatus: http.StatusOK,
			wantKinds:  []model.Kind{model.KindDare},
		},
		{
			name:       "bad kind",
			query:      "?kind=jokes",
			reloader:   &stubReloader{},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `"validation_error"`,
		},
		{
			name: "load failure",
			reloader: &stubReloader{
				report: service.ReloadReport{Kinds: []service.KindReport{{Kind: "dare", Status: "failed", Reason: "schema", Record: &record}}},
				err:    &content.LoadError{Kind: model.KindDare, Reason: content.ReasonSchema, Record: 3, Err: errors.New("/srv/secret/dares.json")},
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"reason":"schema","record":3`,
		},
		{
			name:       "cache not ready",
			reloader:   &stubReloader{err: apperror.Unavailable("content is not loaded yet")},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewAdminHandler(stubAuthenticator{}, tt.reloader, logger)
			rr := httptest.NewRecorder()

			h.HandleReload(rr, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantKinds, tt.reloader.gotKinds)
			if tt.wantBody != "" {
				assert.Contains(t, rr.Body.String(), tt.wantBody)
			}
			assert.NotContains(t, rr.Body.String(), "/srv/secret", fmt.Sprintf("body leaks source path: %s", rr.Body.String()))
		})
	}
}

func TestAdminHandler_ReloadBehindRequireAdmin(t *testing.T) {
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	token, err := tokens.Generate(auth.AdminSubject)
	require.NoError(t, err)

	reloader := &stubReloader{}
	h := handler.NewAdminHandler(stubAuthenticator{}, reloader, slog.New(slog.NewTextHandler(io.Discard, nil)))
	protected := auth.RequireAdmin(tokens, handler.WriteError)(http.HandlerFunc(h.HandleReload))

	visitor, err := tokens.Generate("visitor")
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantError  string
	}{
		{"no token", "", http.StatusUnauthorized, "unauthorized"},
		{"not admin", visitor, http.StatusForbidden, "forbidden"},
		{"admin", token, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantError == "" {
				return
			}
			var body handler.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			assert.NotNil(t, body.Details)
		})
	}
}

func TestRouteFallbacks(t *testing.T) {
	tests := []struct {
		name       string
		serve      http.HandlerFunc
		method     string
		wantStatus int
		wantError  string
	}{
		{"not found", handler.NotFound, http.MethodGet, http.StatusNotFound, "not_found"},
		{"method not allowed", handler.MethodNotAllowed, http.MethodDelete, http.StatusMethodNotAllowed, "method_not_allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.serve(rr, httptest.NewRequest(tt.method, "/api/v1/truth/deep/extra", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var body handler.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			assert.Contains(t, body.Message, "/api/v1/truth/deep/extra")
		})
	}
}
