package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlink/backend/internal/api/handler"
	"wanderlink/backend/internal/badge"
	"wanderlink/backend/internal/changebus"
	"wanderlink/backend/internal/chat"
	"wanderlink/backend/internal/contacts"
	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/expert"
	"wanderlink/backend/internal/notify"
	"wanderlink/backend/internal/sos"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := docstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	bus := changebus.New(store, time.Hour)
	t.Cleanup(bus.Close)

	n := notify.NewService(store, nil)
	catalog, err := expert.NewCatalog(nil)
	require.NoError(t, err)

	h := handler.NewHandler(
		"test-secret",
		bus,
		n,
		contacts.NewWorkflow(store, n, nil),
		sos.NewWorkflow(store, n, nil, nil),
		chat.NewService(store, n, nil),
		badge.NewAggregator(store),
		catalog,
	)
	r := gin.New()
	h.Register(r)
	return r
}

func issueToken(t *testing.T, r *gin.Engine, pseudo string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"pseudo":"`+pseudo+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestIssueTokenRequiresPseudo(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRejectMissingOrBadToken(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/badge", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/badge", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatedBadgeRoundTrip(t *testing.T) {
	r := newRouter(t)
	token := issueToken(t, r, "Alice")

	req := httptest.NewRequest(http.MethodGet, "/api/badge", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Priority string `json:"priority"`
		Color    string `json:"color"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "none", body.Priority)
	assert.Equal(t, "gray", body.Color)
}

func TestExpertsRouteServesStaticRoster(t *testing.T) {
	r := newRouter(t)
	token := issueToken(t, r, "Alice")

	req := httptest.NewRequest(http.MethodGet, "/api/experts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Experts []struct {
			Pseudo string `json:"pseudo"`
		} `json:"experts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Experts, 4)
}
