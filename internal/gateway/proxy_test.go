package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGatewayRouter(baseURL string) *gin.Engine {
	proxy := NewProxy(nil)
	r := gin.New()
	group := r.Group("/api/v1/items")
	group.Any("", proxy.Handler("items", baseURL))
	group.Any("/*path", proxy.Handler("items", baseURL))
	return r
}

func TestForwardRelaysResponse(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Downstream", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"hello":"world"}`))
	}))
	defer downstream.Close()

	r := newGatewayRouter(downstream.URL)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, `{"hello":"world"}`, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "yes", w.Header().Get("X-Downstream"))
}

func TestForwardPathAndQuery(t *testing.T) {
	var gotPath, gotQuery string
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer downstream.Close()

	r := newGatewayRouter(downstream.URL + "/api/v1/items")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/42/details?skip=5&limit=10", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1/items/42/details", gotPath)
	assert.Equal(t, "skip=5&limit=10", gotQuery)
}

func TestForwardRootRoute(t *testing.T) {
	var gotPath string
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer downstream.Close()

	r := newGatewayRouter(downstream.URL + "/api/v1/items")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1/items", gotPath)
}

func TestForwardBodyOnPost(t *testing.T) {
	var gotBody string
	var gotMethod string
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		gotBody = string(payload)
		gotMethod = r.Method
		w.WriteHeader(http.StatusCreated)
	}))
	defer downstream.Close()

	r := newGatewayRouter(downstream.URL)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, `{"title":"x"}`, gotBody)
}

func TestForwardCopiesHeaders(t *testing.T) {
	var gotAuth, gotHost string
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotHost = r.Host
		w.WriteHeader(http.StatusOK)
	}))
	defer downstream.Close()

	r := newGatewayRouter(downstream.URL)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Host = "gateway.example.com"
	req.Header.Set("Authorization", "Bearer token123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "Bearer token123", gotAuth)
	// The downstream must see its own host, not the gateway's.
	assert.NotEqual(t, "gateway.example.com", gotHost)
}

func TestForwardDownstreamUnreachable(t *testing.T) {
	// Grab a port nothing listens on.
	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := closed.URL
	closed.Close()

	r := newGatewayRouter(base)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Service unavailable. Please ensure the microservice is running.", body["detail"])
}

func TestForwardRelaysDownstreamErrors(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Item not found"}`))
	}))
	defer downstream.Close()

	r := newGatewayRouter(downstream.URL)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Item not found"}`, w.Body.String())
}
