package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-api/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeValidator struct {
	claims *auth.Claims
	err    error
	calls  int
}

func (f *fakeValidator) ValidateToken(token string) (*auth.Claims, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func newAuthRouter(v *fakeValidator) *gin.Engine {
	mw := NewAuthMiddleware(v)
	r := gin.New()
	r.GET("/protected", mw.Authenticate(), func(c *gin.Context) {
		requester, ok := RequesterFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":   requester.UserID.String(),
			"superuser": requester.Superuser,
		})
	})
	r.GET("/admin", mw.Authenticate(), mw.RequireSuperuser(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthenticateMissingHeader(t *testing.T) {
	r := newAuthRouter(&fakeValidator{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Not authenticated", body["detail"])
}

func TestAuthenticateBadScheme(t *testing.T) {
	r := newAuthRouter(&fakeValidator{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	r := newAuthRouter(&fakeValidator{err: fmt.Errorf("invalid token")})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Could not validate credentials", body["detail"])
}

func TestAuthenticateSetsRequester(t *testing.T) {
	userID := uuid.New()
	v := &fakeValidator{claims: &auth.Claims{UserID: userID, Email: "u@example.com", Superuser: true}}
	r := newAuthRouter(v)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, true, body["superuser"])
}

func TestAuthenticateCachesClaims(t *testing.T) {
	v := &fakeValidator{claims: &auth.Claims{UserID: uuid.New()}}
	r := newAuthRouter(v)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer same-token")
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 1, v.calls, "repeated tokens must hit the claims cache")
}

func TestRequireSuperuser(t *testing.T) {
	v := &fakeValidator{claims: &auth.Claims{UserID: uuid.New(), Superuser: false}}
	r := newAuthRouter(v)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer regular")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "The user doesn't have enough privileges", body["detail"])
}
