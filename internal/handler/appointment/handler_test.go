package appointment

import (
	"encoding/json"
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

// ValidateUser is a pure check, so the handler can run without a service.
func newValidateRouter() *gin.Engine {
	h := NewServiceHandler(nil, nil)
	r := gin.New()
	r.POST("/validate-user", h.ValidateUser)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestValidateUserEndpoint(t *testing.T) {
	r := newValidateRouter()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{
			name:       "valid",
			body:       `{"name":"John Smith","idNumber":"1234567890","phone":"5551234567"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "short name",
			body:       `{"name":"J","idNumber":"1234567890","phone":"5551234567"}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "Name must be at least 2 characters",
		},
		{
			name:       "short id number",
			body:       `{"name":"John","idNumber":"12345","phone":"5551234567"}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "ID number must be at least 10 characters",
		},
		{
			name:       "short phone",
			body:       `{"name":"John","idNumber":"1234567890","phone":"555"}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "Phone number must be at least 10 characters",
		},
		{
			name:       "missing fields",
			body:       `{"name":"John"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/validate-user", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "User validation successful", body["message"])
				return
			}
			if tt.wantDetail != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantDetail, body["detail"])
			}
		})
	}
}
