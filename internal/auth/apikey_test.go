package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/guarded", OperatorKeyMiddleware(map[string]string{"key-123": "ops"}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"operator": Operator(c)})
	})
	return r
}

func TestOperatorKeyMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		status int
		body   string
	}{
		{name: "valid key", key: "key-123", status: http.StatusOK, body: `{"operator":"ops"}`},
		{name: "padded key", key: "  key-123 ", status: http.StatusOK, body: `{"operator":"ops"}`},
		{name: "missing key", key: "", status: http.StatusUnauthorized, body: `{"success":false,"error":"unauthorized"}`},
		{name: "wrong key", key: "key-12", status: http.StatusUnauthorized, body: `{"success":false,"error":"unauthorized"}`},
	}

	r := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
