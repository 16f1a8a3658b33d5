package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDKeepsValidHeaderAndReplacesInvalid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	cases := map[string]bool{
		"req-123":                true,
		"":                       false,
		"has space":              false,
		strings.Repeat("x", 200): false,
	}
	for header, keep := range cases {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		if header != "" {
			req.Header.Set("X-Request-Id", header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		got := resp.Body.String()
		if resp.Header().Get("X-Request-Id") != got {
			t.Fatalf("header and context disagree: %q vs %q", resp.Header().Get("X-Request-Id"), got)
		}
		if keep && got != header {
			t.Fatalf("expected %q to be kept, got %q", header, got)
		}
		if !keep && (got == header || len(got) != 36) {
			t.Fatalf("expected a generated id for %q, got %q", header, got)
		}
	}
}
