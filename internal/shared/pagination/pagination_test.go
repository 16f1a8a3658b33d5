package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query         string
		limit, offset int
	}{
		{"", 20, 0},
		{"limit=5&offset=10", 5, 10},
		{"limit=500", 50, 0},
		{"limit=0", 20, 0},
		{"limit=-1&offset=-1", 20, 0},
		{"limit=abc&offset=x", 20, 0},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/list?"+tc.query, nil)
		limit, offset := FromQuery(c)
		assert.Equal(t, tc.limit, limit, tc.query)
		assert.Equal(t, tc.offset, offset, tc.query)
	}
}

func TestClampUsesCallerMax(t *testing.T) {
	limit, offset := Clamp(500, 3, MaxRepoLimit)
	assert.Equal(t, MaxRepoLimit, limit)
	assert.Equal(t, 3, offset)
}
