// Package pagination holds the limit/offset rules shared by list endpoints
// and the repositories behind them.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit applies when a limit is missing, unparseable or not positive.
	DefaultLimit = 20
	// MaxPageLimit caps limits requested over HTTP.
	MaxPageLimit = 50
	// MaxRepoLimit caps limits at the storage layer.
	MaxRepoLimit = 100
)

// Clamp normalizes a page: a non-positive limit becomes DefaultLimit, limits
// above max are capped and a negative offset becomes zero.
func Clamp(limit, offset, max int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// FromQuery reads ?limit= and ?offset= and clamps them to MaxPageLimit.
func FromQuery(c *gin.Context) (limit, offset int) {
	return Clamp(queryInt(c, "limit"), queryInt(c, "offset"), MaxPageLimit)
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
