package respond

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Text streams a 200 text/plain body produced by render. Render errors after
// the header is sent are attached to the context for the access log.
func Text(c *gin.Context, render func(w io.Writer) error) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if err := render(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
