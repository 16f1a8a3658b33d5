package documents

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/shared/pagination"
	"legal-backend/internal/shared/server/middleware"
	"legal-backend/internal/shared/server/respond"
	"legal-backend/internal/shared/storage/object"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.GET("/documents/:id/content", h.content)
	rg.DELETE("/documents/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	limit, offset := pagination.FromQuery(c)

	docs, err := h.Svc.List(c.Request.Context(), ownerID, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, toResponse(doc))
}

func (h *Handler) content(c *gin.Context) {
	doc, rc, err := h.Svc.Open(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", doc.MimeType)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	if doc.Checksum != "" {
		c.Header("ETag", `"`+doc.Checksum+`"`)
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		h.fail(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, object.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
	}
}
