package analyses

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/legal"
	"legal-backend/internal/shared/pagination"
	"legal-backend/internal/shared/server/middleware"
	"legal-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc  *Service
	poll *pollLimiter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, poll: newPollLimiter(pollLimitWindow, nil)}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/analyses/:id/report", h.getReport)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	c.Set("analysisId", analysisID)

	analysis, err := h.Svc.Get(c.Request.Context(), ownerID, analysisID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !analysis.Terminal() && !h.poll.Allow(ownerID, analysisID) {
		c.Header("Retry-After", strconv.Itoa(h.poll.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "poll_rate_limited", "polling too frequently", nil)
		return
	}
	respond.OK(c, analysis)
}

func (h *Handler) getReport(c *gin.Context) {
	analysis, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if analysis.Result == nil {
		respond.Error(c, http.StatusConflict, "result_not_ready", "analysis has no result", gin.H{"status": analysis.Status})
		return
	}
	result := *analysis.Result
	respond.Text(c, func(w io.Writer) error {
		return legal.RenderText(w, result)
	})
}

func (h *Handler) listAnalyses(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	limit, offset := pagination.FromQuery(c)

	items, err := h.Svc.List(c.Request.Context(), ownerID, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	// History listings omit full results.
	resp := make([]Analysis, 0, len(items))
	for _, a := range items {
		a.Result = nil
		resp = append(resp, a)
	}
	respond.OK(c, resp)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
	}
}
