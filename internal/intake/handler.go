package intake

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/legal"
	"legal-backend/internal/provider"
	"legal-backend/internal/shared/server/middleware"
	"legal-backend/internal/shared/server/respond"
)

// multipart framing allowance on top of the file limit
const formOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches session and analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.create)
	rg.GET("/sessions/:id", h.get)
	rg.DELETE("/sessions/:id", h.delete)
	rg.POST("/sessions/:id/file", h.submit)
	rg.POST("/sessions/:id/analyze", h.analyze)
	rg.GET("/sessions/:id/report", h.report)
	rg.POST("/analyze", h.analyzeOnce)
	rg.GET("/mode", h.mode)
}

func (h *Handler) create(c *gin.Context) {
	ctx := requestContext(c)
	snap, err := h.Svc.CreateSession(ctx, middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set("sessionId", snap.ID)
	respond.JSON(c, http.StatusCreated, toResponse(snap, h.Svc.Mode()))
}

func (h *Handler) get(c *gin.Context) {
	snap, err := h.Svc.Get(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, toResponse(snap, h.Svc.Mode()))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(requestContext(c), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) submit(c *gin.Context) {
	c.Set("sessionId", c.Param("id"))
	f, ok := h.readFile(c)
	if !ok {
		return
	}

	snap, err := h.Svc.Submit(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	if snap.File != nil {
		c.Set("documentId", snap.File.DocumentID)
	}
	c.Set("statusTransition", "->"+string(StateFileSelected))
	respond.OK(c, toResponse(snap, h.Svc.Mode()))
}

func (h *Handler) analyze(c *gin.Context) {
	c.Set("sessionId", c.Param("id"))
	ctx := requestContext(c)
	ownerID := middleware.UserIDFromContext(c)

	wait, _ := strconv.ParseBool(c.Query("wait"))
	if wait {
		snap, err := h.Svc.RunAnalysis(ctx, ownerID, c.Param("id"))
		c.Set("analysisId", snap.AnalysisID)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Set("statusTransition", "analyzing->"+string(snap.State))
		respond.OK(c, toResponse(snap, h.Svc.Mode()))
		return
	}

	snap, err := h.Svc.StartAnalysis(ctx, ownerID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set("analysisId", snap.AnalysisID)
	c.Set("statusTransition", "file_selected->analyzing")
	respond.JSON(c, http.StatusAccepted, toResponse(snap, h.Svc.Mode()))
}

func (h *Handler) report(c *gin.Context) {
	snap, err := h.Svc.Get(requestContext(c), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if snap.Result == nil {
		respond.Error(c, http.StatusConflict, ErrorCodeResultNotReady, "no analysis result for this session yet", gin.H{"state": snap.State})
		return
	}

	result := *snap.Result
	respond.Text(c, func(w io.Writer) error {
		return legal.RenderText(w, result)
	})
}

func (h *Handler) analyzeOnce(c *gin.Context) {
	f, ok := h.readFile(c)
	if !ok {
		return
	}
	res, err := h.Svc.AnalyzeDocument(requestContext(c), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) mode(c *gin.Context) {
	mode := h.Svc.Mode()
	respond.OK(c, modeResponse{Mode: mode, Demo: mode == provider.ModeDemo})
}

func (h *Handler) readFile(c *gin.Context) (File, bool) {
	limit := h.Svc.maxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeFileTooLarge, "file exceeds upload limit", gin.H{"maxBytes": limit})
			return File{}, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return File{}, false
	}
	if fileHeader.Size > limit {
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeFileTooLarge, "file exceeds upload limit", gin.H{"maxBytes": limit})
		return File{}, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return File{}, false
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return File{}, false
	}

	return File{
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	}, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
	case errors.Is(err, ErrInvalidFileType):
		respond.Error(c, http.StatusUnsupportedMediaType, ErrorCodeInvalidFileType, "Only plain-text (.txt) documents can be analyzed", gin.H{"reason": err.Error()})
	case errors.Is(err, ErrFileTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeFileTooLarge, err.Error(), nil)
	case errors.Is(err, ErrAnalysisInProgress):
		respond.Error(c, http.StatusConflict, ErrorCodeAnalysisInProgress, "an analysis is already running for this session", nil)
	case errors.Is(err, ErrNoFileSelected):
		respond.Error(c, http.StatusConflict, ErrorCodeNoFileSelected, "select a file before analyzing", nil)
	case errors.Is(err, ErrResultReady):
		respond.Error(c, http.StatusConflict, ErrorCodeResultReady, err.Error(), nil)
	case errors.Is(err, ErrSuperseded):
		respond.Error(c, http.StatusConflict, "superseded", err.Error(), nil)
	case errors.Is(err, provider.ErrAnalysisUnavailable):
		respond.Error(c, http.StatusBadGateway, ErrorCodeAnalysisUnavailable, "Analysis failed. Please try again.", gin.H{"reason": err.Error()})
	case errors.Is(err, ErrServiceClosed):
		respond.Error(c, http.StatusServiceUnavailable, "unavailable", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "request failed", nil)
	}
}

func requestContext(c *gin.Context) context.Context {
	return WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
}
