package handler

import (
	"context"
	"errors"
	"net/http"

	"clinic_intake_backend/internal/journey/domain"
	"clinic_intake_backend/internal/journey/service"
	"clinic_intake_backend/internal/journey/transport"
	"clinic_intake_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

// BoardReader is the tracker surface the handler needs.
type BoardReader interface {
	Current(ctx context.Context) (domain.Board, error)
	Refresh(ctx context.Context) error
}

// Handler serves the Prospect Journey board.
type Handler struct {
	tracker BoardReader
	stream  gin.HandlerFunc
}

// New creates a journey handler. stream serves the SSE endpoint.
func New(tracker BoardReader, stream gin.HandlerFunc) *Handler {
	return &Handler{tracker: tracker, stream: stream}
}

// RegisterRoutes mounts the journey routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.GetBoard)
	rg.POST("/refresh", h.Refresh)
	if h.stream != nil {
		rg.GET("/stream", h.stream)
	}
}

// GetBoard returns the current board, refreshing first when ?refresh=true.
func (h *Handler) GetBoard(c *gin.Context) {
	var query transport.BoardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	ctx := c.Request.Context()
	if query.Refresh {
		if err := h.tracker.Refresh(ctx); err != nil && !errors.Is(err, service.ErrSuperseded) {
			httpkit.HandleError(c, err)
			return
		}
	}

	board, err := h.tracker.Current(ctx)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, board)
}

// Refresh forces a reload and returns the resulting summary.
func (h *Handler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.tracker.Refresh(ctx); err != nil && !errors.Is(err, service.ErrSuperseded) {
		httpkit.HandleError(c, err)
		return
	}

	board, err := h.tracker.Current(ctx)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.RefreshResponse{Generation: board.Generation, Summary: board.Summary})
}
