package handler

import (
	"net/http"

	"clinic_intake_backend/internal/discharge/service"
	"clinic_intake_backend/internal/discharge/transport"
	"clinic_intake_backend/platform/httpkit"
	"clinic_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterEpisodeRoutes mounts /episodes.
func (h *Handler) RegisterEpisodeRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListEpisodes)
	rg.POST("/:id/discharge", h.Create)
}

// RegisterDischargeRoutes mounts /discharges.
func (h *Handler) RegisterDischargeRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/finalize", h.Finalize)
}

func (h *Handler) ListEpisodes(c *gin.Context) {
	var query transport.ListEpisodesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	result, err := h.svc.ListEpisodes(c.Request.Context(), query.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	episodeID, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.CreateDischargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), episodeID, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) Finalize(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.svc.Finalize(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
