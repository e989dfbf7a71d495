package handler

import (
	"net/http"

	"clinic_intake_backend/internal/leads/service"
	"clinic_intake_backend/internal/leads/transport"
	"clinic_intake_backend/platform/httpkit"
	"clinic_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// PublicHandler accepts anonymous CTA submissions from the marketing site.
type PublicHandler struct {
	svc *service.Service
	val *validator.Validator
}

func NewPublicHandler(svc *service.Service, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
}

func (h *PublicHandler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.PublicLeadResponse{ID: lead.ID, CreatedAt: lead.CreatedAt})
}
