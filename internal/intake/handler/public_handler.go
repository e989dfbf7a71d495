package handler

import (
	"net/http"

	"clinic_intake_backend/internal/intake/service"
	"clinic_intake_backend/internal/intake/transport"
	"clinic_intake_backend/platform/httpkit"
	"clinic_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// PublicHandler serves the patient-facing questionnaire routes. The form
// and intake ids act as unguessable links.
type PublicHandler struct {
	svc *service.Service
	val *validator.Validator
}

func NewPublicHandler(svc *service.Service, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	forms := rg.Group("/intake-forms")
	forms.GET("/:id", h.GetForm)
	forms.PUT("/:id", h.SaveForm)
	forms.POST("/:id/submit", h.SubmitForm)

	intakes := rg.Group("/intakes")
	intakes.POST("", h.CreateIntake)
	intakes.GET("/:id", h.GetIntake)
	intakes.PUT("/:id", h.SaveIntake)
	intakes.POST("/:id/submit", h.SubmitIntake)

	rg.POST("/intake/front-desk", h.SubmitFrontDesk)
}

func (h *PublicHandler) GetForm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.svc.GetForm(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *PublicHandler) SaveForm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.SaveFormRequest
	if !h.decode(c, &req, false) {
		return
	}
	result, err := h.svc.SaveForm(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *PublicHandler) SubmitForm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.SubmitFormRequest
	if !h.decode(c, &req, true) {
		return
	}
	result, err := h.svc.SubmitForm(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *PublicHandler) CreateIntake(c *gin.Context) {
	var req transport.CreateIntakeRequest
	if !h.decode(c, &req, false) {
		return
	}
	result, err := h.svc.CreateIntake(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *PublicHandler) GetIntake(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.svc.GetIntake(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *PublicHandler) SaveIntake(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.SaveIntakeRequest
	if !h.decode(c, &req, false) {
		return
	}
	result, err := h.svc.SaveIntake(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *PublicHandler) SubmitIntake(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.SubmitIntakeRequest
	if !h.decode(c, &req, true) {
		return
	}
	result, err := h.svc.SubmitIntake(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *PublicHandler) SubmitFrontDesk(c *gin.Context) {
	var req transport.FrontDeskRequest
	if !h.decode(c, &req, false) {
		return
	}
	result, err := h.svc.SubmitFrontDesk(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *PublicHandler) decode(c *gin.Context, req any, optionalBody bool) bool {
	if !(optionalBody && c.Request.ContentLength == 0) {
		if err := c.ShouldBindJSON(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return false
		}
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
