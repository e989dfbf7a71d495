package handler

import (
	"net/http"

	"clinic_intake_backend/internal/intake/service"
	"clinic_intake_backend/internal/intake/transport"
	"clinic_intake_backend/platform/httpkit"
	"clinic_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler serves the staff intake routes.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/intakes", h.ListIntakes)
	rg.GET("/intakes/:id", h.GetIntake)
	rg.POST("/intakes/:id/approve", h.ApproveIntake)
	rg.GET("/intake/front-desk/qr.png", h.FrontDeskQR)
}

func (h *Handler) ListIntakes(c *gin.Context) {
	var query transport.ListIntakesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	result, err := h.svc.ListIntakes(c.Request.Context(), query.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) GetIntake(c *gin.Context) {
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

func (h *Handler) ApproveIntake(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.svc.ApproveIntake(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// FrontDeskQR returns the printable lobby QR code.
func (h *Handler) FrontDeskQR(c *gin.Context) {
	png, err := h.svc.FrontDeskQR()
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
