package handler

import (
	"net/http"

	"clinic_intake_backend/internal/carerequests/service"
	"clinic_intake_backend/internal/carerequests/transport"
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("/from-lead/:leadId", h.CreateFromLead)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/approve", h.Approve)
	rg.POST("/:id/schedule", h.Schedule)
	rg.POST("/:id/send-forms", h.SendForms)
	rg.POST("/:id/convert", h.Convert)
	rg.POST("/:id/archive", h.Archive)
	rg.POST("/:id/decline", h.Decline)
}

func (h *Handler) List(c *gin.Context) {
	var query transport.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	result, err := h.svc.List(c.Request.Context(), query.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) CreateFromLead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	leadID, ok := parseUUIDParam(c, "leadId")
	if !ok {
		return
	}
	result, err := h.svc.CreateFromLead(c.Request.Context(), leadID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) Approve(c *gin.Context) {
	var req transport.ApproveRequest
	id, actor, ok := h.bind(c, &req, true)
	if !ok {
		return
	}
	result, err := h.svc.Approve(c.Request.Context(), id, actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Schedule(c *gin.Context) {
	var req transport.ScheduleRequest
	id, actor, ok := h.bind(c, &req, false)
	if !ok {
		return
	}
	result, err := h.svc.Schedule(c.Request.Context(), id, actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) SendForms(c *gin.Context) {
	var req transport.SendFormsRequest
	id, actor, ok := h.bind(c, &req, false)
	if !ok {
		return
	}
	result, err := h.svc.SendForms(c.Request.Context(), id, actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) Convert(c *gin.Context) {
	var req transport.ConvertRequest
	id, actor, ok := h.bind(c, &req, true)
	if !ok {
		return
	}
	result, err := h.svc.Convert(c.Request.Context(), id, actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Archive(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.Archive(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Decline(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.Decline(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// bind resolves the actor and path id, then decodes and validates req.
// An empty body is accepted when optionalBody is set.
func (h *Handler) bind(c *gin.Context, req any, optionalBody bool) (uuid.UUID, uuid.UUID, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	if !(optionalBody && c.Request.ContentLength == 0) {
		if err := c.ShouldBindJSON(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return uuid.Nil, uuid.Nil, false
		}
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	return id, identity.UserID(), true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
