package handler

import (
	"net/http"

	"clinic_intake_backend/internal/education/library"
	"clinic_intake_backend/platform/httpkit"
	"clinic_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type listQuery struct {
	Category string `form:"category" validate:"omitempty,oneof=neuro msk general"`
}

type listResponse struct {
	Items []library.Page `json:"items"`
	Total int            `json:"total"`
}

type Handler struct {
	lib *library.Library
	val *validator.Validator
}

func New(lib *library.Library, val *validator.Validator) *Handler {
	return &Handler{lib: lib, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:slug", h.Get)
}

func (h *Handler) List(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	items := h.lib.List(query.Category)
	httpkit.OK(c, listResponse{Items: items, Total: len(items)})
}

func (h *Handler) Get(c *gin.Context) {
	page, ok := h.lib.Get(c.Param("slug"))
	if !ok {
		httpkit.Error(c, http.StatusNotFound, "page not found", nil)
		return
	}
	httpkit.OK(c, page)
}
