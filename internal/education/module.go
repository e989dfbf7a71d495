// Package education serves static educational reference pages to patients.
package education

import (
	"clinic_intake_backend/internal/education/handler"
	"clinic_intake_backend/internal/education/library"
	apphttp "clinic_intake_backend/internal/http"
	"clinic_intake_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
}

// NewModule parses the embedded library. A malformed library fails start-up.
func NewModule(val *validator.Validator) (*Module, error) {
	lib, err := library.LoadLibrary()
	if err != nil {
		return nil, err
	}
	return &Module{handler: handler.New(lib, val)}, nil
}

func (m *Module) Name() string {
	return "education"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Public.Group("/education"))
}

var _ apphttp.Module = (*Module)(nil)
