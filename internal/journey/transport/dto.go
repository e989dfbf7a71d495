package transport

import "clinic_intake_backend/internal/journey/domain"

// BoardQuery are the options of GET /journey.
type BoardQuery struct {
	Refresh bool `form:"refresh"`
}

// RefreshResponse is returned after a forced refresh.
type RefreshResponse struct {
	Generation uint64         `json:"generation"`
	Summary    domain.Summary `json:"summary"`
}
