package domain

import (
	"strings"

	"clinic_intake_backend/platform/sanitize"
)

// NonMatchingKey is the key of a record with neither name nor email.
const NonMatchingKey = "::"

// Key returns the identity key lower(trim(name)) + "::" + lower(trim(email)).
func Key(name, email string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "::" + strings.ToLower(strings.TrimSpace(email))
}

// KeySet is a set of identity keys. NonMatchingKey is never stored.
type KeySet map[string]struct{}

// NewKeySet collects the identity keys of the given care requests.
func NewKeySet(careRequests []CareRequest) KeySet {
	set := make(KeySet, len(careRequests))
	for _, cr := range careRequests {
		set.Add(Key(cr.PatientName, cr.PatientEmail))
	}
	return set
}

// Add inserts key unless it is NonMatchingKey.
func (s KeySet) Add(key string) {
	if key == NonMatchingKey {
		return
	}
	s[key] = struct{}{}
}

// Contains reports whether key is present. NonMatchingKey is never present.
func (s KeySet) Contains(key string) bool {
	if key == NonMatchingKey {
		return false
	}
	_, ok := s[key]
	return ok
}

func normalizeName(name string) string {
	return strings.ToLower(sanitize.CollapseSpaces(name))
}

func sameName(a, b string) bool {
	na := normalizeName(a)
	return na != "" && na == normalizeName(b)
}

func sameEmail(a, b string) bool {
	ea := strings.TrimSpace(a)
	return ea != "" && strings.EqualFold(ea, strings.TrimSpace(b))
}
