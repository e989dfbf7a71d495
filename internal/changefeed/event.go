// Package changefeed delivers row-level change notifications that Postgres
// triggers publish with pg_notify.
package changefeed

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Row operations carried in Event.EventType.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Row is a decoded table row. Values keep their JSON types.
type Row map[string]interface{}

// String returns the value at key as text, or "" when absent or null.
func (r Row) String(key string) string {
	if r == nil {
		return ""
	}
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Event is one change envelope. New is nil for deletes and Old for inserts.
type Event struct {
	Table     string `json:"table"`
	EventType string `json:"eventType"`
	New       Row    `json:"new"`
	Old       Row    `json:"old"`
}

// RecordID returns the id of the affected row.
func (e Event) RecordID() string {
	if id := e.New.String("id"); id != "" {
		return id
	}
	return e.Old.String("id")
}

// Decode parses a notification payload.
func Decode(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, fmt.Errorf("decode change event: %w", err)
	}
	e.EventType = strings.ToUpper(e.EventType)
	if e.Table == "" {
		return Event{}, fmt.Errorf("decode change event: missing table")
	}
	switch e.EventType {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return Event{}, fmt.Errorf("decode change event: unknown event type %q", e.EventType)
	}
	return e, nil
}
