package helpers

import (
	"net/http"
	"time"
)

// TimeLayout is the wire format for all date-time query parameters and
// JSON fields carrying event dates and range bounds.
const TimeLayout = "2006-01-02 15:04:05"

// ParseTimeParam reads an optional date-time query parameter. It returns
// nil when the parameter is absent and ok=false when it is present but
// malformed.
func ParseTimeParam(r *http.Request, name string) (*time.Time, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return nil, false
	}
	t = t.UTC()
	return &t, true
}
