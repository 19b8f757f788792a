package domain

import (
	"context"
	"time"
)

// EndpointHit is one recorded view of a URI.
type EndpointHit struct {
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

// ViewStats is the aggregated hit count for one URI.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// StatsClient talks to the hit-counter service. RecordHit is best-effort
// on the read path: failures are logged, never surfaced to callers, and
// view counts never gate admission decisions.
type StatsClient interface {
	RecordHit(ctx context.Context, hit EndpointHit) error
	// GetStats returns hit counts for the given URIs inside the window.
	// When unique is true each IP counts once per URI.
	GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error)
}
