// Package model defines shared data structures.
package model

// EventType distinguishes key presses from releases.
type EventType string

// Event types delivered by capture sources.
const (
	Press   EventType = "press"
	Release EventType = "release"
)

// KeyEvent is a single timestamped keyboard transition.
// Timestamp is monotonic seconds from the capture source's clock.
type KeyEvent struct {
	Key       string    `json:"key"`
	Type      EventType `json:"event_type"`
	Timestamp float64   `json:"timestamp"`
}

// Session is a recorded sequence of key events.
type Session struct {
	StartTime float64           `json:"start_time"`
	EndTime   float64           `json:"end_time"`
	Meta      map[string]string `json:"metadata,omitempty"`
	Events    []KeyEvent        `json:"events"`
}

// KeyMetric is one completed press/release pair.
type KeyMetric struct {
	Key         string
	PressTime   float64
	ReleaseTime float64
	Duration    float64
}

// KeyInteraction is an aggregated temporal overlap between two keys.
// OverlapPct relates the overlap to the combined press duration of both keys.
type KeyInteraction struct {
	Key1            string
	Key2            string
	OverlapDuration float64
	OverlapPct      float64
}

// SessionMetrics aggregates hygiene statistics over a window of key metrics.
// It is recomputed from scratch on every analysis tick, never mutated
// incrementally.
type SessionMetrics struct {
	TotalKeypresses       int
	CleanKeypresses       int
	OverlappingKeypresses int
	HygieneScore          float64
	AdhesionRate          float64
	TotalOverlapDuration  float64
	MinorAdhesions        int
	ModerateAdhesions     int
	SevereAdhesions       int
	KeyAdhesionMap        map[string]int
}

// MonitorConfig defines live monitor settings.
type MonitorConfig struct {
	WindowSeconds  float64
	TimelineBlocks int
	RenderFPS      int
	StatsInterval  float64
	QueueSize      int
	TopOffenders   int
	MinorMs        float64
	ModerateMs     float64
	SevereMs       float64
	WeightClean    float64
	WeightMinor    float64
	WeightModerate float64
	WeightSevere   float64
}

// StatsConfig defines filters for session history output.
type StatsConfig struct {
	Since string
	Last  int
}

// SessionSummary is a persisted aggregate of one analyzed session.
type SessionSummary struct {
	SummaryID             int64
	StartedAt             string
	EndedAt               string
	DurationSeconds       float64
	TotalKeypresses       int
	CleanKeypresses       int
	OverlappingKeypresses int
	HygieneScore          float64
	AdhesionRate          float64
	TotalOverlapMs        float64
	MinorAdhesions        int
	ModerateAdhesions     int
	SevereAdhesions       int
	WorstPair             string
	EventsFile            string
}
