// Package analyzer reconstructs key press intervals and measures adhesion.
//
// Adhesion is spurious temporal overlap between two key press intervals,
// usually caused by switch bounce or accidental simultaneous actuation. The
// analyzer is a pure function of an ordered event window; it holds no state
// between calls.
package analyzer

import (
	"sort"
	"time"

	"github.com/verte-zerg/staccato/internal/keys"
	"github.com/verte-zerg/staccato/internal/model"
)

// Severity classifies a keypress by the worst overlap it participates in.
type Severity int

// Severity bands, ordered from best to worst.
const (
	Clean Severity = iota
	Minor
	Moderate
	Severe
)

// String returns the lowercase band name.
func (s Severity) String() string {
	switch s {
	case Clean:
		return "clean"
	case Minor:
		return "minor"
	case Moderate:
		return "moderate"
	case Severe:
		return "severe"
	}
	return "unknown"
}

// Weights assigns a hygiene contribution to each severity band.
type Weights struct {
	Clean    float64
	Minor    float64
	Moderate float64
	Severe   float64
}

// Config holds the adhesion thresholds and hygiene weights. All values are
// runtime-adjustable; the zero value is not usable, start from
// DefaultConfig.
type Config struct {
	MinorThreshold    time.Duration
	ModerateThreshold time.Duration
	SevereThreshold   time.Duration
	Weights           Weights
}

// DefaultConfig returns the stock thresholds (50/100/150 ms) and weights.
func DefaultConfig() Config {
	return Config{
		MinorThreshold:    50 * time.Millisecond,
		ModerateThreshold: 100 * time.Millisecond,
		SevereThreshold:   150 * time.Millisecond,
		Weights:           Weights{Clean: 1.0, Minor: 0.7, Moderate: 0.3, Severe: 0.0},
	}
}

// Analyzer computes timing metrics over ordered event windows.
type Analyzer struct {
	cfg Config
}

// New returns an analyzer with the given configuration.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Config returns the current configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// SetConfig replaces the thresholds and weights.
func (a *Analyzer) SetConfig(cfg Config) {
	a.cfg = cfg
}

// Analyze pairs presses with releases in a single forward scan and returns
// one metric per completed pair, in release order.
//
// Only the most recent unmatched press per key is eligible for pairing; a
// release with no pending press is dropped; a press still pending at the
// end of the scan yields no metric.
func (a *Analyzer) Analyze(events []model.KeyEvent) []model.KeyMetric {
	var metrics []model.KeyMetric
	pending := map[string]float64{}

	for _, ev := range events {
		key := keys.Normalize(ev.Key)
		switch ev.Type {
		case model.Press:
			pending[key] = ev.Timestamp
		case model.Release:
			pressTime, ok := pending[key]
			if !ok {
				continue
			}
			metrics = append(metrics, model.KeyMetric{
				Key:         key,
				PressTime:   pressTime,
				ReleaseTime: ev.Timestamp,
				Duration:    ev.Timestamp - pressTime,
			})
			delete(pending, key)
		}
	}
	return metrics
}

// overlap is one pairwise intersection between two completed press intervals.
type overlap struct {
	pair     string
	start    float64
	end      float64
	duration float64
	// combined press duration of both metrics in this sample
	pressDuration float64
	first         int
	second        int
}

// scanOverlaps finds every pairwise intersection with positive measure.
// O(n²) over the metrics; acceptable because a window is small by
// construction, not because it scales.
func scanOverlaps(metrics []model.KeyMetric) []overlap {
	var out []overlap
	for i, m1 := range metrics {
		for j := i + 1; j < len(metrics); j++ {
			m2 := metrics[j]
			if m1.PressTime >= m2.ReleaseTime || m2.PressTime >= m1.ReleaseTime {
				continue
			}
			start := m1.PressTime
			if m2.PressTime > start {
				start = m2.PressTime
			}
			end := m1.ReleaseTime
			if m2.ReleaseTime < end {
				end = m2.ReleaseTime
			}
			if end-start <= 0 {
				continue
			}
			out = append(out, overlap{
				pair:          keys.PairKey(m1.Key, m2.Key),
				start:         start,
				end:           end,
				duration:      end - start,
				pressDuration: m1.Duration + m2.Duration,
				first:         i,
				second:        j,
			})
		}
	}
	return out
}

// DetectOverlaps maps each canonical key pair to its most recently scanned
// overlap duration.
func (a *Analyzer) DetectOverlaps(metrics []model.KeyMetric) map[string]float64 {
	out := map[string]float64{}
	for _, ov := range scanOverlaps(metrics) {
		out[ov.pair] = ov.duration
	}
	return out
}

// FindHotspots ranks key pairs by average overlap duration, worst first,
// and truncates to topN. Ties keep pair discovery order.
func (a *Analyzer) FindHotspots(metrics []model.KeyMetric, topN int) []model.KeyInteraction {
	type agg struct {
		totalOverlap  float64
		totalPress    float64
		count         int
		discoverOrder int
	}
	aggs := map[string]*agg{}
	order := []string{}
	for _, ov := range scanOverlaps(metrics) {
		entry, ok := aggs[ov.pair]
		if !ok {
			entry = &agg{discoverOrder: len(order)}
			aggs[ov.pair] = entry
			order = append(order, ov.pair)
		}
		entry.totalOverlap += ov.duration
		entry.totalPress += ov.pressDuration
		entry.count++
	}

	hotspots := make([]model.KeyInteraction, 0, len(order))
	for _, pair := range order {
		entry := aggs[pair]
		k1, k2 := keys.SplitPair(pair)
		pct := 0.0
		if entry.totalPress > 0 {
			pct = entry.totalOverlap / entry.totalPress * 100
		}
		hotspots = append(hotspots, model.KeyInteraction{
			Key1:            k1,
			Key2:            k2,
			OverlapDuration: entry.totalOverlap / float64(entry.count),
			OverlapPct:      pct,
		})
	}
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].OverlapDuration > hotspots[j].OverlapDuration
	})
	if topN > 0 && len(hotspots) > topN {
		hotspots = hotspots[:topN]
	}
	return hotspots
}

// MostRecentOverlap returns the interaction whose overlap interval ends
// latest, or nil when nothing overlaps. Ties keep the first overlap
// encountered in pairwise scan order.
func (a *Analyzer) MostRecentOverlap(metrics []model.KeyMetric) *model.KeyInteraction {
	var best *overlap
	for _, ov := range scanOverlaps(metrics) {
		ov := ov
		if best == nil || ov.end > best.end {
			best = &ov
		}
	}
	if best == nil {
		return nil
	}
	k1, k2 := keys.SplitPair(best.pair)
	pct := 0.0
	if best.pressDuration > 0 {
		pct = best.duration / best.pressDuration * 100
	}
	return &model.KeyInteraction{
		Key1:            k1,
		Key2:            k2,
		OverlapDuration: best.duration,
		OverlapPct:      pct,
	}
}

// SeverityFor classifies a keypress by its maximum overlap duration in
// seconds. Overlaps between the moderate and severe thresholds count as
// moderate.
func (a *Analyzer) SeverityFor(maxOverlap float64) Severity {
	switch {
	case maxOverlap <= 0:
		return Clean
	case maxOverlap < a.cfg.MinorThreshold.Seconds():
		return Minor
	case maxOverlap < a.cfg.SevereThreshold.Seconds():
		return Moderate
	default:
		return Severe
	}
}

// InteractionSeverity tags a single overlap duration for display, using the
// minor and moderate cut points.
func (a *Analyzer) InteractionSeverity(duration float64) Severity {
	switch {
	case duration <= 0:
		return Clean
	case duration < a.cfg.MinorThreshold.Seconds():
		return Minor
	case duration < a.cfg.ModerateThreshold.Seconds():
		return Moderate
	default:
		return Severe
	}
}

func (a *Analyzer) weightFor(s Severity) float64 {
	switch s {
	case Clean:
		return a.cfg.Weights.Clean
	case Minor:
		return a.cfg.Weights.Minor
	case Moderate:
		return a.cfg.Weights.Moderate
	default:
		return a.cfg.Weights.Severe
	}
}

// SessionMetrics aggregates the hygiene statistics for a window of metrics.
//
// Every keypress is classified by the maximum overlap duration it
// participates in. An empty window reports a hygiene score of 100 and an
// adhesion rate of 0: the neutral "no data yet" sentinel, never a division
// fault.
func (a *Analyzer) SessionMetrics(metrics []model.KeyMetric) model.SessionMetrics {
	out := model.SessionMetrics{KeyAdhesionMap: map[string]int{}}
	out.TotalKeypresses = len(metrics)
	if out.TotalKeypresses == 0 {
		out.HygieneScore = 100
		return out
	}

	maxOverlap := make([]float64, len(metrics))
	for _, ov := range scanOverlaps(metrics) {
		out.TotalOverlapDuration += ov.duration
		if ov.duration > maxOverlap[ov.first] {
			maxOverlap[ov.first] = ov.duration
		}
		if ov.duration > maxOverlap[ov.second] {
			maxOverlap[ov.second] = ov.duration
		}
	}

	weightSum := 0.0
	for i, m := range metrics {
		sev := a.SeverityFor(maxOverlap[i])
		weightSum += a.weightFor(sev)
		switch sev {
		case Clean:
			out.CleanKeypresses++
			continue
		case Minor:
			out.MinorAdhesions++
		case Moderate:
			out.ModerateAdhesions++
		case Severe:
			out.SevereAdhesions++
		}
		out.OverlappingKeypresses++
		out.KeyAdhesionMap[m.Key]++
	}

	out.HygieneScore = 100 * weightSum / float64(out.TotalKeypresses)
	out.AdhesionRate = float64(out.OverlappingKeypresses) / float64(out.TotalKeypresses) * 100
	return out
}

// KeysPerSecond counts presses within the trailing window of the latest
// event and divides by the window length. Empty input yields 0.
func (a *Analyzer) KeysPerSecond(events []model.KeyEvent, window float64) float64 {
	if len(events) == 0 || window <= 0 {
		return 0
	}
	latest := events[len(events)-1].Timestamp
	presses := 0
	for _, ev := range events {
		if ev.Type == model.Press && latest-ev.Timestamp <= window {
			presses++
		}
	}
	return float64(presses) / window
}
