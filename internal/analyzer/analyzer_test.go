package analyzer

import (
	"math"
	"testing"

	"github.com/verte-zerg/staccato/internal/model"
)

func press(key string, ts float64) model.KeyEvent {
	return model.KeyEvent{Key: key, Type: model.Press, Timestamp: ts}
}

func release(key string, ts float64) model.KeyEvent {
	return model.KeyEvent{Key: key, Type: model.Release, Timestamp: ts}
}

func metric(key string, pressAt, releaseAt float64) model.KeyMetric {
	return model.KeyMetric{Key: key, PressTime: pressAt, ReleaseTime: releaseAt, Duration: releaseAt - pressAt}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzePairsPressesWithReleases(t *testing.T) {
	a := New(DefaultConfig())
	events := []model.KeyEvent{
		press("a", 0.0), release("a", 0.1),
		press("b", 0.2), release("b", 0.35),
		press("c", 0.4), // still held, no metric
	}
	metrics := a.Analyze(events)
	if len(metrics) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(metrics))
	}
	if metrics[0].Key != "a" || !approx(metrics[0].Duration, 0.1) {
		t.Fatalf("unexpected first metric: %+v", metrics[0])
	}
	if metrics[1].Key != "b" || !approx(metrics[1].Duration, 0.15) {
		t.Fatalf("unexpected second metric: %+v", metrics[1])
	}
}

func TestAnalyzeDropsUnmatchedReleases(t *testing.T) {
	a := New(DefaultConfig())
	metrics := a.Analyze([]model.KeyEvent{
		release("a", 0.1),
		press("b", 0.2), release("b", 0.3),
	})
	if len(metrics) != 1 || metrics[0].Key != "b" {
		t.Fatalf("expected only the completed pair, got %+v", metrics)
	}
}

func TestAnalyzeLastSeenPressWins(t *testing.T) {
	a := New(DefaultConfig())
	// Two presses before a release: only the most recent press pairs.
	metrics := a.Analyze([]model.KeyEvent{
		press("a", 0.0), press("a", 0.5), release("a", 0.6),
	})
	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(metrics))
	}
	if !approx(metrics[0].PressTime, 0.5) || !approx(metrics[0].Duration, 0.1) {
		t.Fatalf("expected pairing with the most recent press: %+v", metrics[0])
	}
}

func TestAnalyzeRoundTripCount(t *testing.T) {
	a := New(DefaultConfig())
	var events []model.KeyEvent
	ts := 0.0
	for i := 0; i < 7; i++ {
		key := string(rune('a' + i%3))
		events = append(events, press(key, ts), release(key, ts+0.04))
		ts += 0.1
	}
	metrics := a.Analyze(events)
	if len(metrics) != 7 {
		t.Fatalf("expected one metric per completed pair, got %d", len(metrics))
	}
}

func TestDetectOverlapScenario(t *testing.T) {
	a := New(DefaultConfig())
	// A active 0.000-0.060, B active 0.010-0.070: intersection 0.010-0.060.
	metrics := a.Analyze([]model.KeyEvent{
		press("a", 0.000), press("b", 0.010),
		release("a", 0.060), release("b", 0.070),
	})
	overlaps := a.DetectOverlaps(metrics)
	if len(overlaps) != 1 {
		t.Fatalf("expected exactly one overlap, got %v", overlaps)
	}
	if !approx(overlaps["a+b"], 0.050) {
		t.Fatalf("expected 50ms overlap for a+b, got %v", overlaps["a+b"])
	}
}

func TestDetectOverlapsDisjointIntervals(t *testing.T) {
	a := New(DefaultConfig())
	metrics := a.Analyze([]model.KeyEvent{
		press("a", 0.000), release("a", 0.050),
		press("b", 0.100), release("b", 0.150),
	})
	if overlaps := a.DetectOverlaps(metrics); len(overlaps) != 0 {
		t.Fatalf("expected no overlaps for disjoint intervals, got %v", overlaps)
	}
}

func TestOverlapSymmetric(t *testing.T) {
	a := New(DefaultConfig())
	forward := []model.KeyMetric{metric("a", 0.0, 0.06), metric("b", 0.01, 0.07)}
	backward := []model.KeyMetric{metric("b", 0.01, 0.07), metric("a", 0.0, 0.06)}
	d1 := a.DetectOverlaps(forward)["a+b"]
	d2 := a.DetectOverlaps(backward)["a+b"]
	if !approx(d1, d2) {
		t.Fatalf("overlap must be symmetric: %v vs %v", d1, d2)
	}
}

func TestFindHotspotsRankingAndTruncation(t *testing.T) {
	a := New(DefaultConfig())
	metrics := []model.KeyMetric{
		// a+b overlap 20ms, twice
		metric("a", 0.00, 0.10), metric("b", 0.08, 0.20),
		metric("a", 1.00, 1.10), metric("b", 1.08, 1.20),
		// c+d overlap 90ms, once
		metric("c", 2.00, 2.10), metric("d", 2.01, 2.30),
	}
	hotspots := a.FindHotspots(metrics, 5)
	if len(hotspots) != 2 {
		t.Fatalf("expected 2 hotspots, got %d", len(hotspots))
	}
	if hotspots[0].Key1 != "c" || hotspots[0].Key2 != "d" {
		t.Fatalf("expected c+d to rank first, got %+v", hotspots[0])
	}
	if !approx(hotspots[0].OverlapDuration, 0.09) {
		t.Fatalf("unexpected c+d average overlap: %v", hotspots[0].OverlapDuration)
	}
	if !approx(hotspots[1].OverlapDuration, 0.02) {
		t.Fatalf("unexpected a+b average overlap: %v", hotspots[1].OverlapDuration)
	}

	truncated := a.FindHotspots(metrics, 1)
	if len(truncated) != 1 || truncated[0].Key1 != "c" {
		t.Fatalf("expected truncation to keep the worst pair, got %+v", truncated)
	}
}

func TestHotspotOverlapPercentage(t *testing.T) {
	a := New(DefaultConfig())
	// Overlap 50ms, combined press duration 60+60=120ms.
	metrics := []model.KeyMetric{metric("a", 0.0, 0.06), metric("b", 0.01, 0.07)}
	hotspots := a.FindHotspots(metrics, 1)
	if len(hotspots) != 1 {
		t.Fatalf("expected 1 hotspot, got %d", len(hotspots))
	}
	if !approx(hotspots[0].OverlapPct, 0.05/0.12*100) {
		t.Fatalf("unexpected overlap percentage: %v", hotspots[0].OverlapPct)
	}
}

func TestMostRecentOverlap(t *testing.T) {
	a := New(DefaultConfig())
	metrics := []model.KeyMetric{
		metric("a", 0.00, 0.06), metric("b", 0.01, 0.07), // ends 0.06
		metric("c", 1.00, 1.06), metric("d", 1.01, 1.07), // ends 1.06
	}
	recent := a.MostRecentOverlap(metrics)
	if recent == nil {
		t.Fatalf("expected an overlap")
	}
	if recent.Key1 != "c" || recent.Key2 != "d" {
		t.Fatalf("expected the latest-ending overlap, got %+v", recent)
	}

	if got := a.MostRecentOverlap(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %+v", got)
	}
}

func TestSessionMetricsCleanSession(t *testing.T) {
	a := New(DefaultConfig())
	metrics := []model.KeyMetric{
		metric("a", 0.0, 0.05), metric("b", 0.1, 0.15), metric("c", 0.2, 0.25),
	}
	sm := a.SessionMetrics(metrics)
	if !approx(sm.HygieneScore, 100) {
		t.Fatalf("clean session must score 100, got %v", sm.HygieneScore)
	}
	if sm.CleanKeypresses != 3 || sm.OverlappingKeypresses != 0 {
		t.Fatalf("unexpected breakdown: %+v", sm)
	}
	if !approx(sm.AdhesionRate, 0) {
		t.Fatalf("clean session must have 0 adhesion rate, got %v", sm.AdhesionRate)
	}
}

func TestSessionMetricsEmptySentinel(t *testing.T) {
	a := New(DefaultConfig())
	sm := a.SessionMetrics(nil)
	if sm.TotalKeypresses != 0 {
		t.Fatalf("unexpected keypress count: %d", sm.TotalKeypresses)
	}
	if !approx(sm.HygieneScore, 100) || !approx(sm.AdhesionRate, 0) {
		t.Fatalf("empty window must report the neutral sentinel, got %+v", sm)
	}
}

func TestSessionMetricsSeverityBands(t *testing.T) {
	a := New(DefaultConfig())
	metrics := []model.KeyMetric{
		// 20ms overlap: minor
		metric("a", 0.00, 0.10), metric("b", 0.08, 0.20),
		// 120ms overlap: moderate (between moderate and severe thresholds)
		metric("c", 1.00, 1.20), metric("d", 1.08, 1.30),
		// 200ms overlap: severe
		metric("e", 2.00, 2.30), metric("f", 2.10, 2.50),
	}
	sm := a.SessionMetrics(metrics)
	if sm.MinorAdhesions != 2 || sm.ModerateAdhesions != 2 || sm.SevereAdhesions != 2 {
		t.Fatalf("unexpected severity histogram: %+v", sm)
	}
	if sm.OverlappingKeypresses != 6 || sm.CleanKeypresses != 0 {
		t.Fatalf("unexpected overlap counts: %+v", sm)
	}
	// weights: 2*0.7 + 2*0.3 + 2*0.0 over 6 keypresses
	want := 100 * (2*0.7 + 2*0.3) / 6
	if !approx(sm.HygieneScore, want) {
		t.Fatalf("expected hygiene score %v, got %v", want, sm.HygieneScore)
	}
	for _, key := range []string{"a", "b", "c", "d", "e", "f"} {
		if sm.KeyAdhesionMap[key] != 1 {
			t.Fatalf("expected adhesion count for %s, got %v", key, sm.KeyAdhesionMap)
		}
	}
}

func TestSeverityClassification(t *testing.T) {
	a := New(DefaultConfig())
	cases := []struct {
		overlap float64
		want    Severity
	}{
		{0, Clean},
		{0.010, Minor},
		{0.049, Minor},
		{0.050, Moderate},
		{0.120, Moderate},
		{0.149, Moderate},
		{0.150, Severe},
		{0.500, Severe},
	}
	for _, tc := range cases {
		if got := a.SeverityFor(tc.overlap); got != tc.want {
			t.Fatalf("SeverityFor(%v) = %v, want %v", tc.overlap, got, tc.want)
		}
	}
}

func TestKeysPerSecond(t *testing.T) {
	a := New(DefaultConfig())
	events := []model.KeyEvent{
		press("a", 0.0), release("a", 0.1),
		press("b", 9.5), press("c", 9.8), press("d", 10.0),
	}
	if got := a.KeysPerSecond(events, 1.0); !approx(got, 3) {
		t.Fatalf("expected 3 keys/sec, got %v", got)
	}
	if got := a.KeysPerSecond(nil, 1.0); !approx(got, 0) {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
}
