// Package timeline converts a rolling event window into fixed-width rows of
// sub-character timeline cells.
//
// Each cell carries a fill fraction and a directional shape, so presses that
// touch a slice boundary render as continuous bars instead of disconnected
// dashes. A content signature over the inputs skips recomputation when
// nothing visible changed.
package timeline

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/verte-zerg/staccato/internal/keys"
	"github.com/verte-zerg/staccato/internal/model"
)

// Shape describes how a press interval relates to a time slice.
type Shape int

// Cell shapes. Head fills from the right edge of the cell, tail and island
// from the left.
const (
	ShapeEmpty Shape = iota
	ShapeHead
	ShapeTail
	ShapeBody
	ShapeIsland
)

// Cell is one fixed-width timeline slot for one key.
type Cell struct {
	Fill  float64
	Shape Shape
}

// Row is the rendered timeline for one key.
type Row struct {
	Key     string
	Cells   []Cell
	Held    bool
	HeldFor float64
}

// FillLevels is the number of discrete sub-cell fill steps.
const FillLevels = 8

// Engine renders rolling event windows. It holds only caching state and is
// driven from a single consumer goroutine.
type Engine struct {
	window float64
	blocks int
	tick   float64

	sig   uint64
	cache []Row
}

// NewEngine returns an engine for the given view window (seconds), block
// count, and render tick interval (seconds). The tick quantizes "now" so
// the window boundary does not jitter between redraws.
func NewEngine(windowSeconds float64, blocks int, tickSeconds float64) *Engine {
	return &Engine{window: windowSeconds, blocks: blocks, tick: tickSeconds}
}

// Window returns the current view window in seconds.
func (e *Engine) Window() float64 { return e.window }

// Blocks returns the current timeline resolution.
func (e *Engine) Blocks() int { return e.blocks }

// SetWindow changes the view window and invalidates the cache.
func (e *Engine) SetWindow(seconds float64) {
	if seconds <= 0 {
		return
	}
	e.window = seconds
	e.invalidate()
}

// SetBlocks changes the timeline resolution and invalidates the cache.
func (e *Engine) SetBlocks(blocks int) {
	if blocks <= 0 {
		return
	}
	e.blocks = blocks
	e.invalidate()
}

// SetTick changes the "now" quantization interval and invalidates the cache.
func (e *Engine) SetTick(seconds float64) {
	if seconds < 0 {
		return
	}
	e.tick = seconds
	e.invalidate()
}

// Clear resets all cached state.
func (e *Engine) Clear() {
	e.invalidate()
}

func (e *Engine) invalidate() {
	e.sig = 0
	e.cache = nil
}

type interval struct {
	start float64
	end   float64
}

// Render produces one row per key with activity inside [now-window, now].
// The returned rows are a shared projection: callers must treat them as
// read-only.
func (e *Engine) Render(events []model.KeyEvent, active map[string]float64, now float64) []Row {
	viewEnd := now
	if e.tick > 0 {
		viewEnd = math.Floor(now/e.tick) * e.tick
	}
	viewStart := viewEnd - e.window

	visible := e.visibleKeys(events, active, viewStart, viewEnd)

	sig := signature(len(events), viewStart, viewEnd, e.blocks, visible)
	if sig == e.sig && e.cache != nil {
		return e.cache
	}

	rows := make([]Row, 0, len(visible))
	for _, key := range visible {
		ivs := e.intervalsFor(key, events, active, viewStart, viewEnd)
		row := Row{Key: key, Cells: e.slice(ivs, viewStart)}
		if pressTime, held := active[key]; held {
			row.Held = true
			row.HeldFor = viewEnd - pressTime
			if row.HeldFor < 0 {
				row.HeldFor = 0
			}
		}
		rows = append(rows, row)
	}

	e.sig = sig
	e.cache = rows
	return rows
}

// visibleKeys collects keys with any event inside the window plus all
// currently held keys, in canonical order.
func (e *Engine) visibleKeys(events []model.KeyEvent, active map[string]float64, viewStart, viewEnd float64) []string {
	seen := map[string]struct{}{}
	for _, ev := range events {
		if ev.Timestamp >= viewStart && ev.Timestamp <= viewEnd {
			seen[keys.Normalize(ev.Key)] = struct{}{}
		}
	}
	for key := range active {
		seen[keys.Normalize(key)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	keys.SortCanonical(out)
	return out
}

// intervalsFor reconstructs the press intervals for one key with the same
// pairing semantics as the analyzer: one pending press, last seen wins. A
// still-held key contributes an open interval clipped at the window edges.
func (e *Engine) intervalsFor(key string, events []model.KeyEvent, active map[string]float64, viewStart, viewEnd float64) []interval {
	var ivs []interval
	pending := math.NaN()
	for _, ev := range events {
		if keys.Normalize(ev.Key) != key {
			continue
		}
		switch ev.Type {
		case model.Press:
			pending = ev.Timestamp
		case model.Release:
			if !math.IsNaN(pending) {
				ivs = append(ivs, interval{start: pending, end: ev.Timestamp})
				pending = math.NaN()
			}
		}
	}
	if pressTime, held := active[key]; held {
		matched := false
		for _, iv := range ivs {
			if math.Abs(iv.start-pressTime) < 1e-9 {
				matched = true
				break
			}
		}
		if !matched {
			ivs = append(ivs, interval{start: pressTime, end: viewEnd})
		}
	}

	// Clip to the window; the open interval must end exactly at the edge.
	clipped := ivs[:0]
	for _, iv := range ivs {
		if iv.start < viewStart {
			iv.start = viewStart
		}
		if iv.end > viewEnd {
			iv.end = viewEnd
		}
		if iv.end > iv.start {
			clipped = append(clipped, iv)
		}
	}
	return clipped
}

// slice classifies each of the fixed-width time slices against the press
// intervals. When several intervals touch one slice, the one covering the
// most of it decides the shape.
func (e *Engine) slice(ivs []interval, viewStart float64) []Cell {
	cells := make([]Cell, e.blocks)
	if e.blocks <= 0 {
		return cells
	}
	width := e.window / float64(e.blocks)
	// Tolerance for float error at slice boundaries, so an interval ending
	// exactly on an edge never misclassifies as ending inside.
	eps := width * 1e-6
	for i := range cells {
		sliceStart := viewStart + e.window*float64(i)/float64(e.blocks)
		sliceEnd := viewStart + e.window*float64(i+1)/float64(e.blocks)

		var best interval
		covered := 0.0
		for _, iv := range ivs {
			start := math.Max(iv.start, sliceStart)
			end := math.Min(iv.end, sliceEnd)
			if end-start > covered {
				covered = end - start
				best = iv
			}
		}
		if covered <= eps {
			continue
		}

		startsInside := best.start > sliceStart+eps
		endsInside := best.end < sliceEnd-eps
		var shape Shape
		switch {
		case !startsInside && !endsInside:
			shape = ShapeBody
		case startsInside && !endsInside:
			shape = ShapeHead
		case !startsInside && endsInside:
			shape = ShapeTail
		default:
			shape = ShapeIsland
		}
		cells[i] = Cell{Fill: quantizeFill(covered / width), Shape: shape}
	}
	return cells
}

// quantizeFill snaps a fraction to the discrete glyph levels, keeping any
// positive coverage visible at the lowest level.
func quantizeFill(f float64) float64 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 1
	}
	q := math.Round(f*FillLevels) / FillLevels
	if q <= 0 {
		q = 1.0 / FillLevels
	}
	return q
}

// signature hashes everything that affects the rendered content.
func signature(eventCount int, viewStart, viewEnd float64, blocks int, visible []string) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(eventCount))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(viewStart))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(viewEnd))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(blocks))
	_, _ = h.Write(buf[:])
	for _, key := range visible {
		_, _ = h.Write([]byte(key))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
