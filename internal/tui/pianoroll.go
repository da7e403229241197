package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/staccato/internal/timeline"
)

const keyLabelWidth = 12

// Partial blocks filled from the left edge, 1/8 through 8/8.
var leftBlocks = []rune("▏▎▍▌▋▊▉█")

// cellGlyph picks the glyph for one timeline cell. A body spans the whole
// slice. A head begins inside the slice and runs to its right edge; the
// charset has no graded right-filled blocks, so heads snap to a half or
// full block. Tails and islands fill from the left.
func cellGlyph(c timeline.Cell) rune {
	if c.Shape == timeline.ShapeEmpty || c.Fill <= 0 {
		return ' '
	}
	level := int(math.Round(c.Fill * timeline.FillLevels))
	if level < 1 {
		level = 1
	}
	if level > timeline.FillLevels {
		level = timeline.FillLevels
	}
	switch c.Shape {
	case timeline.ShapeBody:
		return '█'
	case timeline.ShapeHead:
		if level > timeline.FillLevels/2 {
			return '█'
		}
		return '▐'
	default: // tail and island
		return leftBlocks[level-1]
	}
}

func renderCells(cells []timeline.Cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteRune(cellGlyph(c))
	}
	return b.String()
}

func keyLabel(key string) string {
	label := strings.ToUpper(key)
	return runewidth.FillRight(runewidth.Truncate(label, keyLabelWidth, ""), keyLabelWidth)
}

// renderPianoRoll draws one timeline row per visible key, newest activity on
// the right.
func renderPianoRoll(rows []timeline.Row, window float64, blocks int, lastActivity float64, haveEvents bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("PIANO ROLL"))
	b.WriteString("\n")

	if len(rows) == 0 {
		if haveEvents {
			b.WriteString(dimStyle.Render(fmt.Sprintf("Last activity: %.1fs ago", lastActivity)))
		} else {
			b.WriteString(dimStyle.Render("Waiting for key events..."))
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("View window: %.0fs | Resolution: %.0fms/block", window, window/float64(blocks)*1000)))
		return b.String()
	}

	for _, row := range rows {
		b.WriteString(labelStyle.Render(keyLabel(row.Key)))
		b.WriteString(dimStyle.Render(" │"))
		b.WriteString(barStyle.Render(renderCells(row.Cells)))
		b.WriteString(dimStyle.Render("│ "))
		if row.Held {
			b.WriteString(heldStyle.Render(fmt.Sprintf("● %.2fs", row.HeldFor)))
		} else {
			b.WriteString(dimStyle.Render("○ released"))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s time (-%.0fs → now)", strings.Repeat("─", keyLabelWidth+2), window)))
	return b.String()
}
