package timeline

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

// engine with a 1s window split into 10 slices of 100ms and no now-quantization
func testEngine() *Engine {
	return NewEngine(1.0, 10, 0)
}

func rowFor(t *testing.T, rows []Row, key string) Row {
	t.Helper()
	for _, r := range rows {
		if r.Key == key {
			return r
		}
	}
	t.Fatalf("no row for key %q in %+v", key, rows)
	return Row{}
}

func TestRenderCompletedPressShapes(t *testing.T) {
	e := testEngine()
	// Window [9,10]. Press 9.25-9.55: starts mid-slice 2, covers 3 and 4,
	// ends mid-slice 5.
	events := []model.KeyEvent{press("a", 9.25), release("a", 9.55)}
	rows := e.Render(events, nil, 10.0)
	row := rowFor(t, rows, "a")

	if got := row.Cells[2].Shape; got != ShapeHead {
		t.Fatalf("expected head in slice 2, got %v", got)
	}
	if got := row.Cells[3].Shape; got != ShapeBody {
		t.Fatalf("expected body in slice 3, got %v", got)
	}
	if got := row.Cells[4].Shape; got != ShapeBody {
		t.Fatalf("expected body in slice 4, got %v", got)
	}
	if got := row.Cells[5].Shape; got != ShapeTail {
		t.Fatalf("expected tail in slice 5, got %v", got)
	}
	for _, i := range []int{0, 1, 6, 7, 8, 9} {
		if row.Cells[i].Shape != ShapeEmpty {
			t.Fatalf("expected slice %d empty, got %v", i, row.Cells[i].Shape)
		}
	}
	if math.Abs(row.Cells[2].Fill-0.5) > 1e-9 {
		t.Fatalf("expected half fill in head slice, got %v", row.Cells[2].Fill)
	}
	if row.Cells[3].Fill != 1 {
		t.Fatalf("expected full fill in body slice, got %v", row.Cells[3].Fill)
	}
}

func TestRenderIslandWithinOneSlice(t *testing.T) {
	e := testEngine()
	events := []model.KeyEvent{press("a", 9.42), release("a", 9.46)}
	rows := e.Render(events, nil, 10.0)
	row := rowFor(t, rows, "a")
	if got := row.Cells[4].Shape; got != ShapeIsland {
		t.Fatalf("expected island, got %v", got)
	}
	if row.Cells[4].Fill <= 0 {
		t.Fatalf("positive coverage must stay visible, got fill %v", row.Cells[4].Fill)
	}
}

func TestRenderHeldKeyClippedAtWindowEdge(t *testing.T) {
	e := testEngine()
	// Key held since before the window: open interval clipped to [9,10],
	// every slice a body, rightmost included.
	active := map[string]float64{"a": 5.0}
	rows := e.Render(nil, active, 10.0)
	row := rowFor(t, rows, "a")
	if !row.Held {
		t.Fatalf("expected held row")
	}
	for i, cell := range row.Cells {
		if cell.Shape != ShapeBody || cell.Fill != 1 {
			t.Fatalf("expected full body in slice %d, got %+v", i, cell)
		}
	}
}

func TestRenderHeldKeyStartingInsideLastSlice(t *testing.T) {
	e := testEngine()
	active := map[string]float64{"a": 9.95}
	rows := e.Render([]model.KeyEvent{press("a", 9.95)}, active, 10.0)
	row := rowFor(t, rows, "a")
	last := row.Cells[len(row.Cells)-1]
	if last.Shape != ShapeHead {
		t.Fatalf("expected head in rightmost slice, got %v", last.Shape)
	}
	for i := 0; i < len(row.Cells)-1; i++ {
		if row.Cells[i].Shape != ShapeEmpty {
			t.Fatalf("expected slice %d empty, got %v", i, row.Cells[i].Shape)
		}
	}
}

func TestRenderQuantizesNow(t *testing.T) {
	e := NewEngine(1.0, 10, 0.05)
	events := []model.KeyEvent{press("a", 9.0), release("a", 9.5)}
	a := e.Render(events, nil, 10.001)
	b := e.Render(events, nil, 10.049)
	if &a[0] != &b[0] {
		t.Fatalf("expected cached rows for the same quantized tick")
	}
}

func TestRenderSignatureSkipsRedundantWork(t *testing.T) {
	e := testEngine()
	events := []model.KeyEvent{press("a", 9.2), release("a", 9.4)}
	first := e.Render(events, nil, 10.0)
	second := e.Render(events, nil, 10.0)
	if &first[0] != &second[0] {
		t.Fatalf("expected identical cached slice for unchanged inputs")
	}

	// A new event must change the signature.
	events = append(events, press("b", 9.8))
	third := e.Render(events, nil, 10.0)
	if len(third) != 2 {
		t.Fatalf("expected two rows after new key, got %d", len(third))
	}
}

func TestClearDropsCache(t *testing.T) {
	e := testEngine()
	events := []model.KeyEvent{press("a", 9.2), release("a", 9.4)}
	first := e.Render(events, nil, 10.0)
	e.Clear()
	second := e.Render(events, nil, 10.0)
	if &first[0] == &second[0] {
		t.Fatalf("expected recomputation after Clear")
	}
}

func TestRowsInCanonicalOrderUnknownLast(t *testing.T) {
	e := testEngine()
	events := []model.KeyEvent{
		press("mystery", 9.1), release("mystery", 9.2),
		press("space", 9.3), release("space", 9.4),
		press("q", 9.5), release("q", 9.6),
	}
	rows := e.Render(events, nil, 10.0)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Key != "q" || rows[1].Key != "space" || rows[2].Key != "mystery" {
		t.Fatalf("unexpected row order: %v %v %v", rows[0].Key, rows[1].Key, rows[2].Key)
	}
}

func TestSetWindowAndBlocksInvalidate(t *testing.T) {
	e := testEngine()
	events := []model.KeyEvent{press("a", 9.2), release("a", 9.4)}
	first := e.Render(events, nil, 10.0)

	e.SetBlocks(20)
	second := e.Render(events, nil, 10.0)
	if len(second[0].Cells) != 20 {
		t.Fatalf("expected 20 cells after SetBlocks, got %d", len(second[0].Cells))
	}
	if &first[0] == &second[0] {
		t.Fatalf("expected cache invalidation after SetBlocks")
	}

	e.SetWindow(2.0)
	third := e.Render(events, nil, 10.0)
	if e.Window() != 2.0 {
		t.Fatalf("expected window update")
	}
	if len(third) == 0 {
		t.Fatalf("expected rows after window change")
	}
}

func TestQuantizeFill(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1, 1},
		{0.5, 0.5},
		{0.01, 1.0 / FillLevels},
		{0.99, 1},
	}
	for _, tc := range cases {
		if got := quantizeFill(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("quantizeFill(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
