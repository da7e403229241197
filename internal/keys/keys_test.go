package keys

import "testing"

func TestNormalize(t *testing.T) {
	if got := Normalize("Left Shift"); got != "left shift" {
		t.Fatalf("expected lowercased key, got %q", got)
	}
	if got := Normalize("A"); got != "a" {
		t.Fatalf("expected 'a', got %q", got)
	}
}

func TestRank(t *testing.T) {
	if Rank("esc") != 0 {
		t.Fatalf("esc must rank first, got %d", Rank("esc"))
	}
	if Rank("Q") != Rank("q") {
		t.Fatalf("rank must be case-insensitive")
	}
	if Rank("q") >= Rank("a") {
		t.Fatalf("tab row must precede home row: q=%d a=%d", Rank("q"), Rank("a"))
	}
	if Rank("mystery") != unknownRank || Rank("volume up") != unknownRank {
		t.Fatalf("unknown keys must share the fallback rank")
	}
}

func TestSortCanonical(t *testing.T) {
	ks := []string{"space", "mystery", "a", "esc", "f12", "q", "another"}
	SortCanonical(ks)
	want := []string{"esc", "q", "a", "space", "f12", "another", "mystery"}
	for i := range want {
		if ks[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %v", i, want[i], ks)
		}
	}
}

func TestPairKey(t *testing.T) {
	if got := PairKey("f", "d"); got != "d+f" {
		t.Fatalf("pair key must be order-independent, got %q", got)
	}
	if PairKey("D", "F") != PairKey("f", "d") {
		t.Fatalf("pair key must be case-insensitive")
	}
	k1, k2 := SplitPair("d+f")
	if k1 != "d" || k2 != "f" {
		t.Fatalf("split mismatch: %q %q", k1, k2)
	}
}
