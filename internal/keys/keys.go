// Package keys provides key name normalization and canonical ordering.
package keys

import (
	"sort"
	"strings"
)

// unknownRank places keys missing from the layout table after all known keys.
const unknownRank = 1000

// canonicalRank maps key names to their HHKB layout position, row by row.
var canonicalRank = map[string]int{
	"esc": 0,

	"1": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9,
	"0": 10, "-": 11, "=": 12, "backspace": 13,

	"tab": 20, "q": 21, "w": 22, "e": 23, "r": 24, "t": 25, "y": 26, "u": 27,
	"i": 28, "o": 29, "p": 30, "[": 31, "]": 32, "\\": 33,

	"left ctrl": 40, "a": 41, "s": 42, "d": 43, "f": 44, "g": 45, "h": 46,
	"j": 47, "k": 48, "l": 49, ";": 50, "'": 51, "enter": 52,

	"left shift": 60, "z": 61, "x": 62, "c": 63, "v": 64, "b": 65, "n": 66,
	"m": 67, ",": 68, ".": 69, "/": 70,

	"left alt": 80, "space": 81, "right alt": 82,

	"f1": 100, "f2": 101, "f3": 102, "f4": 103, "f5": 104, "f6": 105,
	"f7": 106, "f8": 107, "f9": 108, "f10": 109, "f11": 110, "f12": 111,
}

// Normalize lowercases a key identifier. Key names are treated as
// case-insensitive everywhere in the pipeline.
func Normalize(key string) string {
	return strings.ToLower(key)
}

// Rank returns the canonical layout position for a key. Unknown keys all
// share a rank past the known layout so they sort last.
func Rank(key string) int {
	if r, ok := canonicalRank[Normalize(key)]; ok {
		return r
	}
	return unknownRank
}

// SortCanonical sorts keys in place by layout position, unknown keys last,
// ties broken lexicographically for determinism.
func SortCanonical(ks []string) {
	sort.Slice(ks, func(i, j int) bool {
		ri, rj := Rank(ks[i]), Rank(ks[j])
		if ri != rj {
			return ri < rj
		}
		return ks[i] < ks[j]
	})
}

// PairKey builds the canonical identifier for an unordered key pair.
func PairKey(key1, key2 string) string {
	k1, k2 := Normalize(key1), Normalize(key2)
	if k2 < k1 {
		k1, k2 = k2, k1
	}
	return k1 + "+" + k2
}

// SplitPair is the inverse of PairKey.
func SplitPair(pair string) (string, string) {
	if i := strings.IndexByte(pair, '+'); i >= 0 {
		return pair[:i], pair[i+1:]
	}
	return pair, ""
}
