package substitution

import (
	"testing"

	"github.com/standardbeagle/geocoder/internal/normalize"
)

func TestApplySubsCartesianProduct(t *testing.T) {
	dict := ParseDict("avenue|ave|av\nnorth|n")

	permutations := ApplySubs(nil, []string{"fremont", "avenue", "north"}, dict)
	if len(permutations) != 3*1*2 {
		t.Fatalf("expected 6 permutations, got %d: %v", len(permutations), permutations)
	}
}

func TestPermuteRoadFremontAve(t *testing.T) {
	reg := NewRegistry()
	reg.Register("en", ParseDict("avenue|ave\nnorth|n"))

	permutations := reg.PermuteRoad("Fremont Ave N")
	if len(permutations) != 4 {
		t.Fatalf("expected 4 permutations for 'fremont ave n', got %d: %v", len(permutations), permutations)
	}
}

func TestPermuteRoadNoDictionaryFallsBackToSanitized(t *testing.T) {
	reg := NewRegistry()
	permutations := reg.PermuteRoad("Main Street")
	if len(permutations) != 1 || permutations[0] != "main street" {
		t.Fatalf("expected fallback to sanitized input, got %v", permutations)
	}
}

// TestPermuteRoadFremontAveNProducesExactlyThreePermutations mirrors
// the original's own substitutions.rs test: with a street-type
// dictionary covering only the road's street-type token (the real
// en/street_types.txt shape — "ave" has synonyms, "fremont" and "n" do
// not), "fremont ave n" must expand to exactly 3 distinct spellings.
func TestPermuteRoadFremontAveNProducesExactlyThreePermutations(t *testing.T) {
	reg := NewRegistry()
	reg.Register("en", ParseDict("ave|avenue|av"))

	permutations := reg.PermuteRoad("Fremont Ave N")
	if len(permutations) != 3 {
		t.Fatalf("expected exactly 3 permutations for %q, got %d: %v", "fremont ave n", len(permutations), permutations)
	}
	assertDistinct(t, permutations)
	assertSanitizedRoundTrip(t, permutations)
}

// TestPermuteRoadCarrerDeVillarroelProducesExactlyThreePermutations is
// the Catalan counterpart from the same original test: "carrer" (the
// street-type token) carries the synonym class, "de" and "villarroel"
// do not.
func TestPermuteRoadCarrerDeVillarroelProducesExactlyThreePermutations(t *testing.T) {
	reg := NewRegistry()
	reg.Register("ca", ParseDict("carrer|carretera|cr"))

	permutations := reg.PermuteRoad("Carrer de Villarroel")
	if len(permutations) != 3 {
		t.Fatalf("expected exactly 3 permutations for %q, got %d: %v", "carrer de villarroel", len(permutations), permutations)
	}
	assertDistinct(t, permutations)
	assertSanitizedRoundTrip(t, permutations)
}

func assertDistinct(t *testing.T, permutations []string) {
	t.Helper()
	seen := make(map[string]bool, len(permutations))
	for _, p := range permutations {
		if seen[p] {
			t.Fatalf("expected all permutations to be distinct, found duplicate %q in %v", p, permutations)
		}
		seen[p] = true
	}
}

// assertSanitizedRoundTrip checks spec's round-trip invariant: every
// permutation, run back through sanitization, equals itself.
func assertSanitizedRoundTrip(t *testing.T, permutations []string) {
	t.Helper()
	for _, p := range permutations {
		if got := normalize.Sanitize(p); got != p {
			t.Fatalf("expected sanitized round-trip for %q, got %q", p, got)
		}
	}
}
