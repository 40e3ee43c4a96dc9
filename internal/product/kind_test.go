package product

import "testing"

// allKinds must be extended whenever a new Kind constant is added; the
// test below enumerates it so a kind without its own String() case
// fails loudly. Switches elsewhere in the codebase are not checked here.
var allKinds = []Kind{KindSimple, KindPhantom, KindNormal, KindCommingled}

func TestKindStringCoversEveryVariant(t *testing.T) {
	seen := make(map[string]bool)
	for _, k := range allKinds {
		s := k.String()
		if s == "unknown" {
			t.Fatalf("Kind %d has no String() case", k)
		}
		if seen[s] {
			t.Fatalf("Kind %d produced duplicate label %q", k, s)
		}
		seen[s] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected exactly 4 distinct kind labels, got %d: %v", len(seen), seen)
	}
}

func TestIsSimpleAndIsNormalBOM(t *testing.T) {
	for _, k := range allKinds {
		p := Product{Kind: k}
		wantSimple := k == KindSimple
		wantNormal := k == KindNormal
		if p.IsSimple() != wantSimple {
			t.Errorf("Kind %v: IsSimple() = %v, want %v", k, p.IsSimple(), wantSimple)
		}
		if p.IsNormalBOM() != wantNormal {
			t.Errorf("Kind %v: IsNormalBOM() = %v, want %v", k, p.IsNormalBOM(), wantNormal)
		}
	}
}
