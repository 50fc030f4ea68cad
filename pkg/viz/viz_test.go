package viz

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"bitfeistel/pkg/permutation"
)

func TestDOT(t *testing.T) {
	p, err := permutation.Generate(8)
	if err != nil {
		t.Fatal(err)
	}
	dot := DOT(p)
	// forward(8) = [5 2 7 4 1 6 3 0]
	for _, edge := range []string{`"i5" -> "o0"`, `"i2" -> "o1"`, `"i0" -> "o7"`} {
		if !strings.Contains(dot, edge) {
			t.Errorf("Missing edge %s in:\n%s", edge, dot)
		}
	}
	if got := strings.Count(dot, "->"); got != 8 {
		t.Errorf("Expected 8 edges, got %d", got)
	}
	if !strings.HasPrefix(dot, "digraph") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("Malformed graph:\n%s", dot)
	}
}

func TestSVG(t *testing.T) {
	p, err := permutation.Generate(4)
	if err != nil {
		t.Fatal(err)
	}
	svg, err := SVG(context.Background(), p)
	if err != nil {
		t.Fatalf("SVG failed: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("Output is not SVG: %.80q", svg)
	}
}
