package store

import "testing"

func TestTrimJSON(t *testing.T) {
	cases := map[string]string{
		"[1,2,3]":     "1,2,3",
		"[[nested]]":  "nested",
		"no brackets": "no brackets",
	}
	for input, want := range cases {
		if got := trimJSON(input); got != want {
			t.Fatalf("trimJSON(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestVectorArrayLiteralRoundTrip(t *testing.T) {
	in := []float64{1.5, -2, 0, 3.25}
	lit, err := vectorToArrayLiteral(in)
	if err != nil {
		t.Fatalf("vectorToArrayLiteral: %v", err)
	}
	if lit != "{1.5,-2,0,3.25}" {
		t.Fatalf("literal = %q", lit)
	}
	out, err := arrayLiteralToVector(lit)
	if err != nil {
		t.Fatalf("arrayLiteralToVector: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestVectorArrayLiteralEmpty(t *testing.T) {
	lit, err := vectorToArrayLiteral(nil)
	if err != nil {
		t.Fatalf("vectorToArrayLiteral(nil): %v", err)
	}
	if lit != "{}" {
		t.Fatalf("literal = %q, want {}", lit)
	}
	out, err := arrayLiteralToVector(lit)
	if err != nil {
		t.Fatalf("arrayLiteralToVector: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0", len(out))
	}
}
