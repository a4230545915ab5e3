package match

import (
	"math"
	"testing"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-4 {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}

func TestRatioKnownValues(t *testing.T) {
	approx(t, `Ratio("hello","hello")`, Ratio("hello", "hello"), 1)
	approx(t, `Ratio("pari","paris")`, Ratio("pari", "paris"), 8.0/9.0)
	approx(t, `Ratio("abc","xyz")`, Ratio("abc", "xyz"), 0)
	approx(t, `Ratio("","")`, Ratio("", ""), 1)
	approx(t, `Ratio("","x")`, Ratio("", "x"), 0)
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"paris", "pari"},
		{"photosynthesis", "fotosynthesis"},
		{"kitten", "sitting"},
		{"straße", "strasse"},
	}
	for _, p := range pairs {
		if Ratio(p[0], p[1]) != Ratio(p[1], p[0]) {
			t.Errorf("Ratio(%q, %q) not symmetric", p[0], p[1])
		}
	}
}

func TestRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"}, {"ab", "ba"}, {"abcdef", "abc"}, {"x", "xxxxxxxx"},
	}
	for _, p := range pairs {
		s := Ratio(p[0], p[1])
		if s < 0 || s > 1 {
			t.Errorf("Ratio(%q, %q) = %v outside [0, 1]", p[0], p[1], s)
		}
	}
}

func TestJaroWinklerKnownValues(t *testing.T) {
	approx(t, `JaroWinkler("martha","marhta")`, JaroWinkler("martha", "marhta"), 0.9611)
	approx(t, `JaroWinkler("dwayne","duane")`, JaroWinkler("dwayne", "duane"), 0.84)
	approx(t, `JaroWinkler("hello","hello")`, JaroWinkler("hello", "hello"), 1)
	approx(t, `JaroWinkler("","")`, JaroWinkler("", ""), 1)
	approx(t, `JaroWinkler("abc","")`, JaroWinkler("abc", ""), 0)
}

func TestJaroWinklerSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"martha", "marhta"},
		{"dixon", "dicksonx"},
		{"hallo", "hello"},
	}
	for _, p := range pairs {
		a, b := JaroWinkler(p[0], p[1]), JaroWinkler(p[1], p[0])
		if math.Abs(a-b) > 1e-12 {
			t.Errorf("JaroWinkler(%q, %q) not symmetric: %v vs %v", p[0], p[1], a, b)
		}
	}
}

func TestJaroWinklerPrefixBoost(t *testing.T) {
	// Shared prefix should score higher than the same edits elsewhere.
	withPrefix := JaroWinkler("prefixes", "prefixed")
	without := JaroWinkler("sefixerp", "defixerp")
	if withPrefix <= without {
		t.Errorf("expected prefix boost: %v <= %v", withPrefix, without)
	}
}
