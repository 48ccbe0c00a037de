package request

import (
	"errors"
	"testing"
)

func TestNewCanonicalizesArgumentOrder(t *testing.T) {
	a, err := New("XRayTransition", []Pair{{"trans", "1"}, {"Z", "26"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New("XRayTransition", []Pair{{"Z", "26"}, {"trans", "1"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("permuted argument sets must compare equal: %v vs %v", a, b)
	}
	if a.Key() != b.Key() {
		t.Fatalf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	if got, want := a.WireLine(), "XRayTransition Z=26 trans=1"; got != want {
		t.Fatalf("wire line = %q, want %q", got, want)
	}
}

func TestNewRejectsDuplicateKeys(t *testing.T) {
	_, err := New("Element", []Pair{{"Z", "26"}, {"Z", "79"}})
	var dup *DuplicateArgError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateArgError, got %v", err)
	}
	if dup.Key != "Z" {
		t.Fatalf("error names key %q, want Z", dup.Key)
	}
}

func TestNewRejectsBadTokens(t *testing.T) {
	cases := []struct {
		name   string
		module string
		args   []Pair
	}{
		{"empty module", "", nil},
		{"module with space", "El ement", nil},
		{"key with equals", "Element", []Pair{{"Z=1", "2"}}},
		{"empty value", "Element", []Pair{{"Z", ""}}},
		{"value with whitespace", "Element", []Pair{{"Z", "2 6"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.module, tc.args); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestParseWireLineRoundTrip(t *testing.T) {
	orig := MustNew("AtomicShell", Pair{"Z", "26"}, Pair{"shell", "3"})
	parsed, err := ParseWireLine(orig.WireLine())
	if err != nil {
		t.Fatalf("ParseWireLine: %v", err)
	}
	if !parsed.Equal(orig) {
		t.Fatalf("round trip mismatch: %v vs %v", parsed, orig)
	}
}

func TestParseWireLineResortsEchoedOrder(t *testing.T) {
	// The oracle echoes arguments in whatever order it chose.
	parsed, err := ParseWireLine("XRayTransition trans=1 Z=26")
	if err != nil {
		t.Fatalf("ParseWireLine: %v", err)
	}
	if got, want := parsed.Key(), "XRayTransition Z=26 trans=1"; got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
}

func TestParseWireLineErrors(t *testing.T) {
	for _, line := range []string{"", "   ", "Element Z", "Element =26", "Element Z="} {
		if _, err := ParseWireLine(line); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
}

func TestSortByKey(t *testing.T) {
	reqs := []Request{
		MustNew("XRayTransition", Pair{"Z", "26"}, Pair{"trans", "1"}),
		MustNew("Element", Pair{"Z", "79"}),
		MustNew("Element", Pair{"Z", "26"}),
	}
	SortByKey(reqs)
	want := []string{"Element Z=26", "Element Z=79", "XRayTransition Z=26 trans=1"}
	for i, req := range reqs {
		if req.Key() != want[i] {
			t.Fatalf("position %d = %q, want %q", i, req.Key(), want[i])
		}
	}
}
