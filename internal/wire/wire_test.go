package wire

import (
	"errors"
	"strings"
	"testing"

	"epqref/internal/request"
)

func TestEncodeBatchSortsAndTerminates(t *testing.T) {
	reqs := []request.Request{
		request.MustNew("XRayTransition", request.Pair{Key: "Z", Value: "26"}, request.Pair{Key: "trans", Value: "1"}),
		request.MustNew("Element", request.Pair{Key: "Z", Value: "26"}),
	}
	got := EncodeBatch(reqs)
	want := "Element Z=26\nXRayTransition Z=26 trans=1\n"
	if got != want {
		t.Fatalf("EncodeBatch = %q, want %q", got, want)
	}
}

func TestDecodeBatchTwoFrames(t *testing.T) {
	in := strings.Join([]string{
		"#BEGIN dump=Element Z=26",
		"Z,symbol",
		"26,Fe",
		"#END",
		"",
		"#BEGIN dump=Element Z=79",
		"Z,symbol",
		"79,Au",
		"#END",
	}, "\n")
	frames, err := DecodeBatch(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Request.Key() != "Element Z=26" {
		t.Fatalf("first frame request = %q", frames[0].Request.Key())
	}
	if got := frames[1].Table.Rows[0][1]; got != "Au" {
		t.Fatalf("second frame symbol = %q, want Au", got)
	}
}

func TestDecodeBatchEmptyTableIsValid(t *testing.T) {
	in := "#BEGIN dump=XRayTransition Z=1 trans=0\nZ,trans,exists\n#END\n"
	frames, err := DecodeBatch(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	table := frames[0].Table
	if len(table.Columns) != 3 || len(table.Rows) != 0 {
		t.Fatalf("empty table decoded as %d cols / %d rows", len(table.Columns), len(table.Rows))
	}
}

func TestDecodeBatchEchoedArgOrderDoesNotMatter(t *testing.T) {
	in := "#BEGIN dump=XRayTransition trans=1 Z=26\nZ,trans\n26,1\n#END\n"
	frames, err := DecodeBatch(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if got, want := frames[0].Request.Key(), "XRayTransition Z=26 trans=1"; got != want {
		t.Fatalf("frame key = %q, want %q", got, want)
	}
}

func TestDecodeBatchErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"unterminated frame", "#BEGIN dump=Element Z=26\nZ,symbol\n26,Fe\n"},
		{"end without begin", "#END\n"},
		{"nested begin", "#BEGIN dump=Element Z=26\n#BEGIN dump=Element Z=79\n"},
		{"frame without header", "#BEGIN dump=Element Z=26\n#END\n"},
		{"text outside frame", "garbage before frame\n"},
		{"row width mismatch", "#BEGIN dump=Element Z=26\nZ,symbol\n26\n#END\n"},
		{"bad frame header", "#BEGIN dump=Element Z\nZ\n1\n#END\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeBatch(strings.NewReader(tc.in))
			var pe *ProtocolError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ProtocolError, got %v", err)
			}
		})
	}
}

func TestDecodeSingle(t *testing.T) {
	table, err := DecodeSingle(strings.NewReader("\nZ,symbol\n26,Fe\n79,Au\n"))
	if err != nil {
		t.Fatalf("DecodeSingle: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if table.ColumnIndex("symbol") != 1 {
		t.Fatalf("symbol column index = %d", table.ColumnIndex("symbol"))
	}
}

func TestDecodeSingleMissingHeader(t *testing.T) {
	if _, err := DecodeSingle(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestRenderRoundTrip(t *testing.T) {
	in := "Z,symbol\n26,Fe\n"
	table, err := DecodeSingle(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeSingle: %v", err)
	}
	if table.Render() != in {
		t.Fatalf("Render = %q, want %q", table.Render(), in)
	}
}
