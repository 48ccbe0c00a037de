package report

import (
	"archive/tar"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"epqref/internal/request"
)

func TestNewSessionAllocatesDistinctDirs(t *testing.T) {
	w := New(t.TempDir())
	first, err := w.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	second, err := w.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if first.Dir == second.Dir || first.ID == second.ID {
		t.Fatalf("sessions collide: %q vs %q", first.Dir, second.Dir)
	}
	if !strings.HasPrefix(filepath.Base(first.Dir), "session_0001_") {
		t.Fatalf("unexpected dir name %q", filepath.Base(first.Dir))
	}
	if !strings.HasPrefix(filepath.Base(second.Dir), "session_0002_") {
		t.Fatalf("unexpected dir name %q", filepath.Base(second.Dir))
	}
}

func TestWriteRequests(t *testing.T) {
	w := New(t.TempDir())
	s, err := w.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	reqs := []request.Request{
		request.MustNew("Element", request.Pair{Key: "Z", Value: "26"}),
		request.MustNew("Element", request.Pair{Key: "Z", Value: "79"}),
	}
	if err := w.WriteRequests(s, reqs); err != nil {
		t.Fatalf("WriteRequests: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, "requests.txt"))
	if err != nil {
		t.Fatalf("read requests.txt: %v", err)
	}
	if string(data) != "Element Z=26\nElement Z=79\n" {
		t.Fatalf("requests.txt = %q", data)
	}
}

func TestWriteSummary(t *testing.T) {
	w := New(t.TempDir())
	s, err := w.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	summary := Summary{
		SessionID:    s.ID,
		RequestCount: 2,
		FrameCount:   1,
		RowCounts:    map[string]int{"Element Z=26": 1},
		Missing:      []string{"Element Z=79"},
	}
	if err := w.WriteSummary(s, summary); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, "summary.json"))
	if err != nil {
		t.Fatalf("read summary.json: %v", err)
	}
	var got Summary
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("parse summary.json: %v", err)
	}
	if got.SessionID != s.ID || got.RequestCount != 2 || got.Missing[0] != "Element Z=79" {
		t.Fatalf("summary round trip: %+v", got)
	}
}

func TestWriteArchive(t *testing.T) {
	w := New(t.TempDir())
	s, err := w.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := w.WriteText(s, "requests.txt", "Element Z=26\n"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if err := w.WriteText(s, "oracle_stdout.txt", "#BEGIN dump=Element Z=26\nZ\n26\n#END\n"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}

	name, codec, err := w.WriteArchive(s)
	if err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	if name != ArchiveName || codec != ArchiveCodec {
		t.Fatalf("archive = %q/%q", name, codec)
	}

	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	seen := map[string]bool{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar read: %v", err)
		}
		if hdr.Name == ArchiveName {
			t.Fatal("archive contains itself")
		}
		seen[hdr.Name] = true
		if _, err := io.Copy(io.Discard, tr); err != nil {
			t.Fatalf("tar copy: %v", err)
		}
	}
	if !seen["requests.txt"] || !seen["oracle_stdout.txt"] {
		t.Fatalf("archive entries: %v", seen)
	}
}
