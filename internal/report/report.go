// Package report persists session artifacts: the batched requests, the
// oracle's raw streams, and a JSON summary, optionally archived for
// upload.
package report

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"epqref/internal/request"
	"epqref/internal/runinfo"
	"epqref/internal/util"
)

// Writer creates session directories under OutputDir.
type Writer struct {
	OutputDir  string
	sessionSeq int
}

// Session describes one report directory.
type Session struct {
	ID  string
	Dir string
}

// Summary captures the persisted metadata for one golden-test session.
type Summary struct {
	SessionID      string            `json:"session_id"`
	Timestamp      string            `json:"timestamp"`
	DurationMS     int64             `json:"duration_ms"`
	OracleCommand  string            `json:"oracle_command"`
	RequestCount   int               `json:"request_count"`
	FrameCount     int               `json:"frame_count"`
	RowCounts      map[string]int    `json:"row_counts,omitempty"`
	Missing        []string          `json:"missing_requests,omitempty"`
	Error          string            `json:"error,omitempty"`
	ArchiveName    string            `json:"archive_name,omitempty"`
	ArchiveCodec   string            `json:"archive_codec,omitempty"`
	UploadLocation string            `json:"upload_location,omitempty"`
	RunInfo        *runinfo.BasicInfo `json:"run_info,omitempty"`
}

// Archive artifact constants.
const (
	ArchiveName  = "session.tar.zst"
	ArchiveCodec = "zstd"
)

// New creates a writer rooted at outputDir.
func New(outputDir string) *Writer {
	return &Writer{OutputDir: outputDir}
}

// NewSession allocates a new session directory.
func (w *Writer) NewSession() (Session, error) {
	w.sessionSeq++
	id := uuid.New().String()
	if v7, err := uuid.NewV7(); err == nil {
		id = v7.String()
	}
	dir := filepath.Join(w.OutputDir, fmt.Sprintf("session_%04d_%s", w.sessionSeq, id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Session{}, err
	}
	return Session{ID: id, Dir: dir}, nil
}

// WriteRequests writes the batched wire lines, one per line, in canonical
// order.
func (w *Writer) WriteRequests(s Session, reqs []request.Request) error {
	var b strings.Builder
	for _, req := range reqs {
		b.WriteString(req.WireLine())
		b.WriteByte('\n')
	}
	return w.WriteText(s, "requests.txt", b.String())
}

// WriteText writes raw text content into the session directory.
func (w *Writer) WriteText(s Session, name, content string) error {
	return os.WriteFile(filepath.Join(s.Dir, name), []byte(content), 0o644)
}

// WriteSummary writes summary.json into the session directory.
func (w *Writer) WriteSummary(s Session, summary Summary) error {
	f, err := os.Create(filepath.Join(s.Dir, "summary.json"))
	if err != nil {
		return err
	}
	defer util.CloseWithErr(f, "summary output")
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(summary)
}

// WriteArchive packs the session directory into a zstd-compressed tar,
// excluding the archive file itself.
func (w *Writer) WriteArchive(s Session) (name string, codec string, err error) {
	archivePath := filepath.Join(s.Dir, ArchiveName)
	if removeErr := os.Remove(archivePath); removeErr != nil && !os.IsNotExist(removeErr) {
		return "", "", removeErr
	}
	defer func() {
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()

	file, err := os.Create(archivePath)
	if err != nil {
		return "", "", err
	}
	defer util.CloseWithErr(file, "archive output")

	zw, err := zstd.NewWriter(file)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if closeErr := zw.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	tw := tar.NewWriter(zw)
	defer func() {
		if closeErr := tw.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return "", "", err
	}
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == ArchiveName {
			continue
		}
		if err = addFile(tw, filepath.Join(s.Dir, entry.Name()), entry.Name()); err != nil {
			return "", "", err
		}
	}
	return ArchiveName, ArchiveCodec, nil
}

func addFile(tw *tar.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer util.CloseWithErr(f, "archive input")
	_, err = io.Copy(tw, f)
	return err
}
