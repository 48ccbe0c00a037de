// Package wire implements the text protocol spoken with the dump oracle:
// newline-separated request lines in, framed CSV tables out.
package wire

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"epqref/internal/request"
)

const (
	beginMarker = "#BEGIN dump="
	endMarker   = "#END"
)

// Table holds one dump module's raw output: an ordered header and rows of
// unparsed string fields. A header with zero rows is a valid table and
// means the reference set is empty; it is distinct from a missing frame.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Frame pairs the request a frame echoed with its decoded table.
type Frame struct {
	Request request.Request
	Table   Table
}

// ProtocolError reports malformed oracle output. It is as severe as a
// process failure: it means the oracle and this codec disagree on the
// frame grammar.
type ProtocolError struct {
	Line   int
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Line <= 0 {
		return "oracle output: " + e.Reason
	}
	return fmt.Sprintf("oracle output line %d: %s", e.Line, e.Reason)
}

// EncodeBatch renders requests as oracle stdin: one wire line each in
// canonical order, terminated by a newline. Order only affects log
// readability, not correctness.
func EncodeBatch(reqs []request.Request) string {
	sorted := make([]request.Request, len(reqs))
	copy(sorted, reqs)
	request.SortByKey(sorted)
	var b strings.Builder
	for _, req := range sorted {
		b.WriteString(req.WireLine())
		b.WriteByte('\n')
	}
	return b.String()
}

// DecodeBatch parses concatenated frames:
//
//	#BEGIN dump=<module> <k>=<v> ...
//	col1,col2,...
//	v1,v2,...
//	#END
//
// Blank lines between frames are ignored. Each frame yields one Frame; the
// request is rebuilt through the wire-line parser, so the echoed argument
// order does not matter.
func DecodeBatch(r io.Reader) ([]Frame, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		frames  []Frame
		current *Frame
		lineNo  int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.HasPrefix(line, beginMarker):
			if current != nil {
				return nil, &ProtocolError{Line: lineNo, Reason: "nested #BEGIN"}
			}
			req, err := request.ParseWireLine(strings.TrimPrefix(line, beginMarker))
			if err != nil {
				return nil, &ProtocolError{Line: lineNo, Reason: fmt.Sprintf("bad frame header: %v", err)}
			}
			current = &Frame{Request: req}
		case line == endMarker:
			if current == nil {
				return nil, &ProtocolError{Line: lineNo, Reason: "#END without #BEGIN"}
			}
			if current.Table.Columns == nil {
				return nil, &ProtocolError{Line: lineNo, Reason: "frame closed before header row"}
			}
			frames = append(frames, *current)
			current = nil
		case current != nil:
			if err := appendLine(&current.Table, line); err != nil {
				return nil, &ProtocolError{Line: lineNo, Reason: err.Error()}
			}
		case strings.TrimSpace(line) == "":
			// Padding between frames.
		default:
			return nil, &ProtocolError{Line: lineNo, Reason: fmt.Sprintf("unexpected text outside frame: %q", line)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		return nil, &ProtocolError{Line: lineNo, Reason: "unterminated #BEGIN"}
	}
	return frames, nil
}

// DecodeSingle parses the unframed CSV emitted by a single-mode
// invocation: header row first, then data rows.
func DecodeSingle(r io.Reader) (Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		table  Table
		lineNo int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if table.Columns == nil && strings.TrimSpace(line) == "" {
			continue
		}
		if err := appendLine(&table, line); err != nil {
			return Table{}, &ProtocolError{Line: lineNo, Reason: err.Error()}
		}
	}
	if err := scanner.Err(); err != nil {
		return Table{}, err
	}
	if table.Columns == nil {
		return Table{}, &ProtocolError{Line: lineNo, Reason: "missing header row"}
	}
	return table, nil
}

// appendLine adds a comma-joined line to the table, header first. Fields
// are opaque: the protocol guarantees values never contain commas, so no
// quoting is honored.
func appendLine(t *Table, line string) error {
	fields := strings.Split(line, ",")
	if t.Columns == nil {
		t.Columns = fields
		return nil
	}
	if len(fields) != len(t.Columns) {
		return fmt.Errorf("row has %d fields, header has %d", len(fields), len(t.Columns))
	}
	t.Rows = append(t.Rows, fields)
	return nil
}

// ColumnIndex returns the position of a named column, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Render writes the table back out as header + comma-joined rows, the
// exact shape the oracle emits inside a frame.
func (t Table) Render() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Columns, ","))
	b.WriteByte('\n')
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}
