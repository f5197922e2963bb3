// Package labels maps exact labeled time windows to transportation modes.
//
// A label file is tab-separated with a header row, one window per line:
//
//	Start Time\tEnd Time\tTransportation Mode
//	2008/04/02 11:24:21\t2008/04/02 11:50:45\tbus
//
// The index is scoped to a single user's ingestion; there is no global state.
package labels

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used in label files.
const TimeLayout = "2006/01/02 15:04:05"

// ParseError reports a malformed label row. The caller is expected to drop
// the whole index for that user and continue with an empty one.
type ParseError struct {
	Line int
	Row  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed label row at line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type entry struct {
	end  int64
	mode string
}

// Index is a per-user lookup from an exact (start, end) window to the
// transportation mode labeled for it.
type Index struct {
	byStart map[int64]entry
}

// NewIndex returns an empty index. Lookups against it always miss, which is
// the fallback when a user's label file is absent or malformed.
func NewIndex() *Index {
	return &Index{byStart: make(map[int64]entry)}
}

// Load parses a tab-separated label source into an index. The header row is
// skipped. Any malformed row aborts the load with a *ParseError.
func Load(r io.Reader) (*Index, error) {
	idx := NewIndex()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 || line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, &ParseError{Line: lineNo, Row: line, Err: fmt.Errorf("expected 3 fields, got %d", len(fields))}
		}

		start, err := time.ParseInLocation(TimeLayout, fields[0], time.UTC)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Row: line, Err: fmt.Errorf("invalid start time: %w", err)}
		}
		end, err := time.ParseInLocation(TimeLayout, fields[1], time.UTC)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Row: line, Err: fmt.Errorf("invalid end time: %w", err)}
		}

		idx.byStart[start.Unix()] = entry{end: end.Unix(), mode: fields[2]}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read label source: %w", err)
	}

	return idx, nil
}

// Lookup returns the mode for the window only when both start and end match
// an indexed entry exactly. A start-only match does not qualify: two labeled
// windows may share a start time, and matching on start alone could attribute
// the wrong mode.
func (idx *Index) Lookup(start, end time.Time) (string, bool) {
	e, ok := idx.byStart[start.Unix()]
	if !ok || e.end != end.Unix() {
		return "", false
	}
	return e.mode, true
}

// Len returns the number of indexed windows.
func (idx *Index) Len() int {
	return len(idx.byStart)
}
