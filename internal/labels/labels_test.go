package labels

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const header = "Start Time\tEnd Time\tTransportation Mode\n"

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("Failed to parse test time %q: %v", s, err)
	}
	return ts
}

func TestLoadAndLookup(t *testing.T) {
	src := header +
		"2008/04/02 11:24:21\t2008/04/02 11:50:45\tbus\n" +
		"2008/04/03 08:00:00\t2008/04/03 08:30:00\twalk\n"

	idx, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Failed to load labels: %v", err)
	}

	if idx.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", idx.Len())
	}

	mode, ok := idx.Lookup(mustTime(t, "2008/04/02 11:24:21"), mustTime(t, "2008/04/02 11:50:45"))
	if !ok {
		t.Fatal("Expected lookup to match")
	}
	if mode != "bus" {
		t.Errorf("Expected mode 'bus', got %q", mode)
	}
}

func TestLookupRequiresBothEndpoints(t *testing.T) {
	// Two windows sharing a start timestamp but differing in end time. A
	// trajectory whose end matches neither must get no mode.
	src := header +
		"2008/04/02 11:24:21\t2008/04/02 11:50:45\tbus\n" +
		"2008/04/02 11:24:21\t2008/04/02 12:10:00\ttaxi\n"

	idx, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Failed to load labels: %v", err)
	}

	start := mustTime(t, "2008/04/02 11:24:21")

	if _, ok := idx.Lookup(start, mustTime(t, "2008/04/02 11:55:00")); ok {
		t.Error("Expected start-only match to miss")
	}

	mode, ok := idx.Lookup(start, mustTime(t, "2008/04/02 12:10:00"))
	if !ok || mode != "taxi" {
		t.Errorf("Expected exact window to resolve to 'taxi', got %q (ok=%v)", mode, ok)
	}
}

func TestLoadMalformedRow(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"MissingField", header + "2008/04/02 11:24:21\tbus\n"},
		{"BadStartTime", header + "not-a-time\t2008/04/02 11:50:45\tbus\n"},
		{"BadEndTime", header + "2008/04/02 11:24:21\tnope\tbus\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.src))
			if err == nil {
				t.Fatal("Expected parse error")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Expected *ParseError, got %T: %v", err, err)
			}
			if parseErr.Line != 2 {
				t.Errorf("Expected error at line 2, got %d", parseErr.Line)
			}
		})
	}
}

func TestLoadSkipsHeaderAndBlankLines(t *testing.T) {
	src := header + "\n2008/04/02 11:24:21\t2008/04/02 11:50:45\tbus\n\n"
	idx, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Failed to load labels: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", idx.Len())
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := NewIndex()
	if _, ok := idx.Lookup(time.Now(), time.Now()); ok {
		t.Error("Expected empty index lookup to miss")
	}
}
