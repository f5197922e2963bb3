// Package segment turns one raw trajectory file into an activity and its
// ordered trackpoints.
package segment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"geolife-pipeline/internal/database"
	"geolife-pipeline/internal/geo"
	"geolife-pipeline/internal/labels"
)

// MaxRawLines is the capacity guard: files with more raw records than this
// are skipped entirely. Skipping is a silent no-op, not an error.
const MaxRawLines = 2500

// TimeLayout is the combined date+time format of raw trajectory records.
const TimeLayout = "2006-01-02 15:04:05"

// fieldCount is the number of comma-separated fields per raw record:
// lat, lon, unused, altitude, unused, date, time.
const fieldCount = 7

// gapLimit marks an activity invalid when any consecutive pair of records is
// at least this far apart.
const gapLimit = 5 * time.Minute

// MalformedRecordError reports a raw record that could not be parsed. It
// aborts processing of the containing file only.
type MalformedRecordError struct {
	Line int
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

type point struct {
	lat, lon, altitude float64
	ts                 time.Time
}

// Segment parses the raw data lines of one trajectory file (header already
// stripped) into an activity for userID plus its trackpoints in record
// order. It returns (nil, nil, nil) when the file exceeds MaxRawLines or
// holds no records, and a *MalformedRecordError when any record fails to
// parse.
//
// In a single pass over consecutive record pairs it accumulates the total
// haversine distance, the sum of positive altitude deltas, and the validity
// flag. The altitude accumulation here deliberately does NOT filter the
// unknown-altitude sentinel; the query path does. The two behaviors differ
// on purpose so reported metrics stay comparable with historical output.
func Segment(lines []string, userID string, idx *labels.Index) (*database.Activity, []database.Trackpoint, error) {
	if len(lines) == 0 || len(lines) > MaxRawLines {
		return nil, nil, nil
	}

	activity := &database.Activity{
		UserID:  userID,
		IsValid: true,
	}

	points := make([]database.Trackpoint, 0, len(lines))
	var prev point
	var first, last time.Time

	for i, line := range lines {
		cur, err := parseRecord(line)
		if err != nil {
			return nil, nil, &MalformedRecordError{Line: i + 1, Err: err}
		}

		if i == 0 {
			first = cur.ts
		} else {
			if cur.ts.Sub(prev.ts) >= gapLimit {
				activity.IsValid = false
			}
			activity.TotalDistance += geo.Haversine(prev.lat, prev.lon, cur.lat, cur.lon)
			if delta := cur.altitude - prev.altitude; delta > 0 {
				activity.AltitudeGain += delta
			}
		}
		last = cur.ts

		points = append(points, database.Trackpoint{
			Lat:       cur.lat,
			Lon:       cur.lon,
			Altitude:  cur.altitude,
			Timestamp: cur.ts.Unix(),
		})
		prev = cur
	}

	activity.StartTime = first.Unix()
	activity.EndTime = last.Unix()

	if mode, ok := idx.Lookup(first, last); ok {
		activity.TransportationMode = &mode
	}

	return activity, points, nil
}

func parseRecord(line string) (point, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != fieldCount {
		return point{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}

	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return point{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return point{}, fmt.Errorf("invalid longitude: %w", err)
	}
	altitude, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return point{}, fmt.Errorf("invalid altitude: %w", err)
	}
	ts, err := time.ParseInLocation(TimeLayout, fields[5]+" "+fields[6], time.UTC)
	if err != nil {
		return point{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	return point{lat: lat, lon: lon, altitude: altitude, ts: ts}, nil
}
