package query

import (
	"fmt"

	"geolife-pipeline/internal/geo"
)

// DistanceResult is the outcome of a per-activity distance aggregation
type DistanceResult struct {
	TotalKm    float64
	Activities int // matching activities
	TooFewData int // matching activities with fewer than two trackpoints
}

// TotalDistanceForUserModeYear sums consecutive-trackpoint haversine
// distances over the user's activities with the given mode starting in the
// given UTC year. Activities with fewer than two trackpoints contribute zero
// and are counted in TooFewData. Trackpoints are consumed in one stream
// ordered by activity and timestamp, so per-pair distances never cross
// activity boundaries.
func (e *Engine) TotalDistanceForUserModeYear(userID, mode string, year int) (DistanceResult, error) {
	from, to := yearBounds(year)

	var result DistanceResult
	err := e.db.Conn().QueryRow(`
		SELECT COUNT(*) FROM activities
		WHERE user_id = ? AND transportation_mode = ?
		  AND start_time >= ? AND start_time < ?
	`, userID, mode, from, to).Scan(&result.Activities)
	if err != nil {
		return DistanceResult{}, fmt.Errorf("failed to count matching activities: %w", err)
	}
	if result.Activities == 0 {
		return result, nil
	}

	rows, err := e.db.Conn().Query(`
		SELECT t.activity_id, t.lat, t.lon
		FROM trackpoints t
		WHERE t.activity_id IN (
			SELECT id FROM activities
			WHERE user_id = ? AND transportation_mode = ?
			  AND start_time >= ? AND start_time < ?
		)
		ORDER BY t.activity_id, t.timestamp
	`, userID, mode, from, to)
	if err != nil {
		return DistanceResult{}, fmt.Errorf("failed to stream trackpoints: %w", err)
	}
	defer rows.Close()

	var (
		curActivity      int64 = -1
		curPoints        int
		sufficient       int
		prevLat, prevLon float64
	)
	flush := func() {
		if curActivity >= 0 && curPoints >= 2 {
			sufficient++
		}
	}

	for rows.Next() {
		var activityID int64
		var lat, lon float64
		if err := rows.Scan(&activityID, &lat, &lon); err != nil {
			return DistanceResult{}, fmt.Errorf("failed to scan trackpoint: %w", err)
		}

		if activityID != curActivity {
			flush()
			curActivity = activityID
			curPoints = 0
		}
		if curPoints > 0 {
			result.TotalKm += geo.Haversine(prevLat, prevLon, lat, lon)
		}
		prevLat, prevLon = lat, lon
		curPoints++
	}
	if err := rows.Err(); err != nil {
		return DistanceResult{}, fmt.Errorf("error iterating trackpoints: %w", err)
	}
	flush()

	// Matching activities with zero trackpoints never appear in the stream;
	// they still count as insufficient data.
	result.TooFewData = result.Activities - sufficient
	return result, nil
}
