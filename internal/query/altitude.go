package query

import (
	"fmt"
	"sort"

	"geolife-pipeline/internal/database"
)

// UserAltitudeGain pairs a user with their total altitude gain in meters
type UserAltitudeGain struct {
	UserID string
	Gain   float64
}

// TopAltitudeGainByUser ranks users by the sum of positive altitude deltas
// between consecutive trackpoints within each activity, descending, top n,
// ties broken by ascending user id. Trackpoints whose altitude equals the
// unknown-altitude sentinel are removed from the sequence before
// differencing, so a valid point following a removed one diffs against the
// last retained point. This filtering belongs to the query path only; the
// ingestion path accumulates altitude gain unfiltered.
func (e *Engine) TopAltitudeGainByUser(n int) ([]UserAltitudeGain, error) {
	// Every stored user participates in the ranking, including those whose
	// gain is zero.
	userIDs, err := e.db.ListUserIDs()
	if err != nil {
		return nil, err
	}
	gains := make(map[string]float64, len(userIDs))
	for _, id := range userIDs {
		gains[id] = 0
	}

	rows, err := e.db.Conn().Query(`
		SELECT a.user_id, t.activity_id, t.altitude
		FROM trackpoints t
		JOIN activities a ON a.id = t.activity_id
		WHERE t.altitude != ?
		ORDER BY a.user_id, t.activity_id, t.timestamp
	`, database.SentinelAltitude)
	if err != nil {
		return nil, fmt.Errorf("failed to stream altitudes: %w", err)
	}
	defer rows.Close()

	var (
		curActivity int64 = -1
		prevAlt     float64
		havePrev    bool
	)
	for rows.Next() {
		var userID string
		var activityID int64
		var altitude float64
		if err := rows.Scan(&userID, &activityID, &altitude); err != nil {
			return nil, fmt.Errorf("failed to scan altitude: %w", err)
		}

		// Deltas never cross activity boundaries.
		if activityID != curActivity {
			curActivity = activityID
			havePrev = false
		}
		if havePrev && altitude > prevAlt {
			gains[userID] += altitude - prevAlt
		}
		prevAlt = altitude
		havePrev = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating altitudes: %w", err)
	}

	ranked := make([]UserAltitudeGain, 0, len(gains))
	for id, gain := range gains {
		ranked = append(ranked, UserAltitudeGain{UserID: id, Gain: gain})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Gain != ranked[j].Gain {
			return ranked[i].Gain > ranked[j].Gain
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}
