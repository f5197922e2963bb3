package query

import (
	"fmt"
	"sort"
)

// invalidGapSeconds marks an activity invalid when two consecutive
// trackpoints are at least this far apart.
const invalidGapSeconds = 300

// UserInvalidCount pairs a user with their number of invalid activities
type UserInvalidCount struct {
	UserID  string
	Invalid int64
}

// InvalidActivityAudit recomputes validity from stored trackpoints for every
// activity with at least two trackpoints belonging to a labeled user, and
// counts invalid activities per user. This is a consistency check against
// the is_valid flag written at ingestion time. Users without invalid
// activities are omitted; the result is sorted by user id ascending.
func (e *Engine) InvalidActivityAudit() ([]UserInvalidCount, error) {
	rows, err := e.db.Conn().Query(`
		SELECT a.user_id, t.activity_id, t.timestamp
		FROM trackpoints t
		JOIN activities a ON a.id = t.activity_id
		JOIN users u ON u.id = a.user_id
		WHERE u.has_labels = 1
		ORDER BY a.user_id, t.activity_id, t.timestamp
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to stream audit trackpoints: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)

	var (
		curActivity int64 = -1
		curUser     string
		curPoints   int
		curInvalid  bool
		prevTS      int64
	)
	flush := func() {
		if curActivity >= 0 && curPoints >= 2 && curInvalid {
			counts[curUser]++
		}
	}

	for rows.Next() {
		var userID string
		var activityID, ts int64
		if err := rows.Scan(&userID, &activityID, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan audit trackpoint: %w", err)
		}

		if activityID != curActivity {
			flush()
			curActivity = activityID
			curUser = userID
			curPoints = 0
			curInvalid = false
		}
		if curPoints > 0 && ts-prevTS >= invalidGapSeconds {
			curInvalid = true
		}
		prevTS = ts
		curPoints++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit trackpoints: %w", err)
	}
	flush()

	result := make([]UserInvalidCount, 0, len(counts))
	for id, n := range counts {
		result = append(result, UserInvalidCount{UserID: id, Invalid: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}
