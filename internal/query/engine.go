// Package query implements the read-only analytic operations over the
// trajectory store. Every operation returns an explicit empty or zero result
// when no data matches; absence of data is never an error.
package query

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"geolife-pipeline/internal/database"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Engine answers the analytic query suite over a store. All operations are
// pure reads; callers must serialize them against store resets.
type Engine struct {
	db *database.DB
}

// NewEngine creates a query engine over the given store
func NewEngine(db *database.DB) *Engine {
	return &Engine{db: db}
}

// Counts holds the per-collection entry counts
type Counts struct {
	Users       int64
	Activities  int64
	Trackpoints int64
}

// CountEntries returns how many users, activities and trackpoints are stored
func (e *Engine) CountEntries() (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int64
	}{
		{"users", &c.Users},
		{"activities", &c.Activities},
		{"trackpoints", &c.Trackpoints},
	} {
		if err := e.db.Conn().QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dst); err != nil {
			return Counts{}, fmt.Errorf("failed to count %s: %w", q.table, err)
		}
	}
	return c, nil
}

// AverageActivitiesPerUser returns the mean of per-user activity counts over
// users that have at least one activity. The second return value is false
// when no activities exist at all.
func (e *Engine) AverageActivitiesPerUser() (float64, bool, error) {
	var avg *float64
	err := e.db.Conn().QueryRow(`
		SELECT AVG(cnt) FROM (
			SELECT COUNT(*) AS cnt FROM activities GROUP BY user_id
		)
	`).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("failed to average activities per user: %w", err)
	}
	if avg == nil {
		return 0, false, nil
	}
	return *avg, true, nil
}

// UserActivityCount pairs a user with their activity count
type UserActivityCount struct {
	UserID string
	Count  int64
}

// TopUsersByActivityCount ranks users by activity count descending, ties
// broken by ascending user id so the order is total.
func (e *Engine) TopUsersByActivityCount(n int) ([]UserActivityCount, error) {
	rows, err := e.db.Conn().Query(`
		SELECT user_id, COUNT(*) AS cnt
		FROM activities
		GROUP BY user_id
		ORDER BY cnt DESC, user_id ASC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to rank users by activity count: %w", err)
	}
	defer rows.Close()

	var result []UserActivityCount
	for rows.Next() {
		var uc UserActivityCount
		if err := rows.Scan(&uc.UserID, &uc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan user activity count: %w", err)
		}
		result = append(result, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user activity counts: %w", err)
	}
	return result, nil
}

// UsersWithMode returns the distinct ids of users having at least one
// activity with the given transportation mode, in ascending order
func (e *Engine) UsersWithMode(mode string) ([]string, error) {
	rows, err := e.db.Conn().Query(`
		SELECT DISTINCT user_id
		FROM activities
		WHERE transportation_mode = ?
		ORDER BY user_id
	`, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to query users with mode %s: %w", mode, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users with mode: %w", err)
	}
	return ids, nil
}

// ModeCount pairs a transportation mode with its activity count
type ModeCount struct {
	Mode  string
	Count int64
}

// ModeHistogram counts activities per non-null transportation mode, sorted
// by count descending, ties broken by mode ascending.
func (e *Engine) ModeHistogram() ([]ModeCount, error) {
	rows, err := e.db.Conn().Query(`
		SELECT transportation_mode, COUNT(*) AS cnt
		FROM activities
		WHERE transportation_mode IS NOT NULL
		GROUP BY transportation_mode
		ORDER BY cnt DESC, transportation_mode ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to build mode histogram: %w", err)
	}
	defer rows.Close()

	var result []ModeCount
	for rows.Next() {
		var mc ModeCount
		if err := rows.Scan(&mc.Mode, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan mode count: %w", err)
		}
		result = append(result, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mode counts: %w", err)
	}
	return result, nil
}

// YearCount holds a year and an aggregate over the activities starting in it
type YearCount struct {
	Year  int
	Count int64
}

// YearWithMostActivities returns the year (of activity start time, UTC) with
// the highest activity count. Ties resolve to the smallest year. The second
// return value is false when no activities exist.
func (e *Engine) YearWithMostActivities() (YearCount, bool, error) {
	var yc YearCount
	err := e.db.Conn().QueryRow(`
		SELECT CAST(strftime('%Y', start_time, 'unixepoch') AS INTEGER) AS year, COUNT(*) AS cnt
		FROM activities
		GROUP BY year
		ORDER BY cnt DESC, year ASC
		LIMIT 1
	`).Scan(&yc.Year, &yc.Count)
	if err != nil {
		if isNoRows(err) {
			return YearCount{}, false, nil
		}
		return YearCount{}, false, fmt.Errorf("failed to find year with most activities: %w", err)
	}
	return yc, true, nil
}

// YearHours holds a year and the summed activity duration in hours
type YearHours struct {
	Year  int
	Hours float64
}

// YearWithMostHours returns the year (of activity start time, UTC) with the
// highest summed end-start duration in hours. Ties resolve to the smallest
// year. The second return value is false when no activities exist.
func (e *Engine) YearWithMostHours() (YearHours, bool, error) {
	var yh YearHours
	err := e.db.Conn().QueryRow(`
		SELECT CAST(strftime('%Y', start_time, 'unixepoch') AS INTEGER) AS year,
		       SUM((end_time - start_time) / 3600.0) AS hours
		FROM activities
		GROUP BY year
		ORDER BY hours DESC, year ASC
		LIMIT 1
	`).Scan(&yh.Year, &yh.Hours)
	if err != nil {
		if isNoRows(err) {
			return YearHours{}, false, nil
		}
		return YearHours{}, false, fmt.Errorf("failed to find year with most hours: %w", err)
	}
	return yh, true, nil
}

// UserMode pairs a user with their most used transportation mode
type UserMode struct {
	UserID string
	Mode   string
}

// MostUsedModePerUser returns, for every user with at least one non-null-mode
// activity, the mode with the highest activity count. Ties resolve to the
// alphabetically smallest mode. Result is sorted by user id ascending.
func (e *Engine) MostUsedModePerUser() ([]UserMode, error) {
	rows, err := e.db.Conn().Query(`
		SELECT user_id, transportation_mode, COUNT(*) AS cnt
		FROM activities
		WHERE transportation_mode IS NOT NULL
		GROUP BY user_id, transportation_mode
		ORDER BY user_id ASC, cnt DESC, transportation_mode ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query modes per user: %w", err)
	}
	defer rows.Close()

	var result []UserMode
	lastUser := ""
	for rows.Next() {
		var userID, mode string
		var cnt int64
		if err := rows.Scan(&userID, &mode, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan user mode: %w", err)
		}
		// First row per user wins: rows arrive count-descending then
		// mode-ascending within each user.
		if userID != lastUser {
			result = append(result, UserMode{UserID: userID, Mode: mode})
			lastUser = userID
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user modes: %w", err)
	}
	return result, nil
}

// yearBounds returns the [start, end) Unix range covering the UTC year
func yearBounds(year int) (int64, int64) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)
	return start.Unix(), end.Unix()
}
