package database

import (
	"fmt"
)

// SentinelAltitude marks a trackpoint whose altitude is unknown.
const SentinelAltitude = -777.0

// Trackpoint is a single timestamped geographic sample belonging to exactly
// one activity
type Trackpoint struct {
	ID         int64
	ActivityID int64
	Lat        float64
	Lon        float64
	Altitude   float64 // meters, SentinelAltitude when unknown
	Timestamp  int64   // Unix timestamp
}

// InsertTrackpoints batch-inserts trackpoints inside a single transaction.
// Callers must pass the points in timestamp order: the ordering is guaranteed
// at write time and never re-derived afterwards.
func (db *DB) InsertTrackpoints(points []Trackpoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO trackpoints (activity_id, lat, lon, altitude, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare trackpoint insert: %w", err)
	}
	defer stmt.Close()

	for i := range points {
		p := &points[i]
		if _, err := stmt.Exec(p.ActivityID, p.Lat, p.Lon, p.Altitude, p.Timestamp); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert trackpoint for activity %d: %w", p.ActivityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trackpoint inserts: %w", err)
	}
	return nil
}

// ListTrackpointsByActivity returns an activity's trackpoints ordered by
// timestamp
func (db *DB) ListTrackpointsByActivity(activityID int64) ([]Trackpoint, error) {
	rows, err := db.conn.Query(`
		SELECT id, activity_id, lat, lon, altitude, timestamp
		FROM trackpoints
		WHERE activity_id = ?
		ORDER BY timestamp
	`, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trackpoints: %w", err)
	}
	defer rows.Close()

	var points []Trackpoint
	for rows.Next() {
		var p Trackpoint
		if err := rows.Scan(&p.ID, &p.ActivityID, &p.Lat, &p.Lon, &p.Altitude, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan trackpoint: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trackpoints: %w", err)
	}
	return points, nil
}
