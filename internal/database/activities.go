package database

import (
	"database/sql"
	"fmt"
)

// Activity represents one contiguous trajectory segment for a user
type Activity struct {
	ID                 int64
	UserID             string
	StartTime          int64 // Unix timestamp
	EndTime            int64 // Unix timestamp
	TransportationMode *string
	TotalDistance      float64 // kilometers
	AltitudeGain       float64 // meters
	IsValid            bool
}

// InsertActivity inserts a new activity and fills in its generated ID. The
// ID must be known before the activity's trackpoints can be written.
func (db *DB) InsertActivity(a *Activity) error {
	result, err := db.conn.Exec(`
		INSERT INTO activities (
			user_id, start_time, end_time, transportation_mode,
			total_distance, altitude_gain, is_valid
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.UserID, a.StartTime, a.EndTime, a.TransportationMode,
		a.TotalDistance, a.AltitudeGain, a.IsValid)

	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get activity id: %w", err)
	}
	a.ID = id
	return nil
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(id int64) (*Activity, error) {
	var a Activity
	err := db.conn.QueryRow(`
		SELECT id, user_id, start_time, end_time, transportation_mode,
		       total_distance, altitude_gain, is_valid
		FROM activities WHERE id = ?
	`, id).Scan(
		&a.ID, &a.UserID, &a.StartTime, &a.EndTime, &a.TransportationMode,
		&a.TotalDistance, &a.AltitudeGain, &a.IsValid,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &a, nil
}

// ListActivitiesByUser returns a user's activities ordered by start time
func (db *DB) ListActivitiesByUser(userID string) ([]*Activity, error) {
	rows, err := db.conn.Query(`
		SELECT id, user_id, start_time, end_time, transportation_mode,
		       total_distance, altitude_gain, is_valid
		FROM activities
		WHERE user_id = ?
		ORDER BY start_time
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		var a Activity
		err := rows.Scan(
			&a.ID, &a.UserID, &a.StartTime, &a.EndTime, &a.TransportationMode,
			&a.TotalDistance, &a.AltitudeGain, &a.IsValid,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return activities, nil
}
