package database

import (
	"database/sql"
	"fmt"
)

// User represents one observed user directory
type User struct {
	ID        string
	HasLabels bool
}

// InsertUsers batch-inserts users inside a single transaction
func (db *DB) InsertUsers(users []User) error {
	if len(users) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO users (id, has_labels) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare user insert: %w", err)
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.Exec(u.ID, u.HasLabels); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user inserts: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(id string) (*User, error) {
	var u User
	err := db.conn.QueryRow(
		"SELECT id, has_labels FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.HasLabels)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ListUserIDs returns all user ids in ascending order
func (db *DB) ListUserIDs() ([]string, error) {
	rows, err := db.conn.Query("SELECT id FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
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
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return ids, nil
}
