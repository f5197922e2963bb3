package database

// Schema contains all SQL statements for creating tables and indexes
const Schema = `
-- Users table: one row per observed user directory
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    has_labels BOOLEAN NOT NULL DEFAULT 0
);

-- Activities table: one contiguous trajectory segment per source file
CREATE TABLE IF NOT EXISTS activities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,

    start_time INTEGER NOT NULL,  -- Unix timestamp of the first raw record
    end_time INTEGER NOT NULL,    -- Unix timestamp of the last raw record

    transportation_mode TEXT,     -- NULL when no label window matched exactly
    total_distance REAL NOT NULL DEFAULT 0,  -- kilometers
    altitude_gain REAL NOT NULL DEFAULT 0,   -- meters
    is_valid BOOLEAN NOT NULL DEFAULT 1,

    FOREIGN KEY (user_id) REFERENCES users(id)
);

-- Trackpoints table: timestamped geographic samples, ordered within an
-- activity by timestamp at write time
CREATE TABLE IF NOT EXISTS trackpoints (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    activity_id INTEGER NOT NULL,

    lat REAL NOT NULL,
    lon REAL NOT NULL,
    altitude REAL NOT NULL,  -- -777 means unknown
    timestamp INTEGER NOT NULL,

    FOREIGN KEY (activity_id) REFERENCES activities(id)
);

-- Equality-lookup indexes
CREATE INDEX IF NOT EXISTS idx_activities_user_id ON activities(user_id);
CREATE INDEX IF NOT EXISTS idx_trackpoints_activity_id ON trackpoints(activity_id);
CREATE INDEX IF NOT EXISTS idx_trackpoints_activity_time ON trackpoints(activity_id, timestamp);
`
