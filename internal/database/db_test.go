package database

import (
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Init(); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	return db
}

func strPtr(s string) *string {
	return &s
}

func TestDatabaseOperations(t *testing.T) {
	db := openTestDB(t)

	t.Run("InsertAndGetUsers", func(t *testing.T) {
		users := []User{
			{ID: "010", HasLabels: true},
			{ID: "011", HasLabels: false},
		}
		if err := db.InsertUsers(users); err != nil {
			t.Fatalf("Failed to insert users: %v", err)
		}

		u, err := db.GetUser("010")
		if err != nil {
			t.Fatalf("Failed to get user: %v", err)
		}
		if u == nil {
			t.Fatal("Expected user to be found")
		}
		if !u.HasLabels {
			t.Error("Expected user 010 to have labels")
		}

		missing, err := db.GetUser("999")
		if err != nil {
			t.Fatalf("Failed to get missing user: %v", err)
		}
		if missing != nil {
			t.Error("Expected nil for missing user")
		}

		ids, err := db.ListUserIDs()
		if err != nil {
			t.Fatalf("Failed to list user ids: %v", err)
		}
		if len(ids) != 2 || ids[0] != "010" || ids[1] != "011" {
			t.Errorf("Expected [010 011], got %v", ids)
		}
	})

	t.Run("InsertActivityGeneratesID", func(t *testing.T) {
		a := &Activity{
			UserID:             "010",
			StartTime:          1207135461,
			EndTime:            1207137045,
			TransportationMode: strPtr("bus"),
			TotalDistance:      12.5,
			AltitudeGain:       30,
			IsValid:            true,
		}
		if err := db.InsertActivity(a); err != nil {
			t.Fatalf("Failed to insert activity: %v", err)
		}
		if a.ID == 0 {
			t.Fatal("Expected generated activity id")
		}

		b := &Activity{UserID: "010", StartTime: 1207200000, EndTime: 1207201000, IsValid: false}
		if err := db.InsertActivity(b); err != nil {
			t.Fatalf("Failed to insert second activity: %v", err)
		}
		if b.ID == a.ID {
			t.Errorf("Expected distinct generated ids, got %d twice", a.ID)
		}

		got, err := db.GetActivity(a.ID)
		if err != nil {
			t.Fatalf("Failed to get activity: %v", err)
		}
		if got == nil {
			t.Fatal("Expected activity to be found")
		}
		if got.TransportationMode == nil || *got.TransportationMode != "bus" {
			t.Errorf("Expected mode 'bus', got %v", got.TransportationMode)
		}
		if got.TotalDistance != 12.5 {
			t.Errorf("Expected distance 12.5, got %f", got.TotalDistance)
		}

		if gotB, _ := db.GetActivity(b.ID); gotB == nil || gotB.TransportationMode != nil {
			t.Errorf("Expected nil mode for unlabeled activity, got %+v", gotB)
		}
	})

	t.Run("InsertAndListTrackpoints", func(t *testing.T) {
		a := &Activity{UserID: "011", StartTime: 1207300000, EndTime: 1207300120, IsValid: true}
		if err := db.InsertActivity(a); err != nil {
			t.Fatalf("Failed to insert activity: %v", err)
		}

		points := []Trackpoint{
			{ActivityID: a.ID, Lat: 39.916, Lon: 116.397, Altitude: 100, Timestamp: 1207300000},
			{ActivityID: a.ID, Lat: 39.917, Lon: 116.398, Altitude: SentinelAltitude, Timestamp: 1207300060},
			{ActivityID: a.ID, Lat: 39.918, Lon: 116.399, Altitude: 150, Timestamp: 1207300120},
		}
		if err := db.InsertTrackpoints(points); err != nil {
			t.Fatalf("Failed to insert trackpoints: %v", err)
		}

		got, err := db.ListTrackpointsByActivity(a.ID)
		if err != nil {
			t.Fatalf("Failed to list trackpoints: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Expected 3 trackpoints, got %d", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Timestamp < got[i-1].Timestamp {
				t.Error("Expected trackpoints ordered by timestamp")
			}
		}
		if got[1].Altitude != SentinelAltitude {
			t.Errorf("Expected sentinel altitude, got %f", got[1].Altitude)
		}
	})

	t.Run("InsertEmptyBatches", func(t *testing.T) {
		if err := db.InsertUsers(nil); err != nil {
			t.Errorf("Expected empty user batch to be a no-op, got %v", err)
		}
		if err := db.InsertTrackpoints(nil); err != nil {
			t.Errorf("Expected empty trackpoint batch to be a no-op, got %v", err)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		if err := db.Reset(); err != nil {
			t.Fatalf("Failed to reset: %v", err)
		}

		for _, table := range []string{"users", "activities", "trackpoints"} {
			var count int
			if err := db.Conn().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
				t.Fatalf("Failed to count %s: %v", table, err)
			}
			if count != 0 {
				t.Errorf("Expected %s to be empty after reset, got %d rows", table, count)
			}
		}
	})
}
