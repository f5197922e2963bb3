// Package ingest drives the write path: it walks the dataset directory,
// segments every trajectory file and persists the result.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"geolife-pipeline/internal/database"
	"geolife-pipeline/internal/labels"
	"geolife-pipeline/internal/metrics"
	"geolife-pipeline/internal/segment"
)

// headerLines is the fixed number of header lines at the top of every raw
// trajectory file.
const headerLines = 6

// trajectoryDir is the per-user subdirectory holding raw trajectory files.
const trajectoryDir = "Trajectory"

// labelsFile is the optional per-user label file name.
const labelsFile = "labels.txt"

// Ingester runs a full ingestion over a dataset directory
type Ingester struct {
	db      *database.DB
	logger  *slog.Logger
	workers int
}

// NewIngester creates an ingester writing to the given store with a fixed
// number of workers
func NewIngester(db *database.DB, workers int) *Ingester {
	return &Ingester{
		db:      db,
		logger:  slog.Default(),
		workers: workers,
	}
}

// Run resets the store and ingests every user directory under dataDir. User
// directories are processed by a pool of workers; each worker writes records
// for disjoint users, so workers never coordinate. Per-file and per-user
// failures are logged and skipped; only bootstrap failures (labeled-id
// roster, dataset directory, reset, user batch) abort the run.
func (ing *Ingester) Run(ctx context.Context, dataDir, labeledIDsPath string) error {
	start := time.Now()

	labeled, err := loadLabeledIDs(labeledIDsPath)
	if err != nil {
		// Without the roster every user would silently lose has_labels,
		// corrupting the audit query downstream.
		return fmt.Errorf("failed to load labeled user ids: %w", err)
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return fmt.Errorf("failed to read dataset directory: %w", err)
	}

	var userIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			userIDs = append(userIDs, entry.Name())
		}
	}
	sort.Strings(userIDs)

	if err := ing.db.Reset(); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}

	users := make([]database.User, len(userIDs))
	for i, id := range userIDs {
		users[i] = database.User{ID: id, HasLabels: labeled[id]}
	}
	if err := ing.db.InsertUsers(users); err != nil {
		return fmt.Errorf("failed to insert users: %w", err)
	}

	ing.logger.Info("Starting ingestion",
		"users", len(userIDs),
		"labeled_users", len(labeled),
		"workers", ing.workers)

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < ing.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range jobs {
				metrics.IngestActiveWorkers.Inc()
				userStart := time.Now()
				ing.processUser(ctx, userID, filepath.Join(dataDir, userID))
				metrics.IngestDuration.Observe(time.Since(userStart).Seconds())
				metrics.IngestUsersTotal.Inc()
				metrics.IngestActiveWorkers.Dec()
			}
		}()
	}

	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- userID:
		}
	}
	close(jobs)
	wg.Wait()

	ing.logger.Info("Ingestion complete",
		"users", len(userIDs),
		"duration", time.Since(start))
	return nil
}

// processUser ingests one user directory: its optional label file, then
// every trajectory file. A failed label load leaves the user with an empty
// index; a failed file aborts that file only.
func (ing *Ingester) processUser(ctx context.Context, userID, userDir string) {
	idx := ing.loadUserLabels(userID, filepath.Join(userDir, labelsFile))

	trajDir := filepath.Join(userDir, trajectoryDir)
	entries, err := os.ReadDir(trajDir)
	if err != nil {
		if os.IsNotExist(err) {
			ing.logger.Debug("User has no trajectory directory", "user_id", userID)
			return
		}
		ing.logger.Error("Failed to read trajectory directory",
			"user_id", userID, "error", err)
		metrics.IngestFailuresTotal.WithLabelValues(metrics.FailureRead).Inc()
		return
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".plt") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		if ctx.Err() != nil {
			return
		}
		ing.processFile(filepath.Join(trajDir, name), userID, idx)
	}
}

// loadUserLabels loads the user's label file. Absence or failure both fall
// back to an empty index so ingestion proceeds unlabeled.
func (ing *Ingester) loadUserLabels(userID, path string) *labels.Index {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			ing.logger.Error("Failed to open label file",
				"user_id", userID, "error", err)
			metrics.IngestFailuresTotal.WithLabelValues(metrics.FailureLabelLoad).Inc()
		}
		return labels.NewIndex()
	}
	defer f.Close()

	idx, err := labels.Load(f)
	if err != nil {
		ing.logger.Warn("Failed to parse label file, proceeding unlabeled",
			"user_id", userID, "error", err)
		metrics.IngestFailuresTotal.WithLabelValues(metrics.FailureLabelLoad).Inc()
		return labels.NewIndex()
	}
	return idx
}

// processFile segments one trajectory file and writes its activity followed
// by its trackpoints. The two-step write is not atomic: a crash in between
// leaves an orphan activity, which the query path treats as valid empty
// data.
func (ing *Ingester) processFile(path, userID string, idx *labels.Index) {
	lines, err := readDataLines(path)
	if err != nil {
		ing.logger.Error("Failed to read trajectory file",
			"user_id", userID, "file", path, "error", err)
		metrics.IngestFilesTotal.WithLabelValues(metrics.FileFailed).Inc()
		metrics.IngestFailuresTotal.WithLabelValues(metrics.FailureRead).Inc()
		return
	}

	activity, points, err := segment.Segment(lines, userID, idx)
	if err != nil {
		ing.logger.Warn("Skipping malformed trajectory file",
			"user_id", userID, "file", path, "error", err)
		metrics.IngestFilesTotal.WithLabelValues(metrics.FileFailed).Inc()
		metrics.IngestFailuresTotal.WithLabelValues(metrics.FailureParse).Inc()
		return
	}
	if activity == nil {
		// Over the capacity limit (or empty): a silent no-op by contract.
		metrics.IngestFilesTotal.WithLabelValues(metrics.FileSkipped).Inc()
		return
	}

	// The activity goes first so its generated id is known for the batch.
	if err := ing.db.InsertActivity(activity); err != nil {
		ing.logger.Error("Failed to insert activity",
			"user_id", userID, "file", path, "error", err)
		metrics.IngestFilesTotal.WithLabelValues(metrics.FileFailed).Inc()
		metrics.IngestFailuresTotal.WithLabelValues(metrics.FailureStore).Inc()
		return
	}
	for i := range points {
		points[i].ActivityID = activity.ID
	}
	if err := ing.db.InsertTrackpoints(points); err != nil {
		ing.logger.Error("Failed to insert trackpoints",
			"user_id", userID, "file", path, "activity_id", activity.ID, "error", err)
		metrics.IngestFilesTotal.WithLabelValues(metrics.FileFailed).Inc()
		metrics.IngestFailuresTotal.WithLabelValues(metrics.FailureStore).Inc()
		return
	}

	metrics.IngestFilesTotal.WithLabelValues(metrics.FileProcessed).Inc()
	metrics.ActivitiesInsertedTotal.Inc()
	metrics.TrackpointsInsertedTotal.Add(float64(len(points)))

	ing.logger.Debug("Ingested trajectory file",
		"user_id", userID,
		"file", path,
		"activity_id", activity.ID,
		"trackpoints", len(points))
}

// readDataLines reads a trajectory file, dropping the fixed header
func readDataLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trajectory file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= headerLines {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trajectory file: %w", err)
	}
	return lines, nil
}

// loadLabeledIDs reads the global file enumerating labeled user ids, one per
// line
func loadLabeledIDs(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labeled ids file: %w", err)
	}
	defer f.Close()

	labeled := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			labeled[id] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labeled ids file: %w", err)
	}
	return labeled, nil
}
