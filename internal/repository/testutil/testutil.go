package testutil

import (
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"lapsecam/internal/db"
	"lapsecam/internal/model"
	"lapsecam/internal/snowflake"
)

// NewTestDB opens a migrated SQLite database in the test's temp dir.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	require.NoError(t, snowflake.Init(1))

	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// SeedCapture inserts a capture row directly and returns its ID.
func SeedCapture(t *testing.T, conn *sql.DB, c model.Capture) int64 {
	t.Helper()

	id := snowflake.NextID()
	now := time.Now().UTC().Format(time.RFC3339)

	if c.Filename == "" {
		c.Filename = strconv.FormatInt(id, 10) + ".jpg"
	}
	if c.SHA256 == "" {
		c.SHA256 = c.Filename + "-sum"
	}
	if c.Source == "" {
		c.Source = "stub"
	}
	if c.UploadStatus == "" {
		c.UploadStatus = model.UploadPending
	}
	takenAt := now
	if !c.TakenAt.IsZero() {
		takenAt = c.TakenAt.UTC().Format(time.RFC3339)
	}
	notified := 0
	if c.Notified {
		notified = 1
	}

	var uploadedAt interface{}
	if c.UploadedAt != nil {
		uploadedAt = c.UploadedAt.UTC().Format(time.RFC3339)
	}

	_, err := conn.Exec(
		`INSERT INTO captures (id, filename, size_bytes, sha256, source, taken_at, upload_status, upload_attempts, uploaded_at, last_error, notified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?, ?)`,
		id, c.Filename, c.SizeBytes, c.SHA256, c.Source, takenAt, c.UploadStatus, c.UploadAttempts, uploadedAt, notified, now, now,
	)
	require.NoError(t, err)

	return id
}
