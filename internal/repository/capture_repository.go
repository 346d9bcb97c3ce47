package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"lapsecam/internal/model"
	"lapsecam/internal/snowflake"
)

type CaptureListFilter struct {
	Status *string
	Limit  int
	Offset int
}

type StatusCount struct {
	Status string
	Count  int
}

//go:generate mockgen -source=capture_repository.go -destination=mock/capture_repository_mock.go -package=mock
type CaptureRepository interface {
	Create(ctx context.Context, capture model.Capture) (model.Capture, error)
	GetByID(ctx context.Context, id int64) (model.Capture, error)
	FindBySHA256(ctx context.Context, sum string) (*model.Capture, error)
	List(ctx context.Context, filter CaptureListFilter) ([]model.Capture, error)
	ListPending(ctx context.Context, maxAttempts int) ([]model.Capture, error)
	MarkUploaded(ctx context.Context, id int64, attempts int) error
	MarkFailed(ctx context.Context, id int64, attempts int, lastError string) error
	MarkNotified(ctx context.Context, id int64) error
	GetStatusCounts(ctx context.Context) ([]StatusCount, error)
	ListUploadedBefore(ctx context.Context, cutoff time.Time) ([]model.Capture, error)
	ListUploadedBeyond(ctx context.Context, keep int) ([]model.Capture, error)
	Delete(ctx context.Context, id int64) error
}

type captureRepository struct {
	db dbtx
}

func NewCaptureRepository(db dbtx) CaptureRepository {
	return &captureRepository{db: db}
}

const captureColumns = `id, filename, size_bytes, sha256, source, taken_at, upload_status, upload_attempts, uploaded_at, last_error, notified, created_at, updated_at`

func (r *captureRepository) Create(ctx context.Context, capture model.Capture) (model.Capture, error) {
	capture.ID = snowflake.NextID()
	now := time.Now().UTC()
	if capture.UploadStatus == "" {
		capture.UploadStatus = model.UploadPending
	}
	if capture.TakenAt.IsZero() {
		capture.TakenAt = now
	}
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO captures (id, filename, size_bytes, sha256, source, taken_at, upload_status, upload_attempts, uploaded_at, last_error, notified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL, NULL, 0, ?, ?)`,
		capture.ID,
		capture.Filename,
		capture.SizeBytes,
		capture.SHA256,
		capture.Source,
		formatTime(capture.TakenAt),
		capture.UploadStatus,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.Capture{}, err
	}
	capture.CreatedAt = now
	capture.UpdatedAt = now
	return capture, nil
}

func (r *captureRepository) GetByID(ctx context.Context, id int64) (model.Capture, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+captureColumns+` FROM captures WHERE id = ?`,
		id,
	)
	return scanCapture(row)
}

func (r *captureRepository) FindBySHA256(ctx context.Context, sum string) (*model.Capture, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+captureColumns+` FROM captures WHERE sha256 = ?`,
		sum,
	)
	capture, err := scanCapture(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &capture, nil
}

func (r *captureRepository) List(ctx context.Context, filter CaptureListFilter) ([]model.Capture, error) {
	var args []interface{}
	query := `SELECT ` + captureColumns + ` FROM captures`

	var conditions []string
	if filter.Status != nil {
		conditions = append(conditions, "upload_status = ?")
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY taken_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	return r.queryCaptures(ctx, query, args...)
}

func (r *captureRepository) ListPending(ctx context.Context, maxAttempts int) ([]model.Capture, error) {
	return r.queryCaptures(
		ctx,
		`SELECT `+captureColumns+` FROM captures
		 WHERE upload_status IN (?, ?) AND upload_attempts < ?
		 ORDER BY taken_at ASC, id ASC`,
		model.UploadPending,
		model.UploadFailed,
		maxAttempts,
	)
}

func (r *captureRepository) MarkUploaded(ctx context.Context, id int64, attempts int) error {
	now := formatTime(time.Now())
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE captures SET upload_status = ?, upload_attempts = ?, uploaded_at = ?, last_error = NULL, updated_at = ? WHERE id = ?`,
		model.UploadUploaded,
		attempts,
		now,
		now,
		id,
	)
	return err
}

func (r *captureRepository) MarkFailed(ctx context.Context, id int64, attempts int, lastError string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE captures SET upload_status = ?, upload_attempts = ?, last_error = ?, updated_at = ? WHERE id = ?`,
		model.UploadFailed,
		attempts,
		lastError,
		formatTime(time.Now()),
		id,
	)
	return err
}

func (r *captureRepository) MarkNotified(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE captures SET notified = 1, updated_at = ? WHERE id = ?`,
		formatTime(time.Now()),
		id,
	)
	return err
}

func (r *captureRepository) GetStatusCounts(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT upload_status, COUNT(*) FROM captures GROUP BY upload_status`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *captureRepository) ListUploadedBefore(ctx context.Context, cutoff time.Time) ([]model.Capture, error) {
	return r.queryCaptures(
		ctx,
		`SELECT `+captureColumns+` FROM captures WHERE upload_status = ? AND taken_at < ? ORDER BY taken_at ASC`,
		model.UploadUploaded,
		formatTime(cutoff),
	)
}

func (r *captureRepository) ListUploadedBeyond(ctx context.Context, keep int) ([]model.Capture, error) {
	return r.queryCaptures(
		ctx,
		`SELECT `+captureColumns+` FROM captures WHERE upload_status = ?
		 ORDER BY taken_at DESC, id DESC LIMIT -1 OFFSET ?`,
		model.UploadUploaded,
		keep,
	)
}

func (r *captureRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM captures WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *captureRepository) queryCaptures(ctx context.Context, query string, args ...interface{}) ([]model.Capture, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []model.Capture
	for rows.Next() {
		capture, err := scanCaptureRows(rows)
		if err != nil {
			return nil, err
		}
		captures = append(captures, capture)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return captures, nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanCaptureRow(row scannable) (model.Capture, error) {
	var c model.Capture
	var takenAt, createdAt, updatedAt string
	var uploadedAt, lastError sql.NullString
	var notifiedInt int

	err := row.Scan(
		&c.ID, &c.Filename, &c.SizeBytes, &c.SHA256, &c.Source,
		&takenAt, &c.UploadStatus, &c.UploadAttempts, &uploadedAt, &lastError,
		&notifiedInt, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Capture{}, err
	}

	c.Notified = notifiedInt == 1
	c.TakenAt, _ = parseTime(takenAt)
	if uploadedAt.Valid {
		c.UploadedAt = ParseTimePtr(uploadedAt.String)
	}
	if lastError.Valid {
		c.LastError = &lastError.String
	}
	c.CreatedAt, _ = parseTime(createdAt)
	c.UpdatedAt, _ = parseTime(updatedAt)

	return c, nil
}

func scanCapture(row *sql.Row) (model.Capture, error) {
	return scanCaptureRow(row)
}

func scanCaptureRows(rows *sql.Rows) (model.Capture, error) {
	return scanCaptureRow(rows)
}
