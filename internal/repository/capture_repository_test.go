package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"lapsecam/internal/model"
	"lapsecam/internal/repository"
	"lapsecam/internal/repository/testutil"

	"github.com/stretchr/testify/require"
)

func TestCaptureRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCaptureRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Capture{
		Filename:  "12345.jpg",
		SizeBytes: 2048,
		SHA256:    "abc123",
		Source:    "command",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, model.UploadPending, created.UploadStatus)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "12345.jpg", fetched.Filename)
	require.Equal(t, int64(2048), fetched.SizeBytes)
	require.Equal(t, "abc123", fetched.SHA256)
	require.False(t, fetched.TakenAt.IsZero())
}

func TestCaptureRepository_FindBySHA256(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCaptureRepository(db)
	ctx := context.Background()

	testutil.SeedCapture(t, db, model.Capture{Filename: "a.jpg", SHA256: "sum-a"})

	found, err := repo.FindBySHA256(ctx, "sum-a")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "a.jpg", found.Filename)

	missing, err := repo.FindBySHA256(ctx, "sum-missing")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestCaptureRepository_List_Filters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCaptureRepository(db)
	ctx := context.Background()

	testutil.SeedCapture(t, db, model.Capture{Filename: "p1.jpg", SHA256: "s1"})
	testutil.SeedCapture(t, db, model.Capture{Filename: "p2.jpg", SHA256: "s2"})
	testutil.SeedCapture(t, db, model.Capture{Filename: "u1.jpg", SHA256: "s3", UploadStatus: model.UploadUploaded})

	all, err := repo.List(ctx, repository.CaptureListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	status := model.UploadUploaded
	uploaded, err := repo.List(ctx, repository.CaptureListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, uploaded, 1)
	require.Equal(t, "u1.jpg", uploaded[0].Filename)

	limited, err := repo.List(ctx, repository.CaptureListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestCaptureRepository_ListPending_OrderAndBudget(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCaptureRepository(db)
	ctx := context.Background()

	old := time.Now().UTC().Add(-2 * time.Hour)
	newer := time.Now().UTC().Add(-1 * time.Hour)

	testutil.SeedCapture(t, db, model.Capture{Filename: "new.jpg", SHA256: "s-new", TakenAt: newer})
	testutil.SeedCapture(t, db, model.Capture{Filename: "old.jpg", SHA256: "s-old", TakenAt: old})
	testutil.SeedCapture(t, db, model.Capture{Filename: "failed.jpg", SHA256: "s-f", UploadStatus: model.UploadFailed, UploadAttempts: 2})
	testutil.SeedCapture(t, db, model.Capture{Filename: "spent.jpg", SHA256: "s-s", UploadStatus: model.UploadFailed, UploadAttempts: 5})
	testutil.SeedCapture(t, db, model.Capture{Filename: "done.jpg", SHA256: "s-d", UploadStatus: model.UploadUploaded})

	pending, err := repo.ListPending(ctx, 5)
	require.NoError(t, err)
	require.Len(t, pending, 3) // old, new, failed; not spent, not done

	// Oldest first
	require.Equal(t, "old.jpg", pending[0].Filename)
	require.Equal(t, "new.jpg", pending[1].Filename)
}

func TestCaptureRepository_StatusTransitions(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCaptureRepository(db)
	ctx := context.Background()

	id := testutil.SeedCapture(t, db, model.Capture{Filename: "c.jpg", SHA256: "s-c"})

	err := repo.MarkFailed(ctx, id, 3, "HTTP 503")
	require.NoError(t, err)
	c, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.UploadFailed, c.UploadStatus)
	require.Equal(t, 3, c.UploadAttempts)
	require.NotNil(t, c.LastError)
	require.Equal(t, "HTTP 503", *c.LastError)

	err = repo.MarkUploaded(ctx, id, 4)
	require.NoError(t, err)
	c, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.UploadUploaded, c.UploadStatus)
	require.NotNil(t, c.UploadedAt)
	require.Nil(t, c.LastError)

	err = repo.MarkNotified(ctx, id)
	require.NoError(t, err)
	c, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, c.Notified)
}

func TestCaptureRepository_GetStatusCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCaptureRepository(db)
	ctx := context.Background()

	testutil.SeedCapture(t, db, model.Capture{SHA256: "s1"})
	testutil.SeedCapture(t, db, model.Capture{SHA256: "s2"})
	testutil.SeedCapture(t, db, model.Capture{SHA256: "s3", UploadStatus: model.UploadUploaded})

	counts, err := repo.GetStatusCounts(ctx)
	require.NoError(t, err)

	byStatus := map[string]int{}
	for _, sc := range counts {
		byStatus[sc.Status] = sc.Count
	}
	require.Equal(t, 2, byStatus[model.UploadPending])
	require.Equal(t, 1, byStatus[model.UploadUploaded])
}

func TestCaptureRepository_RetentionQueries(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCaptureRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	testutil.SeedCapture(t, db, model.Capture{SHA256: "s1", UploadStatus: model.UploadUploaded, TakenAt: now.Add(-72 * time.Hour)})
	testutil.SeedCapture(t, db, model.Capture{SHA256: "s2", UploadStatus: model.UploadUploaded, TakenAt: now.Add(-48 * time.Hour)})
	testutil.SeedCapture(t, db, model.Capture{SHA256: "s3", UploadStatus: model.UploadUploaded, TakenAt: now.Add(-1 * time.Hour)})
	// Pending captures are never eligible for pruning.
	testutil.SeedCapture(t, db, model.Capture{SHA256: "s4", TakenAt: now.Add(-96 * time.Hour)})

	aged, err := repo.ListUploadedBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, aged, 2)

	excess, err := repo.ListUploadedBeyond(ctx, 1)
	require.NoError(t, err)
	require.Len(t, excess, 2) // newest kept, two older uploaded returned
}

func TestCaptureRepository_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCaptureRepository(db)
	ctx := context.Background()

	id := testutil.SeedCapture(t, db, model.Capture{SHA256: "s1"})

	require.NoError(t, repo.Delete(ctx, id))
	require.ErrorIs(t, repo.Delete(ctx, id), sql.ErrNoRows)
}

func TestSettingsRepository_GetSetDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSettingsRepository(db)
	ctx := context.Background()

	val, err := repo.Get(ctx, "timelapse.interval")
	require.NoError(t, err)
	require.Empty(t, val)

	require.NoError(t, repo.Set(ctx, "timelapse.interval", "300"))
	val, err = repo.Get(ctx, "timelapse.interval")
	require.NoError(t, err)
	require.Equal(t, "300", val)

	// Upsert overwrites
	require.NoError(t, repo.Set(ctx, "timelapse.interval", "600"))
	val, err = repo.Get(ctx, "timelapse.interval")
	require.NoError(t, err)
	require.Equal(t, "600", val)

	require.NoError(t, repo.Delete(ctx, "timelapse.interval"))
	val, err = repo.Get(ctx, "timelapse.interval")
	require.NoError(t, err)
	require.Empty(t, val)
}

func TestParseTimePtr(t *testing.T) {
	require.Nil(t, repository.ParseTimePtr(""))

	ts := "2025-01-04T12:34:56Z"
	got := repository.ParseTimePtr(ts)
	require.NotNil(t, got)
	require.Equal(t, ts, got.UTC().Format(time.RFC3339))
}
