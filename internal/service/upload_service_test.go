package service

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"lapsecam/internal/feedapi"
	"lapsecam/internal/model"
	"lapsecam/internal/repository/mock"
)

type sentDatum struct {
	Feed  string
	Value string
}

type fakeFeedClient struct {
	mu       sync.Mutex
	ensured  []string
	sent     []sentDatum
	failures int // camera-feed sends that fail before succeeding
}

func (f *fakeFeedClient) GetFeed(_ context.Context, key string) (feedapi.Feed, error) {
	return feedapi.Feed{Key: key}, nil
}

func (f *fakeFeedClient) CreateFeed(_ context.Context, name string) (feedapi.Feed, error) {
	return feedapi.Feed{Name: name, Key: name}, nil
}

func (f *fakeFeedClient) EnsureFeed(_ context.Context, key string) (feedapi.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, key)
	return feedapi.Feed{Key: key}, nil
}

func (f *fakeFeedClient) SendData(_ context.Context, feedKey, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if feedKey == "camera" && f.failures > 0 {
		f.failures--
		return errors.New("upstream unavailable")
	}
	f.sent = append(f.sent, sentDatum{Feed: feedKey, Value: value})
	return nil
}

type fakeOnline struct{ online bool }

func (f *fakeOnline) IsOnline() bool { return f.online }

type fakeNotifier struct {
	mu       sync.Mutex
	captures []model.Capture
}

func (f *fakeNotifier) CaptureUploaded(_ context.Context, capture model.Capture) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captures = append(f.captures, capture)
	return nil
}

func writeFrame(t *testing.T, dir, filename string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0o644))
}

func newTestUploadService(t *testing.T, captures *mock.MockCaptureRepository, feeds *fakeFeedClient, dir string, notifier Notifier) (*uploadService, *[]time.Duration) {
	t.Helper()

	framePath := func(filename string) string { return filepath.Join(dir, filename) }
	svc := NewUploadService(captures, feeds, framePath, &fakeOnline{online: true}, notifier, "camera", "camera-trigger", 100000, false)

	us, ok := svc.(*uploadService)
	require.True(t, ok)

	var delays []time.Duration
	us.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return us, &delays
}

func TestUploadService_Sweep_UploadsPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	frame := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01}
	writeFrame(t, dir, "a.jpg", frame)

	captures := mock.NewMockCaptureRepository(ctrl)
	feeds := &fakeFeedClient{}
	notifier := &fakeNotifier{}
	svc, _ := newTestUploadService(t, captures, feeds, dir, notifier)
	ctx := context.Background()

	pending := model.Capture{ID: 1, Filename: "a.jpg", UploadStatus: model.UploadPending}
	captures.EXPECT().ListPending(ctx, 25).Return([]model.Capture{pending}, nil)
	captures.EXPECT().MarkUploaded(ctx, int64(1), 1).Return(nil)

	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.Uploaded)
	require.Equal(t, 0, result.Failed)
	require.NotEmpty(t, result.RunID)

	require.Equal(t, []string{"camera", "camera-trigger"}, feeds.ensured)
	require.Len(t, feeds.sent, 2)
	require.Equal(t, "camera", feeds.sent[0].Feed)
	require.Equal(t, base64.StdEncoding.EncodeToString(frame), feeds.sent[0].Value)
	require.Equal(t, "camera-trigger", feeds.sent[1].Feed)
	require.Equal(t, "1", feeds.sent[1].Value)

	require.Len(t, notifier.captures, 1)
	require.Equal(t, int64(1), notifier.captures[0].ID)
}

func TestUploadService_Sweep_RetriesWithBackoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	writeFrame(t, dir, "a.jpg", []byte{0xFF, 0xD8, 0x01})

	captures := mock.NewMockCaptureRepository(ctrl)
	feeds := &fakeFeedClient{failures: 2}
	svc, delays := newTestUploadService(t, captures, feeds, dir, nil)
	ctx := context.Background()

	pending := model.Capture{ID: 7, Filename: "a.jpg", UploadStatus: model.UploadPending}
	captures.EXPECT().ListPending(ctx, 25).Return([]model.Capture{pending}, nil)
	captures.EXPECT().MarkUploaded(ctx, int64(7), 3).Return(nil)

	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.Uploaded)

	// Backoff doubles from 2s.
	require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *delays)
}

func TestUploadService_Sweep_MarksFailedAfterBudget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	writeFrame(t, dir, "a.jpg", []byte{0xFF, 0xD8, 0x01})

	captures := mock.NewMockCaptureRepository(ctrl)
	feeds := &fakeFeedClient{failures: 100}
	svc, delays := newTestUploadService(t, captures, feeds, dir, nil)
	ctx := context.Background()

	pending := model.Capture{ID: 2, Filename: "a.jpg", UploadStatus: model.UploadPending}
	captures.EXPECT().ListPending(ctx, 25).Return([]model.Capture{pending}, nil)
	captures.EXPECT().MarkFailed(ctx, int64(2), 5, "upstream unavailable").Return(nil)

	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.Failed)
	require.Len(t, *delays, 4)
}

func TestUploadService_Sweep_MissingFrameFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	captures := mock.NewMockCaptureRepository(ctrl)
	feeds := &fakeFeedClient{}
	svc, _ := newTestUploadService(t, captures, feeds, t.TempDir(), nil)
	ctx := context.Background()

	pending := model.Capture{ID: 3, Filename: "gone.jpg", UploadStatus: model.UploadPending}
	captures.EXPECT().ListPending(ctx, 25).Return([]model.Capture{pending}, nil)
	captures.EXPECT().MarkFailed(ctx, int64(3), 25, "frame file missing").Return(nil)

	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.Failed)
	require.Empty(t, feeds.sent)
}

func TestUploadService_Sweep_Offline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	captures := mock.NewMockCaptureRepository(ctrl)
	svc := NewUploadService(captures, &fakeFeedClient{}, func(string) string { return "" }, &fakeOnline{online: false}, nil, "camera", "camera-trigger", 60, false)

	_, err := svc.Sweep(context.Background())
	require.ErrorIs(t, err, ErrOffline)
}

func TestUploadService_Sweep_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	captures := mock.NewMockCaptureRepository(ctrl)
	svc := NewUploadService(captures, &fakeFeedClient{}, func(string) string { return "" }, &fakeOnline{online: true}, nil, "camera", "camera-trigger", 60, true)

	_, err := svc.Sweep(context.Background())
	require.ErrorIs(t, err, ErrUploadsDisabled)
}
