package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"lapsecam/internal/camera"
	"lapsecam/internal/handler"
	"lapsecam/internal/repository"
	"lapsecam/internal/repository/testutil"
	"lapsecam/internal/scheduler"
	"lapsecam/internal/service"
)

type alwaysOnline struct{}

func (alwaysOnline) IsOnline() bool { return true }

type testEnv struct {
	e        *echo.Echo
	settings repository.SettingsRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.NewTestDB(t)
	captureRepo := repository.NewCaptureRepository(conn)
	settingsRepo := repository.NewSettingsRepository(conn)

	captureService := service.NewCaptureService(t.TempDir(), camera.NewStubSource(), captureRepo)
	uploadService := service.NewUploadService(captureRepo, nil, captureService.FramePath, alwaysOnline{}, nil, "camera", "camera-trigger", 60, true)
	sched := scheduler.New(captureService, uploadService, nil, 60*time.Second, true)

	e := echo.New()
	api := e.Group("/api")
	handler.NewCaptureHandler(captureService, uploadService).RegisterRoutes(api)
	handler.NewTimelapseHandler(sched).RegisterRoutes(api)
	handler.NewSettingsHandler(settingsRepo, sched).RegisterRoutes(api)
	handler.NewStatusHandler(captureService, uploadService, alwaysOnline{}, sched).RegisterRoutes(api)

	return &testEnv{e: e, settings: settingsRepo}
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func TestCaptureHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/captures", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID           int64  `json:"id"`
		UploadStatus string `json:"uploadStatus"`
		Source       string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	require.Equal(t, "pending", created.UploadStatus)
	require.Equal(t, "stub", created.Source)

	rec = env.do(http.MethodGet, "/api/captures", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Captures []json.RawMessage `json:"captures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Captures, 1)

	idPath := "/api/captures/" + itoa64(created.ID)
	rec = env.do(http.MethodGet, idPath, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, idPath+"/image", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, rec.Body.Len() > 2)
	require.Equal(t, byte(0xFF), rec.Body.Bytes()[0])
	require.Equal(t, byte(0xD8), rec.Body.Bytes()[1])

	rec = env.do(http.MethodDelete, idPath, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, idPath, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCaptureHandler_List_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/captures?status=bogus", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCaptureHandler_Sweep_Disabled(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/captures/sweep", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTimelapseHandler_StartStop(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/timelapse/start", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state struct {
		Running bool `json:"running"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.True(t, state.Running)

	rec = env.do(http.MethodPost, "/api/timelapse/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.False(t, state.Running)
}

func TestSettingsHandler_UpdateInterval(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPut, "/api/settings/interval", `{"intervalSeconds":300}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		IntervalSeconds int64 `json:"intervalSeconds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(300), resp.IntervalSeconds)

	persisted, err := env.settings.Get(context.Background(), handler.IntervalSettingKey)
	require.NoError(t, err)
	require.Equal(t, "300", persisted)

	rec = env.do(http.MethodPut, "/api/settings/interval", `{"intervalSeconds":7}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusHandler_GetStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Online          bool           `json:"online"`
		TimelapseActive bool           `json:"timelapseActive"`
		IntervalSeconds int64          `json:"intervalSeconds"`
		Captures        map[string]int `json:"captures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.True(t, status.Online)
	require.False(t, status.TimelapseActive)
	require.Equal(t, int64(60), status.IntervalSeconds)
	require.Equal(t, map[string]int{"pending": 0, "uploaded": 0, "failed": 0}, status.Captures)
}

func itoa64(id int64) string {
	return strconv.FormatInt(id, 10)
}
