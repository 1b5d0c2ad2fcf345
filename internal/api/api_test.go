package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/soundguard/soundguard-go/internal/analysis"
	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/datastore"
	"github.com/soundguard/soundguard-go/internal/errors"
	"github.com/soundguard/soundguard-go/internal/notification"
	"github.com/soundguard/soundguard-go/internal/security"
)

// fakeML is an in-memory inference.Client.
type fakeML struct {
	predictions []float64
	err         error
}

func (f *fakeML) Predict(_ context.Context, _ []float64, _ int) ([]float64, error) {
	return f.predictions, f.err
}

func (f *fakeML) ModelInfo(_ context.Context) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"model_loaded": true, "num_classes": 7}, nil
}

func (f *fakeML) Healthy(_ context.Context) error { return f.err }

type testAPI struct {
	controller *Controller
	echo       *echo.Echo
	ds         datastore.Interface
	ml         *fakeML
	settings   *conf.Settings
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&datastore.User{},
		&datastore.Event{},
		&datastore.Notification{},
		&datastore.NotificationSettings{},
		&datastore.MicrophoneSettings{},
		&datastore.StorageSettings{},
		&datastore.AudioFile{},
	))
	ds := &datastore.SQLiteStore{DataStore: datastore.DataStore{DB: db}}

	settings := &conf.Settings{}
	settings.Analysis = conf.AnalysisConfig{
		DefaultZone:       "A동 1층",
		DefaultArea:       "프레스 구역",
		FanoutWorkers:     4,
		DefaultSampleRate: 16000,
	}
	settings.Security = conf.SecurityConfig{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
	}
	settings.Storage.UploadPath = t.TempDir()

	tokens := security.NewTokenProvider(settings)
	auth := security.NewAuthService(ds, tokens)

	ml := &fakeML{predictions: []float64{0.9, 0.02, 0.02, 0.02, 0.02, 0.01, 0.01}}
	alerts := notification.NewService(settings, ds)
	analyzer := analysis.New(settings, ml, alerts, alerts, alerts, alerts)

	e := echo.New()
	controller := New(e, ds, settings, auth, tokens, analyzer, ml, nil)

	return &testAPI{
		controller: controller,
		echo:       e,
		ds:         ds,
		ml:         ml,
		settings:   settings,
	}
}

// register creates an account and returns a bearer token for it.
func (a *testAPI) register(t *testing.T, userID, role string) string {
	t.Helper()

	rec := a.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"user_id":  userID,
		"password": "secret123",
		"name":     "Worker " + userID,
		"email":    userID + "@factory.example.com",
		"role":     role,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"user_id":  userID,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result security.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result.Token
}

func (a *testAPI) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(encoded))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	a := newTestAPI(t)

	rec := a.request(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAuthFlow(t *testing.T) {
	a := newTestAPI(t)
	token := a.register(t, "worker1", "")

	t.Run("me returns the account", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var user security.UserInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "worker1", user.UserID)
		assert.Equal(t, "user", user.Role)
	})

	t.Run("duplicate registration rejected", func(t *testing.T) {
		rec := a.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"user_id":  "worker1",
			"password": "pw",
			"name":     "X",
			"email":    "other@factory.example.com",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "이미 사용 중인 아이디입니다")
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		rec := a.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"user_id":  "worker1",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("profile update", func(t *testing.T) {
		rec := a.request(t, http.MethodPut, "/api/v1/auth/me", token, map[string]any{
			"name": "박영희",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "박영희")
	})
}

func TestAuthMiddleware(t *testing.T) {
	a := newTestAPI(t)

	t.Run("missing token", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/events", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/events", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAnalyzeEndpoint(t *testing.T) {
	a := newTestAPI(t)
	token := a.register(t, "worker1", "")

	t.Run("missing audio data", func(t *testing.T) {
		rec := a.request(t, http.MethodPost, "/api/v1/audio/analyze", token, map[string]any{
			"sampleRate": 16000,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "오디오 데이터가 필요합니다")
	})

	t.Run("normal verdict", func(t *testing.T) {
		rec := a.request(t, http.MethodPost, "/api/v1/audio/analyze", token, map[string]any{
			"audioData":  []float64{0.1, -0.2, 0.3},
			"sampleRate": 16000,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var outcome analysis.Outcome
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
		assert.True(t, outcome.Success)
		assert.False(t, outcome.IsDangerous)
	})

	t.Run("dangerous verdict records event and notification", func(t *testing.T) {
		a.ml.predictions = []float64{0.05, 0.85, 0.02, 0.03, 0.02, 0.02, 0.01}

		rec := a.request(t, http.MethodPost, "/api/v1/audio/analyze", token, map[string]any{
			"audioData":  []float64{0.5, -0.5, 0.25},
			"sampleRate": 16000,
			"zone":       "B동 2층",
			"area":       "용접 구역",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var outcome analysis.Outcome
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
		assert.True(t, outcome.IsDangerous)

		events, err := a.ds.GetAllEvents()
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "B동 2층", events[0].Zone)

		count, err := a.ds.CountUnreadNotifications("worker1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("upstream failure yields failed outcome", func(t *testing.T) {
		a.ml.predictions = nil
		a.ml.err = errors.NewStd("ml service unreachable")
		defer func() { a.ml.err = nil }()

		rec := a.request(t, http.MethodPost, "/api/v1/audio/analyze", token, map[string]any{
			"audioData": []float64{0.1},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})
}

func TestEventEndpoints(t *testing.T) {
	a := newTestAPI(t)
	token := a.register(t, "worker1", "")

	seedEvent := func(zone, eventType, severity string) {
		require.NoError(t, a.ds.SaveEvent(&datastore.Event{
			Zone:     zone,
			Area:     "프레스 구역",
			Type:     eventType,
			Message:  "test",
			Severity: severity,
		}))
	}
	seedEvent("A동 1층", "scream", "high")
	seedEvent("A동 1층", "help", "medium")
	seedEvent("B동 2층", "emergency", "high")

	t.Run("list all", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/events", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var events []EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
		assert.Len(t, events, 3)
		assert.Equal(t, "비명 감지", findEvent(events, "scream").TypeLabel)
	})

	t.Run("filter by type", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/events?type=scream", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var events []EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
		require.Len(t, events, 1)
		assert.Equal(t, "scream", events[0].Type)
	})

	t.Run("filter all keyword matches everything", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/events?zone=all&dateRange=all", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var events []EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
		assert.Len(t, events, 3)
	})

	t.Run("stats", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/events/stats", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var stats EventStats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.EqualValues(t, 3, stats.Total)
		assert.EqualValues(t, 3, stats.Today)
	})
}

func findEvent(events []EventResponse, eventType string) EventResponse {
	for _, event := range events {
		if event.Type == eventType {
			return event
		}
	}
	return EventResponse{}
}

func TestDateRangeStart(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), dateRangeStart("today", now))
	assert.Equal(t, now.AddDate(0, 0, -7), dateRangeStart("week", now))
	assert.Equal(t, now.AddDate(0, 0, -30), dateRangeStart("month", now))
	assert.True(t, dateRangeStart("all", now).IsZero())
	assert.True(t, dateRangeStart("", now).IsZero())
}

func TestNotificationEndpoints(t *testing.T) {
	a := newTestAPI(t)
	token := a.register(t, "worker1", "")
	otherToken := a.register(t, "worker2", "")

	require.NoError(t, a.ds.SaveNotification(&datastore.Notification{
		UserID:   "worker1",
		Type:     "scream",
		Title:    "⚠️ 위험 소리 감지",
		Message:  "A동 1층 프레스 구역에서 비명 소리 감지",
		Priority: "high",
	}))

	t.Run("list", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/notifications", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var notifications []NotificationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifications))
		require.Len(t, notifications, 1)
		assert.False(t, notifications[0].Read)
	})

	t.Run("unread count", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":1}`, rec.Body.String())
	})

	t.Run("other user cannot mark it read", func(t *testing.T) {
		rec := a.request(t, http.MethodPut, "/api/v1/notifications/1/read", otherToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("mark read", func(t *testing.T) {
		rec := a.request(t, http.MethodPut, "/api/v1/notifications/1/read", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		count, err := a.ds.CountUnreadNotifications("worker1")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("delete", func(t *testing.T) {
		rec := a.request(t, http.MethodDelete, "/api/v1/notifications/1", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		notifications, err := a.ds.GetUserNotifications("worker1")
		require.NoError(t, err)
		assert.Empty(t, notifications)
	})
}

func TestSettingsEndpoints(t *testing.T) {
	a := newTestAPI(t)
	token := a.register(t, "worker1", "")

	t.Run("notification settings default row created", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/settings/notifications", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var settings datastore.NotificationSettings
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
		assert.True(t, settings.EmergencyEnabled)
		assert.True(t, settings.EmergencySoundEnabled)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		rec := a.request(t, http.MethodPut, "/api/v1/settings/notifications", token, map[string]any{
			"emergencyEnabled": false,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		stored, err := a.ds.GetNotificationSettings("worker1")
		require.NoError(t, err)
		assert.False(t, stored.EmergencyEnabled)
		assert.True(t, stored.EmergencySoundEnabled)
	})

	t.Run("storage settings defaults", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/settings/storage", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var settings datastore.StorageSettings
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
		assert.True(t, settings.AutoSaveEnabled)
		assert.Equal(t, 30, settings.RetentionDays)
	})

	t.Run("microphone volume clamped", func(t *testing.T) {
		rec := a.request(t, http.MethodPut, "/api/v1/settings/microphone", token, map[string]any{
			"inputVolume": 250,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		stored, err := a.ds.GetMicrophoneSettings("worker1")
		require.NoError(t, err)
		assert.Equal(t, 100, stored.InputVolume)
	})
}

func TestAdminEndpoints(t *testing.T) {
	a := newTestAPI(t)
	adminToken := a.register(t, "boss", "admin")
	userToken := a.register(t, "worker1", "")

	t.Run("non-admin forbidden", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/admin/users", userToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin lists users", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var users []security.UserInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 2)
	})

	t.Run("admin cannot delete self", func(t *testing.T) {
		rec := a.request(t, http.MethodDelete, "/api/v1/admin/users/boss", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("role change", func(t *testing.T) {
		rec := a.request(t, http.MethodPut, "/api/v1/admin/users/worker1/role", adminToken, map[string]any{
			"role": "admin",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		user, err := a.ds.GetUser("worker1")
		require.NoError(t, err)
		assert.Equal(t, "admin", user.Role)
	})

	t.Run("delete user", func(t *testing.T) {
		rec := a.request(t, http.MethodDelete, "/api/v1/admin/users/worker1", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		_, err := a.ds.GetUser("worker1")
		assert.ErrorIs(t, err, datastore.ErrRecordNotFound)
	})
}

func TestMLEndpoints(t *testing.T) {
	a := newTestAPI(t)
	token := a.register(t, "worker1", "")

	t.Run("predict passthrough", func(t *testing.T) {
		rec := a.request(t, http.MethodPost, "/api/v1/ml/predict", token, map[string]any{
			"data": []float64{0.1, 0.2},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp PredictResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Len(t, resp.Prediction, 7)
	})

	t.Run("predict requires data", func(t *testing.T) {
		rec := a.request(t, http.MethodPost, "/api/v1/ml/predict", token, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("model info", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/ml/model/info", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "model_loaded")
	})

	t.Run("health", func(t *testing.T) {
		rec := a.request(t, http.MethodGet, "/api/v1/ml/health", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
