package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/soundguard/soundguard-go/internal/analysis"
	"github.com/soundguard/soundguard-go/internal/conf"
	"github.com/soundguard/soundguard-go/internal/datastore"
)

func newTestService(t *testing.T) (*Service, *datastore.DataStore) {
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
	))

	ds := &datastore.SQLiteStore{DataStore: datastore.DataStore{DB: db}}
	return NewService(&conf.Settings{}, ds), &ds.DataStore
}

func seedUser(t *testing.T, ds *datastore.DataStore, id string) {
	t.Helper()
	require.NoError(t, ds.CreateUser(&datastore.User{
		UserID:   id,
		Password: "hashed",
		Name:     "Worker " + id,
		Email:    id + "@factory.example.com",
		Role:     "user",
	}))
}

func TestRecordPersistsEvent(t *testing.T) {
	service, ds := newTestService(t)

	id, err := service.Record(context.Background(), analysis.EventRecord{
		Zone:     "A동 1층",
		Area:     "프레스 구역",
		Type:     "scream",
		Message:  "비명 소리 감지 (확률: 91.0%)",
		Severity: "high",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	events, err := ds.GetAllEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "scream", events[0].Type)
	assert.Equal(t, "A동 1층", events[0].Zone)
}

func TestListUserIDs(t *testing.T) {
	service, ds := newTestService(t)
	seedUser(t, ds, "worker1")
	seedUser(t, ds, "worker2")

	ids, err := service.ListUserIDs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"worker1", "worker2"}, ids)
}

func TestIsEmergencyEnabledDefaultsToTrue(t *testing.T) {
	service, ds := newTestService(t)
	seedUser(t, ds, "worker1")

	// No stored settings row: opted in.
	enabled, err := service.IsEmergencyEnabled(context.Background(), "worker1")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestIsEmergencyEnabledHonorsStoredSetting(t *testing.T) {
	service, ds := newTestService(t)
	seedUser(t, ds, "worker1")

	require.NoError(t, ds.SaveNotificationSettings(&datastore.NotificationSettings{
		UserID:           "worker1",
		EmergencyEnabled: false,
	}))

	enabled, err := service.IsEmergencyEnabled(context.Background(), "worker1")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestCreatePersistsNotification(t *testing.T) {
	service, ds := newTestService(t)
	seedUser(t, ds, "worker1")

	err := service.Create(context.Background(), "worker1", analysis.AlertNotification{
		Type:     "emergency",
		Title:    "⚠️ 위험 소리 감지",
		Message:  "A동 1층 프레스 구역에서 비상 상황 감지 (확률: 85.0%)",
		Priority: "high",
	})
	require.NoError(t, err)

	notifications, err := ds.GetUserNotifications("worker1")
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "emergency", notifications[0].Type)
	assert.False(t, notifications[0].Read)

	unread, err := ds.CountUnreadNotifications("worker1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

func TestNewPushPublisherDisabledWithoutURLs(t *testing.T) {
	publisher, err := NewPushPublisher(&conf.Settings{})
	require.NoError(t, err)
	assert.Nil(t, publisher)
}

func TestNewPushPublisherRejectsInvalidURL(t *testing.T) {
	settings := &conf.Settings{}
	settings.Notification.PushURLs = []string{"not-a-shoutrrr-url"}

	_, err := NewPushPublisher(settings)
	assert.Error(t, err)
}
