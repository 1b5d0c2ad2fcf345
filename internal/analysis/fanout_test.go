package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/soundguard/soundguard-go/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBroadcastSkipsDisabledUsers(t *testing.T) {
	f := newAnalyzerFixture(t, nil, "user1", "user2", "user3", "user4")
	f.prefs.disabled = map[string]bool{"user2": true, "user4": true}

	created, failed := f.analyzer.broadcast(context.Background(), AlertNotification{
		Type:     "scream",
		Title:    "⚠️ 위험 소리 감지",
		Message:  "A동 1층 프레스 구역에서 비명 소리 감지",
		Priority: "high",
	})

	assert.Equal(t, 2, created)
	assert.Zero(t, failed)
	assert.Contains(t, f.sink.notifications, "user1")
	assert.Contains(t, f.sink.notifications, "user3")
	assert.NotContains(t, f.sink.notifications, "user2")
	assert.NotContains(t, f.sink.notifications, "user4")
}

func TestBroadcastIsolatesPerUserFailures(t *testing.T) {
	f := newAnalyzerFixture(t, nil, "user1", "user2", "user3")
	f.prefs.errFor = map[string]error{"user1": errors.NewStd("settings query failed")}
	f.sink.errFor = map[string]error{"user2": errors.NewStd("insert failed")}

	created, failed := f.analyzer.broadcast(context.Background(), AlertNotification{
		Type: "help", Title: "⚠️ 위험 소리 감지", Priority: "medium",
	})

	assert.Equal(t, 1, created)
	assert.Equal(t, 2, failed)
	assert.Contains(t, f.sink.notifications, "user3")
}

func TestBroadcastDirectoryFailure(t *testing.T) {
	f := newAnalyzerFixture(t, nil)
	f.directory.err = errors.NewStd("users table unavailable")

	created, failed := f.analyzer.broadcast(context.Background(), AlertNotification{Type: "scream"})

	assert.Zero(t, created)
	assert.Zero(t, failed)
	assert.Empty(t, f.sink.notifications)
}

func TestBroadcastNoUsers(t *testing.T) {
	f := newAnalyzerFixture(t, nil)

	created, failed := f.analyzer.broadcast(context.Background(), AlertNotification{Type: "scream"})

	assert.Zero(t, created)
	assert.Zero(t, failed)
}

// blockingSink counts how many Create calls run at the same time.
type blockingSink struct {
	mu         sync.Mutex
	inFlight   atomic.Int32
	maxSeen    atomic.Int32
	created    int
	holdFor    time.Duration
	underlying map[string]AlertNotification
}

func (s *blockingSink) Create(_ context.Context, userID string, notification AlertNotification) error {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if current <= seen || s.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}
	time.Sleep(s.holdFor)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	if s.underlying == nil {
		s.underlying = make(map[string]AlertNotification)
	}
	s.underlying[userID] = notification
	return nil
}

func TestBroadcastRespectsWorkerLimit(t *testing.T) {
	userIDs := make([]string, 20)
	for i := range userIDs {
		userIDs[i] = fmt.Sprintf("user%02d", i)
	}

	sink := &blockingSink{holdFor: 5 * time.Millisecond}
	settings := testSettings()
	settings.Analysis.FanoutWorkers = 3

	analyzer := New(settings, &fakeClient{}, &fakeRecorder{},
		&fakeDirectory{userIDs: userIDs}, &fakePrefs{}, sink)

	created, failed := analyzer.broadcast(context.Background(), AlertNotification{
		Type: "emergency", Title: "⚠️ 위험 소리 감지", Priority: "high",
	})

	assert.Equal(t, 20, created)
	assert.Zero(t, failed)
	assert.LessOrEqual(t, sink.maxSeen.Load(), int32(3))
}

func TestFanOutDangerAlertRecordsEventAndPublishes(t *testing.T) {
	f := newAnalyzerFixture(t, nil, "user1")
	publisher := &capturingPublisher{}
	f.analyzer.publisher = publisher

	verdict := &Verdict{
		IsDangerous:       true,
		PredictedClass:    ClassHelp,
		Confidence:        0.8,
		DangerProbability: 0.65,
	}
	f.analyzer.fanOutDangerAlert(context.Background(), verdict, "C동 지하", "보일러실")

	require.Len(t, f.recorder.events, 1)
	event := f.recorder.events[0]
	assert.Equal(t, "help", event.Type)
	assert.Equal(t, "medium", event.Severity) // 0.65 is above 0.5, at most 0.8
	assert.Equal(t, "C동 지하", event.Zone)
	assert.Contains(t, event.Message, "도움 요청 감지")
	assert.Contains(t, event.Message, "65.0%")

	require.Len(t, publisher.events, 1)
	assert.Equal(t, event, publisher.events[0])

	require.Contains(t, f.sink.notifications, "user1")
	assert.Equal(t, "C동 지하 보일러실에서 도움 요청 감지 (확률: 65.0%)",
		f.sink.notifications["user1"].Message)
}

func TestFanOutContinuesAfterRecordFailure(t *testing.T) {
	f := newAnalyzerFixture(t, nil, "user1", "user2")
	f.recorder.err = errors.NewStd("disk full")

	verdict := &Verdict{
		IsDangerous:       true,
		PredictedClass:    ClassScream,
		DangerProbability: 0.9,
	}
	f.analyzer.fanOutDangerAlert(context.Background(), verdict, "A동 1층", "프레스 구역")

	// Event persistence failed but the notification broadcast still ran.
	assert.Len(t, f.sink.notifications, 2)
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []EventRecord
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, event EventRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestFanOutToleratesPublisherFailure(t *testing.T) {
	f := newAnalyzerFixture(t, nil, "user1")
	f.analyzer.publisher = &capturingPublisher{err: errors.NewStd("broker down")}

	verdict := &Verdict{
		IsDangerous:       true,
		PredictedClass:    ClassEmergency,
		DangerProbability: 0.4,
	}
	f.analyzer.fanOutDangerAlert(context.Background(), verdict, "A동 1층", "프레스 구역")

	require.Len(t, f.recorder.events, 1)
	assert.Equal(t, "low", f.recorder.events[0].Severity)
	assert.Contains(t, f.sink.notifications, "user1")
}
