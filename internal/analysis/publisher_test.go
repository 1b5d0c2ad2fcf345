package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundguard/soundguard-go/internal/errors"
)

func TestCombinePublishers(t *testing.T) {
	first := &capturingPublisher{}
	second := &capturingPublisher{}

	t.Run("empty is nil", func(t *testing.T) {
		assert.Nil(t, CombinePublishers())
		assert.Nil(t, CombinePublishers(nil, nil))
	})

	t.Run("single publisher passes through", func(t *testing.T) {
		assert.Equal(t, EventPublisher(first), CombinePublishers(nil, first))
	})

	t.Run("all publishers receive the event", func(t *testing.T) {
		combined := CombinePublishers(first, second)
		require.NotNil(t, combined)

		event := EventRecord{Zone: "A동 1층", Type: "scream", Severity: "high"}
		require.NoError(t, combined.Publish(context.Background(), event))

		require.Len(t, first.events, 1)
		require.Len(t, second.events, 1)
		assert.Equal(t, event, second.events[0])
	})

	t.Run("failure does not stop remaining publishers", func(t *testing.T) {
		failing := &capturingPublisher{err: errors.NewStd("broker down")}
		healthy := &capturingPublisher{}

		combined := CombinePublishers(failing, healthy)
		err := combined.Publish(context.Background(), EventRecord{Type: "help"})

		assert.Error(t, err)
		assert.Len(t, healthy.events, 1)
	})
}
