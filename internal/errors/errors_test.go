package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder_Defaults(t *testing.T) {
	t.Parallel()

	ee := Newf("something broke").Build()

	assert.Equal(t, "something broke", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}

func TestErrorBuilder_FullChain(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("connection refused")
	ee := New(base).
		Component("inference").
		Category(CategoryInference).
		Context("endpoint", "/api/predict").
		Timing("predict", 1500*time.Millisecond).
		Build()

	assert.Equal(t, "inference", ee.Component)
	assert.Equal(t, CategoryInference, ee.Category)

	ctx := ee.GetContext()
	require.NotNil(t, ctx)
	assert.Equal(t, "/api/predict", ctx["endpoint"])
	assert.Equal(t, int64(1500), ctx["duration_ms"])
	assert.Equal(t, "predict", ctx["operation"])

	// Unwrap reaches the original error
	assert.Equal(t, base, ee.Unwrap())
}

func TestEnhancedError_IsMatchesCategory(t *testing.T) {
	t.Parallel()

	a := Newf("a").Category(CategoryDatabase).Build()
	b := Newf("b").Category(CategoryDatabase).Build()
	c := Newf("c").Category(CategoryNetwork).Build()

	assert.True(t, a.Is(b))
	assert.False(t, a.Is(c))
}

func TestEnhancedError_WrapsSentinel(t *testing.T) {
	t.Parallel()

	sentinel := NewStd("record not found")
	ee := New(fmt.Errorf("lookup user: %w", sentinel)).
		Category(CategoryNotFound).
		Build()

	assert.True(t, Is(ee, sentinel))
	assert.True(t, HasCategory(ee, CategoryNotFound))
	assert.False(t, HasCategory(ee, CategoryDatabase))
}

func TestGetContext_ReturnsCopy(t *testing.T) {
	t.Parallel()

	ee := Newf("x").Context("k", "v").Build()
	ctx := ee.GetContext()
	ctx["k"] = "mutated"

	assert.Equal(t, "v", ee.GetContext()["k"])
}
