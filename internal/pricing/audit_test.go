package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedAuditor(enabled bool) (*Auditor, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return NewAuditor(zap.New(core).Sugar(), enabled), logs
}

func TestAuditorAcceptsConsistentPayload(t *testing.T) {
	a, logs := newObservedAuditor(true)

	ok := a.Check(PricedVariant{
		ProductID:    7,
		Size:         "M",
		BasePrice:    15000,
		RegularPrice: 20000,
		FinalPrice:   13500,
		VariantOffer: 10,
	})

	assert.True(t, ok)
	assert.Zero(t, logs.Len())
}

func TestAuditorToleratesFloatNoise(t *testing.T) {
	a, logs := newObservedAuditor(true)

	ok := a.Check(PricedVariant{
		BasePrice:    15000,
		RegularPrice: 20000,
		FinalPrice:   13500.009, // inside the 0.01 epsilon
		VariantOffer: 10,
	})

	assert.True(t, ok)
	assert.Zero(t, logs.Len())
}

func TestAuditorFlagsDrift(t *testing.T) {
	a, logs := newObservedAuditor(true)

	// cached price predates a category offer bump to 25%
	ok := a.Check(PricedVariant{
		ProductID:     7,
		Size:          "M",
		BasePrice:     15000,
		RegularPrice:  20000,
		FinalPrice:    13500,
		CategoryOffer: 25,
		VariantOffer:  10,
	})

	assert.False(t, ok)
	assert.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "final price drift detected", entry.Message)
	assert.Equal(t, zap.WarnLevel, entry.Level)
}

func TestAuditorDisabledIsNoOp(t *testing.T) {
	a, logs := newObservedAuditor(false)

	ok := a.Check(PricedVariant{BasePrice: 100, RegularPrice: 200, FinalPrice: 1})

	assert.True(t, ok)
	assert.Zero(t, logs.Len())
}
