package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	start := fixedNow.Add(-3 * Day)

	span, closed := Window(start, fixedNow.Add(-Day), fixedNow)
	assert.Equal(t, 2*Day, span)
	assert.True(t, closed)

	span, closed = Window(start, time.Time{}, fixedNow)
	assert.Equal(t, 3*Day, span)
	assert.False(t, closed)
}

func TestDefaultLimits(t *testing.T) {
	limits := DefaultLimits()
	assert.Equal(t, 421*Day, limits.MaxSpan)
	assert.Equal(t, Week, limits.SettleMargin)
}
