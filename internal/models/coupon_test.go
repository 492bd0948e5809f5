package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponValidAtIncludesExpiryInstant(t *testing.T) {
	c := Coupon{Expiry: mustTime(t, "2026-01-01T00:00:00Z")}

	assert.True(t, c.ValidAt(mustTime(t, "2025-12-31T23:59:59Z")))
	assert.True(t, c.ValidAt(c.Expiry))
	assert.False(t, c.ValidAt(mustTime(t, "2026-01-01T00:00:01Z")))
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}
