package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomRate(t *testing.T) {
	cases := []struct {
		in     string
		limit  int64
		period time.Duration
	}{
		{"5-15m", 5, 15 * time.Minute},
		{"100-15m", 100, 15 * time.Minute},
		{"20-10s", 20, 10 * time.Second},
		{"3-1h", 3, time.Hour},
	}
	for _, tc := range cases {
		rate, err := ParseCustomRate(tc.in)
		require.NoError(t, err, "rate %q", tc.in)
		assert.Equal(t, tc.limit, rate.Limit)
		assert.Equal(t, tc.period, rate.Period)
	}
}

func TestParseCustomRateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "10", "10-", "-5m", "ten-5m", "10-5d", "10-5"} {
		_, err := ParseCustomRate(in)
		assert.Error(t, err, "rate %q", in)
	}
}
