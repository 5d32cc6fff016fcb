package duration_test

import (
	"testing"
	"time"

	"github.com/aretw0/loamcal/pkg/duration"
	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "0 minutes"},
		{in: 30 * time.Second, want: "0 minutes"},
		{in: time.Minute, want: "1 minute"},
		{in: 45 * time.Minute, want: "45 minutes"},
		{in: time.Hour, want: "1 hour"},
		{in: 90 * time.Minute, want: "1 hour 30 minutes"},
		{in: 48 * time.Hour, want: "2 days"},
		{in: 25*time.Hour + 5*time.Minute, want: "1 day 1 hour 5 minutes"},
		{in: -2 * time.Hour, want: "-2 hours"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, duration.Text(tt.in))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1 hour 30 minutes", duration.Format("20240101090000000", "20240101103000000"))
	assert.Equal(t, "1 day", duration.Format("20240101", "20240102"))
	assert.Equal(t, "", duration.Format("garbage", "20240102"))
	assert.Equal(t, "", duration.Format("20240101", ""))
}

func TestBetween(t *testing.T) {
	d, ok := duration.Between("20240101090000000", "20240101110000000")
	assert.True(t, ok)
	assert.Equal(t, 2*time.Hour, d)

	_, ok = duration.Between("", "20240101110000000")
	assert.False(t, ok)
}
