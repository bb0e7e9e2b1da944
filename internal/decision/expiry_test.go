package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCheckExpiry(t *testing.T) {
	tests := []struct {
		name        string
		expiry      time.Time
		reference   time.Time
		expired     bool
		daysOverdue int
	}{
		{"future expiry valid", date(2030, 1, 1), date(2024, 1, 1), false, 0},
		{"past expiry rejected", date(2023, 1, 1), date(2024, 1, 1), true, 365},
		{"expiring today still valid", date(2024, 1, 1), date(2024, 1, 1), false, 0},
		{"expired yesterday", date(2023, 12, 31), date(2024, 1, 1), true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckExpiry(tt.expiry, tt.reference)
			assert.Equal(t, tt.expired, result.Expired)
			assert.Equal(t, tt.daysOverdue, result.DaysOverdue)
		})
	}
}

func TestCheckExpiryIgnoresTimeOfDay(t *testing.T) {
	expiry := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	reference := time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)

	result := CheckExpiry(expiry, reference)
	assert.False(t, result.Expired, "same calendar day is not expired")
}
