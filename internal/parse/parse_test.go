package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-facilities-backend/internal/model"
)

func TestTimestamp(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		raw       string
		expected  time.Time
		expectErr bool
	}{
		{
			name:     "RFC3339 with offset",
			raw:      "2026-10-17T10:00:00+05:30",
			expected: time.Date(2026, 10, 17, 4, 30, 0, 0, time.UTC),
		},
		{
			name:     "RFC3339 UTC",
			raw:      "2026-10-17T04:30:00Z",
			expected: time.Date(2026, 10, 17, 4, 30, 0, 0, time.UTC),
		},
		{
			name:     "Local wall clock",
			raw:      "2026-10-17 10:00",
			expected: time.Date(2026, 10, 17, 4, 30, 0, 0, time.UTC),
		},
		{
			name:     "Local with seconds and surrounding spaces",
			raw:      " 2026-10-17T10:45:00 ",
			expected: time.Date(2026, 10, 17, 5, 15, 0, 0, time.UTC),
		},
		{name: "Empty", raw: "", expectErr: true},
		{name: "Garbage", raw: "tomorrow at ten", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Timestamp(tc.raw, ist)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.expected), "got %s", got)
		})
	}
}

func TestDate(t *testing.T) {
	got, err := Date("2026-10-17", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), got)

	_, err = Date("17/10/2026", time.UTC)
	assert.Error(t, err)
}

func TestResourceType(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  model.ResourceType
		expectErr bool
	}{
		{raw: "LAUNDRY", expected: model.ResourceLaundry},
		{raw: "badminton", expected: model.ResourceBadminton},
		{raw: "", expected: ""},
		{raw: "pool", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ResourceType(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
