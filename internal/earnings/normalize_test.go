package earnings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAwareTimes(t *testing.T) {
	n := NewNormalizer(nil, nil)

	tests := []struct {
		name  string
		in    time.Time
		clock string
		zone  string
		date  string
	}{
		{"summer", time.Date(2025, 5, 1, 20, 30, 0, 0, time.UTC), "16:30:00", "EDT", "2025-05-01"},
		{"winter", time.Date(2025, 1, 30, 21, 30, 0, 0, time.UTC), "16:30:00", "EST", "2025-01-30"},
		{"crosses midnight", time.Date(2025, 5, 2, 2, 0, 0, 0, time.UTC), "22:00:00", "EDT", "2025-05-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			et := n.Normalize(RawTime{Time: tt.in})
			assert.True(t, et.HasTime)
			assert.Equal(t, tt.clock, et.Clock())
			assert.Equal(t, tt.zone, et.Zone())
			assert.Equal(t, tt.date, et.Date())
			assert.True(t, et.Time.Equal(tt.in), "instant must not move")
		})
	}
}

func TestNormalizeNaiveUsesSourceZone(t *testing.T) {
	naive := RawTime{Time: time.Date(2025, 5, 1, 16, 30, 0, 0, time.UTC), Naive: true}

	et := NewNormalizer(nil, nil).Normalize(naive)
	assert.Equal(t, "16:30:00", et.Clock())
	assert.Equal(t, "EDT", et.Zone())

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("Failed to load zone: %v", err)
	}
	et = NewNormalizer(tokyo, nil).Normalize(naive)
	assert.Equal(t, "2025-05-01", et.Date())
	assert.Equal(t, "03:30:00", et.Clock())
}

func TestNormalizeDateOnlyHasNoTime(t *testing.T) {
	et := NewNormalizer(nil, nil).Normalize(RawTime{
		Time:     time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		DateOnly: true,
	})

	assert.False(t, et.HasTime)
	assert.Equal(t, "2025-04-30", et.Date())
	assert.Empty(t, et.Clock())
	assert.Empty(t, et.Zone())
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewNormalizer(nil, nil)
	inputs := []RawTime{
		{Time: time.Date(2025, 5, 1, 20, 30, 0, 0, time.UTC)},
		{Time: time.Date(2025, 5, 1, 16, 30, 0, 0, time.UTC), Naive: true},
		{Time: time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), DateOnly: true},
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(RawTime{Time: once.Time, DateOnly: !once.HasTime})
		assert.True(t, once.Time.Equal(twice.Time))
		assert.Equal(t, once.HasTime, twice.HasTime)
		assert.Equal(t, once.Date(), twice.Date())
	}
}

func TestDateWords(t *testing.T) {
	tests := map[int]string{
		1:  "1st May, 2025",
		2:  "2nd May, 2025",
		3:  "3rd May, 2025",
		4:  "4th May, 2025",
		11: "11th May, 2025",
		12: "12th May, 2025",
		13: "13th May, 2025",
		21: "21st May, 2025",
		22: "22nd May, 2025",
		23: "23rd May, 2025",
		31: "31st May, 2025",
	}
	for day, want := range tests {
		et := EarningsTime{Time: time.Date(2025, 5, day, 0, 0, 0, 0, Eastern())}
		assert.Equal(t, want, et.DateWords())
	}
}
