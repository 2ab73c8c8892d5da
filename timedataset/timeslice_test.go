package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTime(t *testing.T) {
	testData := map[string]struct {
		tSlice   TimeSlice
		expected time.Time
	}{
		"nil input for start time": {
			tSlice:   nil,
			expected: time.Time{},
		},
		"valid start time": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
			}),
			expected: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.tSlice.StartTime()
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestEndTime(t *testing.T) {
	testData := map[string]struct {
		tSlice   TimeSlice
		expected time.Time
	}{
		"nil input for end time": {
			tSlice:   nil,
			expected: time.Time{},
		},
		"valid end time": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
			}),
			expected: time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.tSlice.EndTime()
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestEstimateFreq(t *testing.T) {
	testData := map[string]struct {
		tSlice   TimeSlice
		expected time.Duration
		err      error
	}{
		"estimate with nil timedataset": {
			tSlice: nil,
			err:    ErrCannotInferFreq,
		},
		"consistent frequencies": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
			}),
			expected: 24 * time.Hour,
		},
		"multiple frequencies": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 3, 1, 0, 0, 0, time.UTC),
			}),
			expected: 24 * time.Hour,
		},
		"multiple frequencies with same counts": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 3, 1, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 3, 2, 0, 0, 0, time.UTC),
			}),
			expected: time.Hour,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			freq, err := td.tSlice.EstimateFreq()
			if td.err != nil {
				assert.EqualError(t, err, td.err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, freq)
		})
	}
}

func TestMonthlyStep(t *testing.T) {
	testData := map[string]struct {
		tSlice   TimeSlice
		expected int
		ok       bool
	}{
		"nil input": {
			tSlice: nil,
		},
		"daily": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
			}),
		},
		"monthly": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 2, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 3, 1, 0, 0, 0, 0, time.UTC),
			}),
			expected: 1,
			ok:       true,
		},
		"monthly with gap": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 2, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 4, 1, 0, 0, 0, 0, time.UTC),
			}),
		},
		"yearly": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1971, 1, 1, 0, 0, 0, 0, time.UTC),
			}),
			expected: 12,
			ok:       true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			months, ok := td.tSlice.MonthlyStep()
			assert.Equal(t, td.ok, ok)
			assert.Equal(t, td.expected, months)
		})
	}
}

func TestMonthEndStep(t *testing.T) {
	monthEnds := make(TimeSlice, 0, 24)
	for i := 1; i <= 24; i++ {
		monthEnds = append(monthEnds, time.Date(2020, time.Month(i)+1, 0, 0, 0, 0, 0, time.UTC))
	}

	testData := map[string]struct {
		tSlice   TimeSlice
		expected int
		ok       bool
	}{
		"nil input": {
			tSlice: nil,
		},
		"month ends": {
			tSlice:   monthEnds,
			expected: 1,
			ok:       true,
		},
		"quarter ends": {
			tSlice: TimeSlice([]time.Time{
				time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 6, 30, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 9, 30, 0, 0, 0, 0, time.UTC),
			}),
			expected: 3,
			ok:       true,
		},
		"first of month": {
			tSlice: TimeSlice([]time.Time{
				time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
			}),
		},
		"not every point a month end": {
			tSlice: TimeSlice([]time.Time{
				time.Date(2020, 4, 30, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 5, 30, 0, 0, 0, 0, time.UTC),
			}),
		},
		"uneven month gap": {
			tSlice: TimeSlice([]time.Time{
				time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 4, 30, 0, 0, 0, 0, time.UTC),
			}),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			months, ok := td.tSlice.MonthEndStep()
			assert.Equal(t, td.ok, ok)
			assert.Equal(t, td.expected, months)
		})
	}

	// month ends are not a constant day of month so calendar month stepping rejects them
	_, ok := monthEnds.MonthlyStep()
	assert.False(t, ok)
}
