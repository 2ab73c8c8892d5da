package timedataset

import (
	"errors"
	"math"
	"time"
)

var ErrCannotInferFreq = errors.New("cannot infer frequency from time slice")

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}

	lastTime = t[len(t)-1]
	return lastTime
}

// EstimateFreq returns the most common interval between consecutive points, preferring the
// smaller interval on ties.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		delta := t[i].Sub(t[i-1])
		frequencies[delta] += 1
	}

	var maxCnt int
	maxDelta := time.Duration(math.MaxInt64)

	for delta, cnt := range frequencies {
		if cnt > maxCnt || (cnt == maxCnt && delta < maxDelta) {
			maxCnt = cnt
			maxDelta = delta
		}
	}
	return maxDelta, nil
}

// MonthlyStep reports whether every point is a whole, constant number of calendar months after
// the previous one and returns that number of months.
func (t TimeSlice) MonthlyStep() (int, bool) {
	if len(t) < 2 {
		return 0, false
	}
	months := monthsBetween(t[0], t[1])
	if months < 1 {
		return 0, false
	}
	for i := 1; i < len(t); i++ {
		if !t[i-1].AddDate(0, months, 0).Equal(t[i]) {
			return 0, false
		}
	}
	return months, true
}

// MonthEndStep reports whether every point falls on the last day of its month with a constant
// number of calendar months between points and returns that number of months.
func (t TimeSlice) MonthEndStep() (int, bool) {
	if len(t) < 2 {
		return 0, false
	}
	months := monthsBetween(t[0], t[1])
	if months < 1 {
		return 0, false
	}
	for i := range t {
		if !isMonthEnd(t[i]) {
			return 0, false
		}
		if i > 0 && monthsBetween(t[i-1], t[i]) != months {
			return 0, false
		}
	}
	return months, true
}

func isMonthEnd(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}

// monthEnd returns the last day of the month k months after t keeping t's time of day
func monthEnd(t time.Time, k int) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month+time.Month(k)+1, 0, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
