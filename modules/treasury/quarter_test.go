package treasury

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuarterOf(t *testing.T) {
	expected := map[time.Month]int{
		time.January:   1,
		time.February:  1,
		time.March:     1,
		time.April:     2,
		time.May:       2,
		time.June:      2,
		time.July:      3,
		time.August:    3,
		time.September: 3,
		time.October:   4,
		time.November:  4,
		time.December:  4,
	}
	for month, quarter := range expected {
		ts := time.Date(2026, month, 15, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, quarter, QuarterOf(ts), "month %s", month)
	}
}

func TestQuarterTimezoneResolve(t *testing.T) {
	// 2026-04-01 01:00 in UTC+3 is still 2026-03-31 22:00 UTC: the quarter
	// depends on which clock is read.
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := time.Date(2026, time.April, 1, 1, 0, 0, 0, loc)

	assert.Equal(t, 1, QuarterOf(QuarterTimezoneUTC.Resolve(ts)))
	assert.Equal(t, 2, QuarterOf(ts))
}

func TestQuarterTimezoneIsSupported(t *testing.T) {
	assert.True(t, QuarterTimezoneUTC.IsSupported())
	assert.True(t, QuarterTimezoneLocal.IsSupported())
	assert.False(t, QuarterTimezone("pst").IsSupported())
	assert.False(t, QuarterTimezone("").IsSupported())
}
