package treasury

import (
	"time"
)

// QuarterOf maps a timestamp to its fiscal quarter using calendar month
// groupings: Jan-Mar -> 1, Apr-Jun -> 2, Jul-Sep -> 3, Oct-Dec -> 4.
// The timestamp's own location decides which month is observed; callers pick
// UTC or local explicitly via QuarterTimezone.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// QuarterTimezone selects which clock the burn-schedule gate reads.
// Whether a quarter rolls over at midnight UTC or local midnight is
// deployment policy, so it is configuration, not a guess.
type QuarterTimezone string

const (
	QuarterTimezoneUTC   QuarterTimezone = "utc"
	QuarterTimezoneLocal QuarterTimezone = "local"
)

func (q QuarterTimezone) IsSupported() bool {
	return q == QuarterTimezoneUTC || q == QuarterTimezoneLocal
}

func (q QuarterTimezone) String() string {
	return string(q)
}

// Resolve returns t in the configured timezone.
func (q QuarterTimezone) Resolve(t time.Time) time.Time {
	if q == QuarterTimezoneLocal {
		return t.Local()
	}
	return t.UTC()
}
