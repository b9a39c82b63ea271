// Package projection implements the schedule projection engine: a pure,
// stateless simulation that turns an order's process model, per-step state,
// working calendar and downtime log into a projected completion date.
package projection

import (
	"time"

	"workorder-projection-system/models"
)

const (
	// HoursPerDay is the size of one day-bucket: a working day absorbs at most
	// eight hours of a step's estimate, with no fractional carry-over.
	HoursPerDay = 8.0

	// EndOfShiftHour is the local hour after which unstarted work can no
	// longer be credited to the current day.
	EndOfShiftHour = 21
)

// Built-in holiday keys used when the caller's rule set has no entry.
const (
	RuleKeyStandard    = "standard"
	RuleKeySixDay      = "six-day"
	RuleKeyAlternating = "alternating"
	RuleKeyContinuous  = "continuous"
)

// DefaultRules returns the built-in rule set. Unrecognized holiday keys fall
// back to the standard five-day week.
func DefaultRules() models.RuleSet {
	return models.RuleSet{
		RuleKeyStandard:    {Kind: models.HolidayAllWeekend},
		RuleKeySixDay:      {Kind: models.HolidaySundayOnly},
		RuleKeyAlternating: {Kind: models.HolidayAlternatingSaturday},
		RuleKeyContinuous:  {Kind: models.HolidayNoWeeklyRest},
	}
}

// RuleForKey looks up the rule for a holiday key, consulting the caller's set
// first, then the built-in defaults, then the standard five-day week.
func RuleForKey(key string, rules models.RuleSet) models.HolidayRule {
	if rule, ok := rules[key]; ok {
		return rule
	}
	if rule, ok := DefaultRules()[key]; ok {
		return rule
	}
	return models.HolidayRule{Kind: models.HolidayAllWeekend}
}

// IsWorkingDay reports whether production runs on the given date under the
// rule. Specific non-working dates override the weekly kind. A zero date is
// treated as working: fail-open on malformed input, kept for product review
// rather than tightened here.
func IsWorkingDay(date time.Time, rule models.HolidayRule) bool {
	if date.IsZero() {
		return true
	}
	day := DayOf(date)
	for _, nwd := range rule.NonWorkingDates {
		if nwd.IsZero() {
			continue
		}
		if DayOf(nwd).Equal(day) {
			return false
		}
	}
	switch rule.Kind {
	case models.HolidayAllWeekend:
		return day.Weekday() != time.Saturday && day.Weekday() != time.Sunday
	case models.HolidaySundayOnly:
		return day.Weekday() != time.Sunday
	case models.HolidayAlternatingSaturday:
		if day.Weekday() == time.Sunday {
			return false
		}
		if day.Weekday() == time.Saturday {
			// Even ISO weeks rest, odd ones work. In 53-week ISO years the
			// parity repeats across the year boundary.
			_, week := day.ISOWeek()
			return week%2 == 1
		}
		return true
	case models.HolidayNoWeeklyRest:
		return true
	default:
		return true
	}
}

// DayOf normalizes a time to calendar-day granularity in its own location.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
