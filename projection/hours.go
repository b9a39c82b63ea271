package projection

import (
	"time"

	"workorder-projection-system/models"
)

// maxProjectionDays caps the reduced-fidelity day walk. 730 calendar days
// (two years) comfortably exceeds any realistic remaining-hours figure and
// bounds the walk when a rule's specific dates blank out the calendar.
const maxProjectionDays = 730

// ProjectFromHours projects a completion date from an aggregate
// remaining-hours figure alone, for orders whose steps are not individually
// tracked. It applies the same eight-hour day-buckets and end-of-shift cutoff
// as the line projector but consults only the working calendar, not downtime
// incidents. A non-positive figure returns the start date unchanged.
func ProjectFromHours(start time.Time, hoursRemaining float64, holidayKey string, rules models.RuleSet, now time.Time) time.Time {
	if hoursRemaining <= 0 {
		return start
	}
	rule := RuleForKey(holidayKey, rules)

	cursor := DayOf(start)
	if earliest := effectiveEarliestStart(start, now); cursor.Before(earliest) {
		cursor = earliest
	}

	remaining := bucketsFor(hoursRemaining)
	last := cursor
	for scanned := 0; remaining > 0 && scanned < maxProjectionDays; scanned++ {
		if IsWorkingDay(cursor, rule) {
			last = cursor
			remaining--
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return last
}
