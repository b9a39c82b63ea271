package projection

import (
	"math"
	"time"

	"workorder-projection-system/models"
)

// maxDaySearch bounds the scan for the next working, non-halted day when
// placing one day-bucket. A calendar that never yields an eligible day within
// this window (every specific date blocked, or a blocking incident with no
// end) would otherwise loop forever; the bucket is placed on the last day
// examined instead, trading accuracy for termination in that pathology.
const maxDaySearch = 100

// ProjectLine walks the ordered steps of one parallel production line and
// returns the last calendar day on which the line has work recorded or
// scheduled. Terminal steps contribute their authoritative end dates; pending
// and in-progress steps consume their estimates in fixed eight-hour
// day-buckets placed on eligible days only.
func ProjectLine(start time.Time, steps []models.ProcessStep, states map[string]models.StepState, rule models.HolidayRule, incidents []models.DowntimeIncident, now time.Time) time.Time {
	cursor := DayOf(start)
	lastWorked := cursor
	earliest := effectiveEarliestStart(start, now)

	for _, step := range steps {
		state := states[step.ID]
		if state.Terminal() {
			end := DayOf(state.AuthoritativeEnd(start))
			if end.After(lastWorked) {
				lastWorked = end
			}
			// Later steps in the line cannot start before a recorded finish.
			if !end.Before(cursor) {
				cursor = end.AddDate(0, 0, 1)
			}
			continue
		}

		// Unstarted work cannot be credited to days already behind us.
		if cursor.Before(earliest) {
			cursor = earliest
		}
		buckets := bucketsFor(step.EstimatedHours)
		for b := 0; b < buckets; b++ {
			cursor = nextEligibleDay(cursor, rule, incidents, now)
			lastWorked = cursor
			cursor = cursor.AddDate(0, 0, 1)
		}
	}

	return lastWorked
}

// effectiveEarliestStart is today, or tomorrow for an order starting today
// once the shift has effectively ended: work that has not yet begun cannot be
// credited to today after hour 21. Orders already in flight keep today as
// their earliest schedulable day regardless of the hour.
func effectiveEarliestStart(start, now time.Time) time.Time {
	day := DayOf(now)
	if now.Hour() >= EndOfShiftHour && DayOf(start).Equal(day) {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// bucketsFor converts an hour estimate to whole day-buckets. Hours are never
// split across a day boundary; a remainder under eight still occupies a day.
func bucketsFor(hours float64) int {
	if hours <= 0 {
		return 0
	}
	return int(math.Ceil(hours / HoursPerDay))
}

// nextEligibleDay advances the cursor past non-working and halted days,
// giving up after maxDaySearch and placing the bucket on the last day
// examined (fail-open rather than fail-fatal).
func nextEligibleDay(cursor time.Time, rule models.HolidayRule, incidents []models.DowntimeIncident, now time.Time) time.Time {
	for i := 0; i < maxDaySearch; i++ {
		if IsWorkingDay(cursor, rule) && !IsHalted(cursor, incidents, now) {
			return cursor
		}
		if i < maxDaySearch-1 {
			cursor = cursor.AddDate(0, 0, 1)
		}
	}
	return cursor
}
