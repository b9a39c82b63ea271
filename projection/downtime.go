package projection

import (
	"time"

	"workorder-projection-system/models"
)

// IsHalted reports whether production is paused on the given date by at least
// one BLOCKING incident. Incident spans are inclusive at day granularity: the
// start is floored to start-of-day and the end ceiled to end-of-day. An
// incident with no end time is ongoing through now. An incident with a zero
// start time never halts (fail-open on malformed timestamps).
func IsHalted(date time.Time, incidents []models.DowntimeIncident, now time.Time) bool {
	day := DayOf(date)
	for _, inc := range incidents {
		if inc.Mode != models.DowntimeBlocking {
			continue
		}
		if inc.StartTime.IsZero() {
			continue
		}
		from := DayOf(inc.StartTime)
		until := now
		if inc.EndTime != nil && !inc.EndTime.IsZero() {
			until = *inc.EndTime
		}
		to := DayOf(until)
		if !day.Before(from) && !day.After(to) {
			return true
		}
	}
	return false
}
