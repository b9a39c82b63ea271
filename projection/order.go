package projection

import (
	"time"

	"workorder-projection-system/models"
)

// ProjectOrder runs the line projector over every parallel line of the
// request's model and aggregates the results. When a critical-line override
// (request first, then model) names an existing line, only that line is
// projected; otherwise the order finishes with its slowest line. An override
// naming an absent line is reported via OverrideIgnored and the max-of-lines
// fallback is used, never an empty result.
func ProjectOrder(req models.ProjectionRequest) models.ProjectionResult {
	rule := RuleForKey(req.HolidayKey, req.Rules)
	lineIDs, lineSteps := partitionLines(req.Model.Steps)

	result := models.ProjectionResult{
		OrderID:    req.OrderID,
		LineDates:  make(map[string]time.Time, len(lineIDs)),
		ComputedAt: req.Now,
	}

	override := req.CriticalLineOverride
	if override == "" {
		override = req.Model.CriticalLineOverride
	}
	if override != "" {
		if steps, ok := lineSteps[override]; ok {
			date := ProjectLine(req.StartDate, steps, req.StepStates, rule, req.Incidents, req.Now)
			result.LineDates[override] = date
			result.CompletionDate = date
			result.VarianceDays = varianceDays(date, req.TargetDate)
			return result
		}
		result.OverrideIgnored = true
	}

	latest := DayOf(req.StartDate)
	for _, id := range lineIDs {
		date := ProjectLine(req.StartDate, lineSteps[id], req.StepStates, rule, req.Incidents, req.Now)
		result.LineDates[id] = date
		if date.After(latest) {
			latest = date
		}
	}
	result.CompletionDate = latest
	result.VarianceDays = varianceDays(latest, req.TargetDate)
	return result
}

// partitionLines groups steps by parallel line, preserving both the first-seen
// order of lines and the definition order of steps within each line.
func partitionLines(steps []models.ProcessStep) ([]string, map[string][]models.ProcessStep) {
	var ids []string
	byLine := make(map[string][]models.ProcessStep)
	for _, step := range steps {
		id := step.LineID()
		if _, ok := byLine[id]; !ok {
			ids = append(ids, id)
		}
		byLine[id] = append(byLine[id], step)
	}
	return ids, byLine
}

func varianceDays(completion time.Time, target *time.Time) int {
	if target == nil || target.IsZero() {
		return 0
	}
	// Compare calendar days in UTC so a DST transition inside the span
	// cannot shave the difference below a whole day.
	return int(utcDay(completion).Sub(utcDay(*target)).Hours() / 24)
}

func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
