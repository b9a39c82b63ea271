package activities

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"workorder-projection-system/models"
	"workorder-projection-system/projection"

	"go.temporal.io/sdk/activity"
)

// Activities contains the projection activities
type Activities struct {
	httpClient      *http.Client
	calendarBaseURL string
}

// NewActivities creates a new Activities instance
func NewActivities(calendarBaseURL string) *Activities {
	return &Activities{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		calendarBaseURL: calendarBaseURL,
	}
}

// FetchHolidayRules loads the current working-calendar rules from the
// calendar service.
func (a *Activities) FetchHolidayRules(ctx context.Context) (models.RuleSet, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Fetching holiday rules", "url", a.calendarBaseURL)

	url := fmt.Sprintf("%s/calendar/rules", a.calendarBaseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rules request: %w", err)
	}

	activity.RecordHeartbeat(ctx, "calling calendar service")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call calendar service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("calendar service returned status %d: %s", resp.StatusCode, string(body))
	}

	var rules models.RuleSet
	if err := json.NewDecoder(resp.Body).Decode(&rules); err != nil {
		return nil, fmt.Errorf("failed to decode rules response: %w", err)
	}

	logger.Info("Holiday rules fetched", "count", len(rules))
	return rules, nil
}

// ComputeProjection runs the projection engine over the request and returns
// the projected completion date with per-line diagnostics. The engine is pure
// and deterministic; the request's Now field (supplied by the workflow) is the
// only clock it sees.
func (a *Activities) ComputeProjection(ctx context.Context, req models.ProjectionRequest) (models.ProjectionResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Computing projection", "order_id", req.OrderID, "steps", len(req.Model.Steps))

	if req.StartDate.IsZero() {
		return models.ProjectionResult{}, fmt.Errorf("order %s has no start date", req.OrderID)
	}

	activity.RecordHeartbeat(ctx, "projecting order")

	result := projection.ProjectOrder(req)

	if result.OverrideIgnored {
		logger.Warn("Critical-line override named an absent line, using max-of-lines",
			"order_id", req.OrderID, "override", req.CriticalLineOverride)
	}

	logger.Info("Projection computed",
		"order_id", req.OrderID,
		"completion_date", result.CompletionDate.Format("2006-01-02"),
		"lines", len(result.LineDates))
	return result, nil
}

// EstimateFromRemainingHours projects a provisional completion date from an
// aggregate remaining-hours figure, for orders whose model steps are not yet
// individually tracked.
func (a *Activities) EstimateFromRemainingHours(ctx context.Context, start time.Time, hoursRemaining float64, holidayKey string, rules models.RuleSet) (time.Time, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Estimating from remaining hours", "hours", hoursRemaining, "holiday_key", holidayKey)

	if hoursRemaining < 0 {
		return time.Time{}, fmt.Errorf("negative remaining hours: %.1f", hoursRemaining)
	}

	date := projection.ProjectFromHours(start, hoursRemaining, holidayKey, rules, time.Now())
	return date, nil
}
