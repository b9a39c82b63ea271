package activities

import (
	"context"
	"fmt"
	"time"

	"workorder-projection-system/models"

	"go.temporal.io/sdk/activity"
)

// ReportActivities contains the reporting activities that push projection
// results to the planning side of the system
type ReportActivities struct{}

// NewReportActivities creates a new ReportActivities instance
func NewReportActivities() *ReportActivities {
	return &ReportActivities{}
}

// PublishProjection pushes a freshly computed projection to the planning
// board so downstream views pick up the new date.
func (r *ReportActivities) PublishProjection(ctx context.Context, order models.WorkOrder, result models.ProjectionResult) (string, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Publishing projection", "order_id", order.ID,
		"completion_date", result.CompletionDate.Format("2006-01-02"))

	// Simulate the planning-board push with a context-aware wait
	select {
	case <-time.After(500 * time.Millisecond):
		// Push complete
	case <-ctx.Done():
		return "", ctx.Err()
	}

	activity.RecordHeartbeat(ctx, "projection published")

	// Deterministic report ID based on activity info
	info := activity.GetInfo(ctx)
	reportID := fmt.Sprintf("PROJ-%s-%d", order.Number, info.Attempt)

	logger.Info("Projection published", "order_id", order.ID, "report_id", reportID)
	return reportID, nil
}

// RecordScheduleVariance records how far the projected completion sits from
// the order's target date. Orders without a target have no variance to record.
func (r *ReportActivities) RecordScheduleVariance(ctx context.Context, order models.WorkOrder, result models.ProjectionResult) error {
	logger := activity.GetLogger(ctx)

	if order.TargetDate == nil || order.TargetDate.IsZero() {
		return fmt.Errorf("order %s has no target date", order.ID)
	}

	select {
	case <-time.After(300 * time.Millisecond):
		// Recorded
	case <-ctx.Done():
		return ctx.Err()
	}

	if result.VarianceDays > 0 {
		logger.Warn("Order projected late", "order_id", order.ID,
			"variance_days", result.VarianceDays,
			"target_date", order.TargetDate.Format("2006-01-02"))
	} else {
		logger.Info("Order on schedule", "order_id", order.ID,
			"variance_days", result.VarianceDays)
	}
	return nil
}
