package workflows

import (
	"fmt"
	"time"

	"workorder-projection-system/activities"
	"workorder-projection-system/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	ProjectionRefreshWorkflowName = "ProjectionRefreshWorkflow"
)

// ProjectionRefreshWorkflow is a child workflow that runs one projection
// refresh: fetch the current calendar rules, compute the projection, publish
// it. A calendar-service outage degrades to the built-in default rules rather
// than failing the refresh.
func ProjectionRefreshWorkflow(ctx workflow.Context, order models.WorkOrder, req models.ProjectionRequest) (models.ProjectionResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("ProjectionRefreshWorkflow started", "order_id", order.ID)

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 20 * time.Second,
		HeartbeatTimeout:    5 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var act *activities.Activities
	var reportAct *activities.ReportActivities

	// Step 1: Fetch calendar rules
	var rules models.RuleSet
	err := workflow.ExecuteActivity(ctx, act.FetchHolidayRules).Get(ctx, &rules)
	if err != nil {
		logger.Warn("Calendar rules unavailable, using built-in defaults",
			"order_id", order.ID, "error", err)
		rules = nil
	}
	req.Rules = rules

	// Step 2: Compute projection
	var result models.ProjectionResult
	err = workflow.ExecuteActivity(ctx, act.ComputeProjection, req).Get(ctx, &result)
	if err != nil {
		logger.Error("Projection computation failed", "order_id", order.ID, "error", err)
		return models.ProjectionResult{}, fmt.Errorf("projection failed: %w", err)
	}

	// Step 3: Publish
	var reportID string
	err = workflow.ExecuteActivity(ctx, reportAct.PublishProjection, order, result).Get(ctx, &reportID)
	if err != nil {
		logger.Warn("Failed to publish projection", "order_id", order.ID, "error", err)
		// The computed result still stands even if the push fails
	} else {
		logger.Info("Projection refresh published", "order_id", order.ID, "report_id", reportID)
	}

	return result, nil
}
