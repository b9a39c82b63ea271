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
	SignalStepUpdated      = "step-updated"
	SignalDowntimeReported = "downtime-reported"
	SignalCloseOrder       = "close-order"
	QueryProjection        = "projection"
)

// WorkOrderTrackingWorkflow is the long-running workflow tracking one work
// order. It holds the per-step state and downtime log, recomputes the
// projected completion date on every state change, and completes once all
// steps are terminal or the order is closed.
func WorkOrderTrackingWorkflow(ctx workflow.Context, order models.WorkOrder) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("WorkOrderTrackingWorkflow started", "order_id", order.ID, "steps", len(order.Model.Steps))

	// Initialize tracking state; steps without a supplied state start pending
	state := models.TrackingState{
		OrderID:     order.ID,
		StepStates:  make(map[string]models.StepState, len(order.Model.Steps)),
		Incidents:   order.Incidents,
		StepsTotal:  len(order.Model.Steps),
		LastUpdated: workflow.Now(ctx),
	}
	for _, step := range order.Model.Steps {
		if s, ok := order.StepStates[step.ID]; ok {
			state.StepStates[step.ID] = s
		} else {
			state.StepStates[step.ID] = models.PendingStep()
		}
	}
	countTerminal(&state)

	// Setup signal channels
	stepChan := workflow.GetSignalChannel(ctx, SignalStepUpdated)
	downtimeChan := workflow.GetSignalChannel(ctx, SignalDowntimeReported)
	closeChan := workflow.GetSignalChannel(ctx, SignalCloseOrder)

	// Setup query handler for the projection snapshot
	err := workflow.SetQueryHandler(ctx, QueryProjection, func() (models.TrackingState, error) {
		return state, nil
	})
	if err != nil {
		return fmt.Errorf("failed to set query handler: %w", err)
	}

	// Version handling for backward compatibility
	v := workflow.GetVersion(ctx, "add-variance-reporting", workflow.DefaultVersion, 1)

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    5 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var reportAct *activities.ReportActivities

	// Initial projection so the order has a date before any signal arrives
	if err := refreshProjection(ctx, order, &state); err != nil {
		logger.Error("Initial projection failed", "order_id", order.ID, "error", err)
		return fmt.Errorf("initial projection failed: %w", err)
	}

	for !(state.StepsTotal > 0 && state.StepsTerminal == state.StepsTotal) {
		changed := false
		selector := workflow.NewSelector(ctx)

		selector.AddReceive(stepChan, func(c workflow.ReceiveChannel, more bool) {
			var update models.StepUpdate
			c.Receive(ctx, &update)
			if _, known := state.StepStates[update.StepID]; !known {
				logger.Warn("Ignoring update for unknown step",
					"order_id", order.ID, "step_id", update.StepID)
				return
			}
			state.StepStates[update.StepID] = update.State
			state.LastUpdated = workflow.Now(ctx)
			countTerminal(&state)
			changed = true
			logger.Info("Step updated via signal", "order_id", order.ID,
				"step_id", update.StepID, "status", update.State.Status)
		})

		selector.AddReceive(downtimeChan, func(c workflow.ReceiveChannel, more bool) {
			var incident models.DowntimeIncident
			c.Receive(ctx, &incident)
			state.Incidents = append(state.Incidents, incident)
			state.LastUpdated = workflow.Now(ctx)
			changed = true
			logger.Info("Downtime reported via signal", "order_id", order.ID,
				"incident_id", incident.ID, "mode", incident.Mode)
		})

		selector.AddReceive(closeChan, func(c workflow.ReceiveChannel, more bool) {
			var reason string
			c.Receive(ctx, &reason)
			state.Closed = true
			state.LastUpdated = workflow.Now(ctx)
			logger.Info("Order closed via signal", "order_id", order.ID, "reason", reason)
		})

		selector.Select(ctx)

		if state.Closed {
			break
		}

		if changed {
			if err := refreshProjection(ctx, order, &state); err != nil {
				logger.Error("Projection refresh failed", "order_id", order.ID, "error", err)
				return fmt.Errorf("projection refresh failed: %w", err)
			}
		}
	}

	// Version 1: record final schedule variance for orders with a target date
	if v >= 1 && order.TargetDate != nil && state.Projection != nil {
		err = workflow.ExecuteActivity(ctx, reportAct.RecordScheduleVariance, order, *state.Projection).Get(ctx, nil)
		if err != nil {
			logger.Warn("Failed to record schedule variance", "order_id", order.ID, "error", err)
			// Don't fail the workflow over a reporting miss
		}
	}

	logger.Info("WorkOrderTrackingWorkflow completed", "order_id", order.ID,
		"refreshes", state.Refreshes, "closed", state.Closed)
	return nil
}

// refreshProjection recomputes the order's projected completion date through
// the refresh child workflow and folds the result into the tracking state.
func refreshProjection(ctx workflow.Context, order models.WorkOrder, state *models.TrackingState) error {
	req := models.ProjectionRequest{
		OrderID:              order.ID,
		StartDate:            order.StartDate,
		Model:                order.Model,
		StepStates:           state.StepStates,
		HolidayKey:           order.HolidayKey,
		Incidents:            state.Incidents,
		CriticalLineOverride: order.CriticalLineOverride,
		TargetDate:           order.TargetDate,
		Now:                  workflow.Now(ctx),
	}

	childWorkflowOptions := workflow.ChildWorkflowOptions{
		WorkflowID:               fmt.Sprintf("projection-%s-%d", order.ID, state.Refreshes),
		WorkflowExecutionTimeout: 2 * time.Minute,
	}
	childCtx := workflow.WithChildOptions(ctx, childWorkflowOptions)

	var result models.ProjectionResult
	err := workflow.ExecuteChildWorkflow(childCtx, ProjectionRefreshWorkflow, order, req).Get(ctx, &result)
	if err != nil {
		return fmt.Errorf("refresh child workflow failed: %w", err)
	}

	state.Projection = &result
	state.Refreshes++
	state.LastUpdated = workflow.Now(ctx)
	return nil
}

func countTerminal(state *models.TrackingState) {
	terminal := 0
	for _, s := range state.StepStates {
		if s.Terminal() {
			terminal++
		}
	}
	state.StepsTerminal = terminal
}
