package workflows

import (
	"context"
	"testing"
	"time"

	"workorder-projection-system/activities"
	"workorder-projection-system/models"
	"workorder-projection-system/projection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

// trackingTestEnv wires a workflow environment with the refresh child
// workflow registered and the activities backed by the real engine.
func trackingTestEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.SetStartTime(monday.Add(10 * time.Hour))
	env.RegisterWorkflow(ProjectionRefreshWorkflow)

	act := activities.NewActivities("http://calendar.invalid")
	reportAct := activities.NewReportActivities()

	env.OnActivity(act.FetchHolidayRules, mock.Anything).
		Return(models.RuleSet(nil), nil)
	env.OnActivity(act.ComputeProjection, mock.Anything, mock.Anything).
		Return(func(ctx context.Context, r models.ProjectionRequest) (models.ProjectionResult, error) {
			return projection.ProjectOrder(r), nil
		})
	env.OnActivity(reportAct.PublishProjection, mock.Anything, mock.Anything, mock.Anything).
		Return("PROJ-1", nil)
	env.OnActivity(reportAct.RecordScheduleVariance, mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	return env
}

func queryState(t *testing.T, env *testsuite.TestWorkflowEnvironment) models.TrackingState {
	val, err := env.QueryWorkflow(QueryProjection)
	require.NoError(t, err)
	var state models.TrackingState
	require.NoError(t, val.Get(&state))
	return state
}

func TestTrackingWorkflowCompletesWhenAllStepsTerminal(t *testing.T) {
	env := trackingTestEnv(t)
	order := sampleOrder()
	target := monday.AddDate(0, 0, 10)
	order.TargetDate = &target

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalStepUpdated, models.StepUpdate{
			StepID: "cut",
			State:  models.CompletedStep(monday.Add(16 * time.Hour)),
		})
	}, time.Minute)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalStepUpdated, models.StepUpdate{
			StepID: "paint",
			State:  models.CompletedStep(monday.AddDate(0, 0, 3)),
		})
	}, 2*time.Minute)

	env.ExecuteWorkflow(WorkOrderTrackingWorkflow, order)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	state := queryState(t, env)
	assert.Equal(t, 2, state.StepsTotal)
	assert.Equal(t, 2, state.StepsTerminal)
	assert.Equal(t, 3, state.Refreshes, "initial projection plus one per step update")
	require.NotNil(t, state.Projection)
	assert.True(t, monday.AddDate(0, 0, 3).Equal(state.Projection.CompletionDate),
		"recorded finishes are authoritative, got %s", state.Projection.CompletionDate)
	env.AssertExpectations(t)
}

func TestTrackingWorkflowCloseSignalEndsTracking(t *testing.T) {
	env := trackingTestEnv(t)
	order := sampleOrder()

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalCloseOrder, "cancelled by planner")
	}, time.Minute)

	env.ExecuteWorkflow(WorkOrderTrackingWorkflow, order)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	state := queryState(t, env)
	assert.True(t, state.Closed)
	assert.Equal(t, 0, state.StepsTerminal)
	assert.Equal(t, 1, state.Refreshes, "only the initial projection ran")
}

func TestTrackingWorkflowIgnoresUnknownStep(t *testing.T) {
	env := trackingTestEnv(t)
	order := sampleOrder()

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalStepUpdated, models.StepUpdate{
			StepID: "polish", // not in the model
			State:  models.CompletedStep(monday),
		})
	}, time.Minute)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalCloseOrder, "done testing")
	}, 2*time.Minute)

	env.ExecuteWorkflow(WorkOrderTrackingWorkflow, order)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	state := queryState(t, env)
	assert.NotContains(t, state.StepStates, "polish")
	assert.Equal(t, 1, state.Refreshes, "an ignored update triggers no refresh")
}

func TestTrackingWorkflowDowntimePushesProjection(t *testing.T) {
	env := trackingTestEnv(t)
	order := sampleOrder()

	var initial time.Time
	env.RegisterDelayedCallback(func() {
		initial = queryState(t, env).Projection.CompletionDate
		end := monday.AddDate(0, 0, 2)
		env.SignalWorkflow(SignalDowntimeReported, models.DowntimeIncident{
			ID:        "inc-1",
			StartTime: monday,
			EndTime:   &end,
			Mode:      models.DowntimeBlocking,
			Reason:    "press breakdown",
		})
	}, time.Minute)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalCloseOrder, "done testing")
	}, 2*time.Minute)

	env.ExecuteWorkflow(WorkOrderTrackingWorkflow, order)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	state := queryState(t, env)
	require.NotNil(t, state.Projection)
	require.Len(t, state.Incidents, 1)
	assert.Equal(t, 2, state.Refreshes)
	assert.True(t, state.Projection.CompletionDate.After(initial),
		"three blocked days push completion from %s to %s", initial, state.Projection.CompletionDate)
}

func TestTrackingWorkflowPreCompletedOrderFinishesImmediately(t *testing.T) {
	env := trackingTestEnv(t)
	order := sampleOrder()
	order.StepStates = map[string]models.StepState{
		"cut":   models.CompletedStep(monday.Add(16 * time.Hour)),
		"paint": models.SkippedStep(monday.AddDate(0, 0, 1)),
	}

	env.ExecuteWorkflow(WorkOrderTrackingWorkflow, order)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	state := queryState(t, env)
	assert.Equal(t, 2, state.StepsTerminal)
	assert.Equal(t, 1, state.Refreshes)
	require.NotNil(t, state.Projection)
	assert.True(t, monday.AddDate(0, 0, 1).Equal(state.Projection.CompletionDate))
}
