package models

import "time"

// ProjectionRequest carries everything one projection run needs. The engine is
// stateless, so the request is rebuilt fresh on every recomputation.
type ProjectionRequest struct {
	OrderID              string               `json:"order_id"`
	StartDate            time.Time            `json:"start_date"`
	Model                ProcessModel         `json:"model"`
	StepStates           map[string]StepState `json:"step_states"`
	HolidayKey           string               `json:"holiday_key"`
	Incidents            []DowntimeIncident   `json:"incidents,omitempty"`
	CriticalLineOverride string               `json:"critical_line_override,omitempty"`
	TargetDate           *time.Time           `json:"target_date,omitempty"`
	Now                  time.Time            `json:"now"`
	Rules                RuleSet              `json:"rules,omitempty"`
}

// ProjectionResult is the outcome of one projection run
type ProjectionResult struct {
	OrderID        string               `json:"order_id"`
	CompletionDate time.Time            `json:"completion_date"`
	LineDates      map[string]time.Time `json:"line_dates"`
	// OverrideIgnored is set when a critical-line override named a line absent
	// from the model, and the max-of-lines fallback was used instead.
	OverrideIgnored bool `json:"override_ignored"`
	// VarianceDays is completion minus target in calendar days; zero when the
	// order has no target date.
	VarianceDays int       `json:"variance_days"`
	ComputedAt   time.Time `json:"computed_at"`
}

// StepUpdate is the signal payload reporting a step's state change
type StepUpdate struct {
	StepID string    `json:"step_id"`
	State  StepState `json:"state"`
}

// TrackingState represents the current state of the tracking workflow
type TrackingState struct {
	OrderID       string               `json:"order_id"`
	StepStates    map[string]StepState `json:"step_states"`
	Incidents     []DowntimeIncident   `json:"incidents,omitempty"`
	Projection    *ProjectionResult    `json:"projection,omitempty"`
	StepsTotal    int                  `json:"steps_total"`
	StepsTerminal int                  `json:"steps_terminal"`
	Refreshes     int                  `json:"refreshes"`
	Closed        bool                 `json:"closed"`
	LastUpdated   time.Time            `json:"last_updated"`
}
