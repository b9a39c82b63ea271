package models

import "time"

// GeneralLineID is the implicit line for steps with no parallel line assignment.
const GeneralLineID = "general"

// WorkOrder represents a manufacturing work order moving through its process model
type WorkOrder struct {
	ID                   string               `json:"id"`
	Number               string               `json:"number"`
	StartDate            time.Time            `json:"start_date"`
	TargetDate           *time.Time           `json:"target_date,omitempty"`
	HolidayKey           string               `json:"holiday_key"`
	CriticalLineOverride string               `json:"critical_line_override,omitempty"`
	Model                ProcessModel         `json:"model"`
	StepStates           map[string]StepState `json:"step_states"`
	Incidents            []DowntimeIncident   `json:"incidents,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// ProcessModel is the ordered list of process steps an order executes
type ProcessModel struct {
	Steps                []ProcessStep `json:"steps"`
	CriticalLineOverride string        `json:"critical_line_override,omitempty"`
}

// ProcessStep represents a single step in a process model.
// Steps sharing a ParallelLineID execute sequentially within that line,
// in definition order; distinct lines run in parallel.
type ProcessStep struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ParallelLineID string  `json:"parallel_line_id,omitempty"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// LineID returns the step's parallel line, defaulting to the shared general line.
func (s ProcessStep) LineID() string {
	if s.ParallelLineID == "" {
		return GeneralLineID
	}
	return s.ParallelLineID
}

// StepStatus represents the current status of a process step
type StepStatus string

const (
	StepStatusPending    StepStatus = "PENDING"
	StepStatusInProgress StepStatus = "IN_PROGRESS"
	StepStatusCompleted  StepStatus = "COMPLETED"
	StepStatusSkipped    StepStatus = "SKIPPED"
)

// StepState is a tagged variant over StepStatus. Only the fields valid for the
// status are ever set: PENDING carries no times, IN_PROGRESS carries a start,
// COMPLETED and SKIPPED carry an authoritative end (or a start to fall back on).
// Use the constructors below; they keep invalid combinations unrepresentable.
type StepState struct {
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// PendingStep returns the state of a step that has not started.
func PendingStep() StepState {
	return StepState{Status: StepStatusPending}
}

// InProgressStep returns the state of a step started at the given time.
func InProgressStep(start time.Time) StepState {
	return StepState{Status: StepStatusInProgress, StartTime: &start}
}

// CompletedStep returns the state of a step finished at the given time.
func CompletedStep(end time.Time) StepState {
	return StepState{Status: StepStatusCompleted, EndTime: &end}
}

// SkippedStep returns the state of a step skipped at the given time.
func SkippedStep(end time.Time) StepState {
	return StepState{Status: StepStatusSkipped, EndTime: &end}
}

// Terminal reports whether the step needs no further projection.
func (s StepState) Terminal() bool {
	return s.Status == StepStatusCompleted || s.Status == StepStatusSkipped
}

// AuthoritativeEnd returns the recorded finish of a terminal step, falling back
// to its start time and finally to the order's start date when unrecorded.
func (s StepState) AuthoritativeEnd(orderStart time.Time) time.Time {
	if s.EndTime != nil && !s.EndTime.IsZero() {
		return *s.EndTime
	}
	if s.StartTime != nil && !s.StartTime.IsZero() {
		return *s.StartTime
	}
	return orderStart
}
