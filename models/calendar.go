package models

import "time"

// HolidayKind represents the weekly rest rule of a working calendar
type HolidayKind string

const (
	HolidayAllWeekend          HolidayKind = "ALL_WEEKEND"
	HolidaySundayOnly          HolidayKind = "SUNDAY_ONLY"
	HolidayAlternatingSaturday HolidayKind = "ALTERNATING_SATURDAY"
	HolidayNoWeeklyRest        HolidayKind = "NO_WEEKLY_REST"
)

// HolidayRule combines a weekly rest kind with specific non-working dates.
// The specific dates always override the weekly kind.
type HolidayRule struct {
	Kind            HolidayKind `json:"kind"`
	NonWorkingDates []time.Time `json:"non_working_dates,omitempty"`
}

// RuleSet maps an order's holiday-type key to its calendar rule
type RuleSet map[string]HolidayRule

// DowntimeMode represents whether an incident pauses production
type DowntimeMode string

const (
	DowntimeNonBlocking DowntimeMode = "NON_BLOCKING"
	DowntimeBlocking    DowntimeMode = "BLOCKING"
)

// DowntimeIncident represents a logged production incident. A nil EndTime means
// the incident is still ongoing. Only BLOCKING incidents pause the projection
// clock; NON_BLOCKING ones are informational.
type DowntimeIncident struct {
	ID        string       `json:"id"`
	StartTime time.Time    `json:"start_time"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
	Mode      DowntimeMode `json:"mode"`
	Reason    string       `json:"reason,omitempty"`
}
