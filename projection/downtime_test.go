package projection

import (
	"testing"
	"time"

	"workorder-projection-system/models"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestIsHalted(t *testing.T) {
	now := day(10).Add(12 * time.Hour)

	tests := []struct {
		name      string
		date      time.Time
		incidents []models.DowntimeIncident
		want      bool
	}{
		{
			name: "No incidents",
			date: day(1),
			want: false,
		},
		{
			name: "Inside blocking span",
			date: day(2),
			incidents: []models.DowntimeIncident{
				{ID: "d1", StartTime: day(1), EndTime: timePtr(day(3)), Mode: models.DowntimeBlocking},
			},
			want: true,
		},
		{
			name: "Start day inclusive despite late start time",
			date: day(1),
			incidents: []models.DowntimeIncident{
				{ID: "d1", StartTime: day(1).Add(23 * time.Hour), EndTime: timePtr(day(3)), Mode: models.DowntimeBlocking},
			},
			want: true,
		},
		{
			name: "End day inclusive despite early end time",
			date: day(3),
			incidents: []models.DowntimeIncident{
				{ID: "d1", StartTime: day(1), EndTime: timePtr(day(3).Add(1 * time.Minute)), Mode: models.DowntimeBlocking},
			},
			want: true,
		},
		{
			name: "After end",
			date: day(4),
			incidents: []models.DowntimeIncident{
				{ID: "d1", StartTime: day(1), EndTime: timePtr(day(3)), Mode: models.DowntimeBlocking},
			},
			want: false,
		},
		{
			name: "Before start",
			date: day(0),
			incidents: []models.DowntimeIncident{
				{ID: "d1", StartTime: day(1), EndTime: timePtr(day(3)), Mode: models.DowntimeBlocking},
			},
			want: false,
		},
		{
			name: "Non-blocking never halts",
			date: day(2),
			incidents: []models.DowntimeIncident{
				{ID: "d1", StartTime: day(1), EndTime: timePtr(day(3)), Mode: models.DowntimeNonBlocking},
			},
			want: false,
		},
		{
			name: "Open-ended incident runs through now",
			date: day(9),
			incidents: []models.DowntimeIncident{
				{ID: "d1", StartTime: day(7), Mode: models.DowntimeBlocking},
			},
			want: true,
		},
		{
			name: "Open-ended incident does not reach past now",
			date: day(11),
			incidents: []models.DowntimeIncident{
				{ID: "d1", StartTime: day(7), Mode: models.DowntimeBlocking},
			},
			want: false,
		},
		{
			name: "Malformed start time never halts",
			date: day(2),
			incidents: []models.DowntimeIncident{
				{ID: "d1", Mode: models.DowntimeBlocking},
			},
			want: false,
		},
		{
			name: "One blocking among non-blocking is enough",
			date: day(2),
			incidents: []models.DowntimeIncident{
				{ID: "d1", StartTime: day(0), EndTime: timePtr(day(5)), Mode: models.DowntimeNonBlocking},
				{ID: "d2", StartTime: day(2), EndTime: timePtr(day(2)), Mode: models.DowntimeBlocking},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHalted(tt.date, tt.incidents, now))
		})
	}
}
