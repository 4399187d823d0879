package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/medibook/medibook-api/internal/model"
)

var classifyNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func scheduledAt(start time.Time) *model.Appointment {
	return &model.Appointment{
		Status:    model.AppointmentStatusScheduled,
		StartTime: &start,
	}
}

func TestIsUpcoming(t *testing.T) {
	future := classifyNow.Add(time.Hour)
	past := classifyNow.Add(-time.Hour)

	tests := []struct {
		name string
		apt  *model.Appointment
		want bool
	}{
		{
			name: "cancelled is past even with future start",
			apt: &model.Appointment{
				Status:    model.AppointmentStatusCancelled,
				StartTime: &future,
			},
			want: false,
		},
		{
			name: "completed is past even with future start",
			apt: &model.Appointment{
				Status:    model.AppointmentStatusCompleted,
				StartTime: &future,
			},
			want: false,
		},
		{
			name: "scheduled with future start",
			apt:  scheduledAt(future),
			want: true,
		},
		{
			name: "scheduled with past start",
			apt:  scheduledAt(past),
			want: false,
		},
		{
			name: "scheduled exactly now is past",
			apt:  scheduledAt(classifyNow),
			want: false,
		},
		{
			name: "no start time falls back to slot",
			apt: &model.Appointment{
				Status:   model.AppointmentStatusScheduled,
				TimeSlot: &model.TimeSlot{Date: "2026-03-15", Time: "14:00"},
			},
			want: true,
		},
		{
			name: "slot fallback in the past",
			apt: &model.Appointment{
				Status:   model.AppointmentStatusScheduled,
				TimeSlot: &model.TimeSlot{Date: "2026-03-15", Time: "09:00"},
			},
			want: false,
		},
		{
			name: "start time wins over slot",
			apt: &model.Appointment{
				Status:    model.AppointmentStatusScheduled,
				StartTime: &past,
				TimeSlot:  &model.TimeSlot{Date: "2026-03-15", Time: "14:00"},
			},
			want: false,
		},
		{
			name: "neither start nor slot is past",
			apt:  &model.Appointment{Status: model.AppointmentStatusScheduled},
			want: false,
		},
		{
			name: "unparseable slot is past",
			apt: &model.Appointment{
				Status:   model.AppointmentStatusScheduled,
				TimeSlot: &model.TimeSlot{Date: "tomorrow", Time: "noon"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUpcoming(tt.apt, classifyNow))
		})
	}
}

func TestPartition(t *testing.T) {
	future := scheduledAt(classifyNow.Add(2 * time.Hour))
	past := scheduledAt(classifyNow.Add(-2 * time.Hour))
	cancelled := &model.Appointment{Status: model.AppointmentStatusCancelled}

	list := Partition([]*model.Appointment{future, past, cancelled}, classifyNow)

	assert.Equal(t, []*model.Appointment{future}, list.Upcoming)
	assert.Equal(t, []*model.Appointment{past, cancelled}, list.Past)
}

func TestPartitionEmpty(t *testing.T) {
	list := Partition(nil, classifyNow)

	assert.NotNil(t, list.Upcoming)
	assert.NotNil(t, list.Past)
	assert.Empty(t, list.Upcoming)
	assert.Empty(t, list.Past)
}
