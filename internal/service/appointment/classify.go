package appointment

import (
	"time"

	"github.com/medibook/medibook-api/internal/model"
)

// IsUpcoming classifies an appointment relative to now. Terminal statuses
// (cancelled, completed) are always past. A scheduled appointment is
// upcoming when its effective instant is strictly in the future; the
// effective instant prefers start_time and falls back to the joined slot's
// date+time. A scheduled appointment with neither is treated as past
// rather than pinned forever in the upcoming tab.
func IsUpcoming(apt *model.Appointment, now time.Time) bool {
	if apt.Status != model.AppointmentStatusScheduled {
		return false
	}

	if apt.StartTime != nil {
		return apt.StartTime.After(now)
	}

	if apt.TimeSlot != nil {
		at, err := apt.TimeSlot.StartsAt(now.Location())
		if err == nil {
			return at.After(now)
		}
	}

	return false
}

// Partition splits appointments into upcoming and past, preserving the
// input order within each bucket.
func Partition(appointments []*model.Appointment, now time.Time) *model.AppointmentList {
	list := &model.AppointmentList{
		Upcoming: []*model.Appointment{},
		Past:     []*model.Appointment{},
	}
	for _, apt := range appointments {
		if IsUpcoming(apt, now) {
			list.Upcoming = append(list.Upcoming, apt)
		} else {
			list.Past = append(list.Past, apt)
		}
	}
	return list
}
