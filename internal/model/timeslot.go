package model

import "time"

// TimeSlot is a fixed doctor/date/time unit of bookable availability.
// IDs are store UUIDs for real doctors and synthetic "slot-N" strings for
// demo doctors, so the field stays a plain string.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	DoctorID  string    `db:"doctor_id" json:"doctor_id"`
	Date      string    `db:"date" json:"date"` // YYYY-MM-DD
	Time      string    `db:"time" json:"time"` // HH:MM, 24h
	IsBooked  bool      `db:"is_booked" json:"is_booked"`
	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
}

// StartsAt combines the slot's date and time into a single instant in the
// given location. It backs upcoming/past classification for appointments
// that predate the start_time column.
func (s *TimeSlot) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", s.Date+" "+s.Time, loc)
}
