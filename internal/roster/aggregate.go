package roster

import (
	"errors"
	"sort"
	"time"

	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/worktime"
)

// ErrNoSessions no completed duty session falls inside the week
var ErrNoSessions = errors.New("no completed duty sessions in this week")

// Aggregate snapshots every closed session whose clock-in falls in
// [weekStart, weekEnd] as a timesheet entry. Each entry is rounded on its
// own and the total is the sum of the rounded entries.
func Aggregate(sessions []model.DutySession, weekStart, weekEnd time.Time) ([]model.TimesheetEntry, float64, error) {
	entries := make([]model.TimesheetEntry, 0, len(sessions))
	hours := make([]float64, 0, len(sessions))

	for i := range sessions {
		s := &sessions[i]
		if s.ClockOutTime == nil {
			continue
		}
		if s.ClockInTime.Before(weekStart) || s.ClockInTime.After(weekEnd) {
			continue
		}
		h, err := worktime.WorkedHours(s.ClockInTime, *s.ClockOutTime)
		if err != nil {
			continue
		}
		sessionID := s.DutySessionID
		entries = append(entries, model.TimesheetEntry{
			DutySessionID:    &sessionID,
			LocationID:       s.LocationID,
			ClockInTime:      s.ClockInTime,
			ClockOutTime:     *s.ClockOutTime,
			OriginalClockIn:  s.ClockInTime,
			OriginalClockOut: *s.ClockOutTime,
			HoursWorked:      h,
		})
		hours = append(hours, h)
	}

	if len(entries) == 0 {
		return nil, 0, ErrNoSessions
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ClockInTime.Before(entries[j].ClockInTime)
	})
	return entries, worktime.SumHours(hours...), nil
}

// Total recomputes a timesheet total from its current entries.
func Total(entries []model.TimesheetEntry) float64 {
	hours := make([]float64, len(entries))
	for i := range entries {
		hours[i] = entries[i].HoursWorked
	}
	return worktime.SumHours(hours...)
}
