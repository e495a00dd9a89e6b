// Package roster expands recurring shift patterns into concrete shifts and
// aggregates completed duty sessions into weekly timesheet entries. It does
// no I/O; services persist what it returns.
package roster

import (
	"fmt"
	"time"

	"marina-guard/backend/internal/model"
	"marina-guard/backend/internal/worktime"
)

// Applies reports whether pattern p produces a shift on day. day is
// interpreted by its calendar date in its own location.
func Applies(p *model.RecurringShiftPattern, day time.Time) bool {
	if p == nil || !p.IsActive {
		return false
	}
	if !p.DaysOfWeek.Contains(int(day.Weekday())) {
		return false
	}
	key := worktime.DateKey(day)
	if key < dateKey(p.StartDate) {
		return false
	}
	if p.EndDate != nil && key > dateKey(*p.EndDate) {
		return false
	}
	return true
}

// pattern dates are stored as DATE and come back as UTC midnight
func dateKey(d time.Time) string {
	y, m, dd := d.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, m, dd)
}

// ShiftFor builds the shift p generates on day, with the pattern's default
// assignments copied onto it. The caller checks Applies first.
func ShiftFor(p *model.RecurringShiftPattern, day time.Time) (model.Shift, error) {
	start, err := worktime.ParseClock(p.StartTime)
	if err != nil {
		return model.Shift{}, fmt.Errorf("pattern %s start: %w", p.PatternID, err)
	}
	end, err := worktime.ParseClock(p.EndTime)
	if err != nil {
		return model.Shift{}, fmt.Errorf("pattern %s end: %w", p.PatternID, err)
	}
	from, to, err := worktime.ShiftWindow(day, start, end)
	if err != nil {
		return model.Shift{}, fmt.Errorf("pattern %s: %w", p.PatternID, err)
	}

	patternID := p.PatternID
	shift := model.Shift{
		LocationID: p.LocationID,
		PatternID:  &patternID,
		StartTime:  from,
		EndTime:    to,
	}
	if len(p.Assignments) > 0 {
		shift.Assignments = make([]model.ShiftAssignment, 0, len(p.Assignments))
		for _, a := range p.Assignments {
			role := a.Role
			shift.Assignments = append(shift.Assignments, model.ShiftAssignment{
				UserID: a.UserID,
				Role:   &role,
			})
		}
	}
	return shift, nil
}

// Expand generates shifts for every day in [from, from+days) and every
// pattern that applies on that day, day-major in pattern order.
func Expand(patterns []model.RecurringShiftPattern, from time.Time, days int) ([]model.Shift, error) {
	var shifts []model.Shift
	first := worktime.StartOfDay(from)
	for i := 0; i < days; i++ {
		y, m, d := first.Date()
		day := time.Date(y, m, d+i, 0, 0, 0, 0, first.Location())
		for j := range patterns {
			p := &patterns[j]
			if !Applies(p, day) {
				continue
			}
			s, err := ShiftFor(p, day)
			if err != nil {
				return nil, err
			}
			shifts = append(shifts, s)
		}
	}
	return shifts, nil
}
