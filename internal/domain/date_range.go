package domain

import (
	"strings"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/util"
)

// Field names reported by ValidationError for date ranges
const (
	FieldStart = "start"
	FieldEnd   = "end"
)

// ValidationError ties a validation failure to the offending field
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DateRange is an inclusive time window. Start <= End always holds.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two YYYY-MM-DD strings. The start is
// normalized to 00:00:00 and the end to 23:59:59 of their days in loc
// (time.Local when nil). Bounds are never swapped.
func NewDateRange(startDate, endDate string, loc *time.Location) (*DateRange, error) {
	if strings.TrimSpace(startDate) == "" {
		return nil, &ValidationError{Field: FieldStart, Err: ErrDateRangeBoundMissing}
	}
	if strings.TrimSpace(endDate) == "" {
		return nil, &ValidationError{Field: FieldEnd, Err: ErrDateRangeBoundMissing}
	}

	startDay, err := util.ParseDate(startDate, loc)
	if err != nil {
		return nil, &ValidationError{Field: FieldStart, Err: ErrInvalidDate}
	}
	endDay, err := util.ParseDate(endDate, loc)
	if err != nil {
		return nil, &ValidationError{Field: FieldEnd, Err: ErrInvalidDate}
	}

	return NewDateRangeFromTimes(util.StartOfDay(startDay), util.EndOfDay(endDay))
}

// NewDateRangeFromTimes builds a range from explicit instants
func NewDateRangeFromTimes(start, end time.Time) (*DateRange, error) {
	if start.IsZero() {
		return nil, &ValidationError{Field: FieldStart, Err: ErrDateRangeBoundMissing}
	}
	if end.IsZero() {
		return nil, &ValidationError{Field: FieldEnd, Err: ErrDateRangeBoundMissing}
	}
	if start.After(end) {
		return nil, &ValidationError{Field: FieldStart, Err: ErrDateRangeInverted}
	}
	return &DateRange{Start: start, End: end}, nil
}

// ParseDateRangeParams turns optional query parameters into a range.
// Both empty means no filter and returns (nil, nil).
func ParseDateRangeParams(startDate, endDate string, loc *time.Location) (*DateRange, error) {
	if strings.TrimSpace(startDate) == "" && strings.TrimSpace(endDate) == "" {
		return nil, nil
	}
	return NewDateRange(startDate, endDate, loc)
}

// Contains reports whether t falls inside the range, bounds included.
// A nil range contains everything.
func (r *DateRange) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// StartISO returns the start bound in the interchange format
func (r *DateRange) StartISO() string {
	return util.FormatISO(r.Start)
}

// EndISO returns the end bound in the interchange format
func (r *DateRange) EndISO() string {
	return util.FormatISO(r.End)
}

// DateFilter holds the report filter currently chosen by a user.
// The zero value has no active filter.
type DateFilter struct {
	rng *DateRange
}

// Apply validates the dates and makes them the active range.
// On error the previous filter is kept.
func (f *DateFilter) Apply(startDate, endDate string, loc *time.Location) error {
	rng, err := NewDateRange(startDate, endDate, loc)
	if err != nil {
		return err
	}
	f.rng = rng
	return nil
}

// Clear removes the active range so reports include everything
func (f *DateFilter) Clear() {
	f.rng = nil
}

// Active reports whether a range is set
func (f *DateFilter) Active() bool {
	return f.rng != nil
}

// Range returns a copy of the active range, or nil when no filter is set
func (f *DateFilter) Range() *DateRange {
	if f.rng == nil {
		return nil
	}
	rng := *f.rng
	return &rng
}
