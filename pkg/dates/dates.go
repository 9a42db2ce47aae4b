// Package dates normalizes the calendar values used by payroll periods.
//
// A zero time.Time means "no date". Every predicate here returns false for a
// zero date rather than guessing one.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var layouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Parse reads v as a calendar date. Unreadable input yields the zero time.
func Parse(v any) time.Time {
	switch d := v.(type) {
	case time.Time:
		return d
	case *time.Time:
		if d == nil {
			return time.Time{}
		}
		return *d
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// DateOnly drops the clock part of t, keeping its location.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Format renders t as YYYY-MM-DD, or "" for the zero time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// MonthKey renders a period as YYYY-MM.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// ParseMonthKey is the inverse of MonthKey.
func ParseMonthKey(key string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(key))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t.Year(), t.Month(), nil
}

// MonthStart is midnight UTC on the 1st of the given month.
func MonthStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd is the last instant of the given month in UTC.
func MonthEnd(year int, month time.Month) time.Time {
	return MonthStart(year, month).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// StartOfNextMonth is the 1st of the month after t, which is when the first
// deduction for a disbursement on t falls due.
func StartOfNextMonth(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return MonthStart(t.Year(), t.Month()+1)
}

// AddMonths moves a first-of-month date by n months. time.Date normalizes the
// overflow, so month 13 becomes January of the following year.
func AddMonths(t time.Time, n int) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month()+time.Month(n), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthsBetween counts calendar months from the month of a to the month of b.
// It is negative when b's month comes first.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// IsSameMonth reports whether t falls in (year, month).
func IsSameMonth(t time.Time, year int, month time.Month) bool {
	if t.IsZero() {
		return false
	}
	return t.Year() == year && t.Month() == month
}

// MonthRangeContains reports whether (year, month) is one of the deduction
// months of an amount disbursed on start and repaid over installments months.
func MonthRangeContains(start time.Time, installments int, year int, month time.Month) bool {
	if start.IsZero() {
		return false
	}
	if installments < 1 {
		installments = 1
	}
	first := StartOfNextMonth(start)
	last := AddMonths(first, installments-1)
	target := MonthStart(year, month)
	return !target.Before(first) && !target.After(last)
}

// After reports whether t is strictly after ref. A zero t never is.
func After(t, ref time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.After(ref)
}
