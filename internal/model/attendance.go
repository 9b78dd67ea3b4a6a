package model

import "strings"

// AttendanceStatus is either Present or Absent.
type AttendanceStatus string

const (
	Present AttendanceStatus = "Present"
	Absent  AttendanceStatus = "Absent"
)

// Toggled returns the opposite status. Anything that is not Present toggles to Present.
func (s AttendanceStatus) Toggled() AttendanceStatus {
	if s == Present {
		return Absent
	}
	return Present
}

// AttendanceEntry is one attendance row as served by /attendance/attendance/.
type AttendanceEntry struct {
	ID      int              `json:"id,omitempty"`
	Student int              `json:"student"`
	Status  AttendanceStatus `json:"status"`
	Date    string           `json:"date"`
}

// InMonth reports whether the entry date (YYYY-MM-DD) falls in month (YYYY-MM).
func (e AttendanceEntry) InMonth(month string) bool {
	return month != "" && strings.HasPrefix(e.Date, month)
}

// RosterFilter narrows the attendance roster by department and year.
type RosterFilter struct {
	Department string `form:"department"`
	Year       string `form:"year"`
}

// Match compares department ignoring case and year exactly.
func (f RosterFilter) Match(s Student) bool {
	if f.Department != "" && !strings.EqualFold(s.Department, f.Department) {
		return false
	}
	if f.Year != "" && s.Year.String() != f.Year {
		return false
	}
	return true
}
