package analytics

import (
	"math"
	"time"
)

const (
	CategoryManpower     = "manpower"
	UnknownCompany       = "Unknown Company"
	UnknownEmployee      = "Unknown Employee"
	ScanLocationSecurity = "SECURITY"
	scanTypeIn           = "IN"
	scanTypeOut          = "OUT"
)

// IdleRow is one employee's presence split into work, break and idle time.
type IdleRow struct {
	EmployeeID      string     `json:"employeeId"`
	EmployeeCode    string     `json:"employeeCode"`
	EmployeeName    string     `json:"employeeName"`
	EmployeeType    string     `json:"employeeType"`
	CompanyID       string     `json:"companyId"`
	CompanyName     string     `json:"companyName"`
	CheckInTime     time.Time  `json:"checkInTime"`
	CheckOutTime    *time.Time `json:"checkOutTime"`
	IsCheckedOut    bool       `json:"isCheckedOut"`
	PresenceMinutes float64    `json:"presenceMinutes"`
	PresenceHours   float64    `json:"presenceHours"`
	WorkMinutes     float64    `json:"workMinutes"`
	WorkHours       float64    `json:"workHours"`
	BreakMinutes    float64    `json:"breakMinutes"`
	BreakHours      float64    `json:"breakHours"`
	IdleMinutes     float64    `json:"idleMinutes"`
	IdleHours       float64    `json:"idleHours"`
}

type IdleReport struct {
	Date         string     `json:"date"`
	BreakMinutes float64    `json:"breakMinutes"`
	Rows         []*IdleRow `json:"rows"`
}

// HoursRow aggregates manpower sessions of one company.
type HoursRow struct {
	CompanyID              string   `json:"companyId"`
	CompanyName            string   `json:"companyName"`
	SessionCount           int      `json:"sessionCount"`
	TotalMinutes           float64  `json:"totalMinutes"`
	TotalHours             float64  `json:"totalHours"`
	AverageHoursPerSession *float64 `json:"averageHoursPerSession,omitempty"`
}

type HoursReport struct {
	Date  string      `json:"date,omitempty"`
	Month string      `json:"month,omitempty"`
	Rows  []*HoursRow `json:"rows"`
}

// SecurityScan is a SECURITY log joined with the employee and company it names.
type SecurityScan struct {
	EmployeeID   string    `db:"employee_id"`
	CompanyID    string    `db:"company_id"`
	ScanType     string    `db:"scan_type"`
	ScanTime     time.Time `db:"scan_time"`
	EmployeeCode *string   `db:"employee_code"`
	EmployeeName *string   `db:"employee_name"`
	EmployeeType *string   `db:"employee_type"`
	CompanyName  *string   `db:"company_name"`
}

// SessionSpan is the part of a work session the aggregators need.
type SessionSpan struct {
	EmployeeID      *string    `db:"employee_id"`
	CompanyID       string     `db:"company_id"`
	CompanyName     *string    `db:"company_name"`
	StartTime       time.Time  `db:"start_time"`
	EndTime         *time.Time `db:"end_time"`
	DurationMinutes *int64     `db:"duration_minutes"`
}

// EffectiveMinutes prefers the stored duration, then the closed interval, then the time elapsed until now.
func (s *SessionSpan) EffectiveMinutes(now time.Time) float64 {
	switch {
	case s.DurationMinutes != nil:
		return float64(*s.DurationMinutes)
	case s.EndTime != nil:
		return minutesBetween(s.StartTime, *s.EndTime)
	default:
		return minutesBetween(s.StartTime, now)
	}
}

type BreakSpan struct {
	StartTime time.Time  `db:"start_time"`
	EndTime   *time.Time `db:"end_time"`
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func minutesBetween(from, to time.Time) float64 {
	return float64(to.Sub(from).Milliseconds()) / 60000
}

func stringOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
