package attendance

import (
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	attendanceDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/attendance"
)

const (
	ScanTypeIn  = "IN"
	ScanTypeOut = "OUT"

	LocationSecurity = "SECURITY"
)

var (
	ErrAttendanceNotFound = internal.NewNotFoundError("Attendance log not found", internal.ErrCodeAttendanceNotFound)
	ErrEmployeeRequired   = internal.NewBadRequestError("employee is required for attendance scan", internal.ErrCodeEmployeeRequired)
	ErrInvalidContext     = internal.NewBadRequestError("attendance scans require the SECURITY context", internal.ErrCodeInvalidScanContext)
)

type Log struct {
	ID           string     `json:"id"`
	QRCodeID     string     `json:"qrCodeId"`
	CompanyID    string     `json:"companyId"`
	EmployeeID   string     `json:"employeeId"`
	ScanType     string     `json:"scanType"`
	ScanLocation string     `json:"scanLocation"`
	ScanTime     time.Time  `json:"scanTime"`
	WorkDate     string     `json:"workDate"`
	EditedAt     *time.Time `json:"editedAt,omitempty"`
	EditedBy     *string    `json:"editedBy,omitempty"`
}

// NextDirection derives the direction of the next scan from the latest one of the day only.
func NextDirection(last *Log) string {
	if last == nil || last.ScanType == ScanTypeOut {
		return ScanTypeIn
	}
	return ScanTypeOut
}

type ScanResult struct {
	Direction  string `json:"direction"`
	Message    string `json:"message"`
	Attendance *Log   `json:"attendance"`
}

// SummaryRow is one employee's first IN and last OUT of a day.
type SummaryRow struct {
	EmployeeID string `json:"employeeId"`
	FirstIn    *Log   `json:"firstIn"`
	LastOut    *Log   `json:"lastOut"`
	ScanCount  int    `json:"scanCount"`
}

type DailySummary struct {
	Date string        `json:"date"`
	Rows []*SummaryRow `json:"rows"`
}

func ToDataModel(l *Log) *attendanceDatamodel.AttendanceLog {
	return &attendanceDatamodel.AttendanceLog{
		ID:           l.ID,
		QRCodeID:     l.QRCodeID,
		CompanyID:    l.CompanyID,
		EmployeeID:   l.EmployeeID,
		ScanType:     l.ScanType,
		ScanLocation: l.ScanLocation,
		ScanTime:     l.ScanTime,
		WorkDate:     l.WorkDate,
		EditedAt:     l.EditedAt,
		EditedBy:     l.EditedBy,
	}
}

func FromDataModel(l *attendanceDatamodel.AttendanceLog) *Log {
	return &Log{
		ID:           l.ID,
		QRCodeID:     l.QRCodeID,
		CompanyID:    l.CompanyID,
		EmployeeID:   l.EmployeeID,
		ScanType:     l.ScanType,
		ScanLocation: l.ScanLocation,
		ScanTime:     l.ScanTime.UTC(),
		WorkDate:     l.WorkDate,
		EditedAt:     l.EditedAt,
		EditedBy:     l.EditedBy,
	}
}

func FromDataModelSlice(logs []*attendanceDatamodel.AttendanceLog) []*Log {
	result := make([]*Log, len(logs))
	for i, l := range logs {
		result[i] = FromDataModel(l)
	}
	return result
}
