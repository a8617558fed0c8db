package worksession

import (
	"math"
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	sessionDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/worksession"
)

const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"

	StatusOpen   = "open"
	StatusClosed = "closed"

	MessageStarted = "Work session started"
	MessageEnded   = "Work session ended"
)

var (
	ErrNoOpenSession     = internal.NewNotFoundError("No open work session found for this QR code and process", internal.ErrCodeNoOpenSession)
	ErrSessionNotFound   = internal.NewNotFoundError("Work session not found", internal.ErrCodeSessionNotFound)
	ErrSessionInProgress = internal.NewBadRequestError("A work session is already in progress for this QR code and process", internal.ErrCodeSessionInProgress)
	ErrParallelSession   = internal.NewConflictError("Employee is already assigned to another open process", internal.ErrCodeParallelSession)
	ErrCheckInRequired   = internal.NewBadRequestError("Employee must check IN at security before starting a process", internal.ErrCodeCheckInRequired)
	ErrEmployeeRequired  = internal.NewBadRequestError("employee is required to start a work session", internal.ErrCodeEmployeeRequired)
	ErrInvalidTimeRange  = internal.NewBadRequestError("endTime must not be before startTime", internal.ErrCodeInvalidTimeRange)
	ErrConcurrentStart   = internal.NewConflictError("A concurrent scan already opened a work session", internal.ErrCodeParallelSession)
)

type Session struct {
	ID              string     `json:"id"`
	QRCodeID        string     `json:"qrCodeId"`
	CompanyID       string     `json:"companyId"`
	EmployeeID      *string    `json:"employeeId"`
	ProcessName     string     `json:"processName"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
	DurationMinutes *int64     `json:"durationMinutes"`
	EditedAt        *time.Time `json:"editedAt,omitempty"`
	EditedBy        *string    `json:"editedBy,omitempty"`
}

func (s *Session) IsOpen() bool {
	return s.EndTime == nil
}

type ToggleResult struct {
	Direction string   `json:"direction"`
	Message   string   `json:"message"`
	Session   *Session `json:"session"`
}

// DurationMinutes rounds the elapsed time between start and end to whole minutes, half away from zero.
func DurationMinutes(start, end time.Time) int64 {
	return int64(math.Round(float64(end.Sub(start).Milliseconds()) / 60000))
}

func FromDataModel(s *sessionDatamodel.WorkSession) *Session {
	out := &Session{
		ID:              s.ID,
		QRCodeID:        s.QRCodeID,
		CompanyID:       s.CompanyID,
		EmployeeID:      s.EmployeeID,
		ProcessName:     s.ProcessName,
		StartTime:       s.StartTime.UTC(),
		DurationMinutes: s.DurationMinutes,
		EditedAt:        s.EditedAt,
		EditedBy:        s.EditedBy,
	}
	if s.EndTime != nil {
		end := s.EndTime.UTC()
		out.EndTime = &end
	}
	return out
}

func FromDataModelSlice(rows []*sessionDatamodel.WorkSession) []*Session {
	result := make([]*Session, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}
