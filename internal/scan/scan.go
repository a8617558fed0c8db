// Package scan routes a scan to the engine its checkpoint context names.
package scan

import (
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/attendance"
	"github.com/frahmantamala/workforce-presence/internal/worksession"
)

const (
	ContextSecurity   = "SECURITY"
	ContextProcess    = "PROCESS"
	ContextSupervisor = "SUPERVISOR"
)

var (
	ErrContextRequired   = internal.NewBadRequestError("Scan context is required (SECURITY, PROCESS, SUPERVISOR)", internal.ErrCodeInvalidScanContext)
	ErrUnknownContext    = internal.NewBadRequestError("Unknown scan context", internal.ErrCodeInvalidScanContext)
	ErrProcessRequired   = internal.NewBadRequestError("processName is required for supervisor scans", internal.ErrCodeProcessRequired)
	ErrCallerRequired    = internal.NewUnauthorizedError("Process scans require an authenticated station account", internal.ErrCodeInvalidToken)
	ErrProcessRoleNeeded = internal.ErrRoleNotAllowed.WithMessage("Process scans require a process station account")
)

type Request struct {
	Context     string `json:"context"`
	QRID        string `json:"qrId"`
	ProcessName string `json:"processName,omitempty"`
	ScanType    string `json:"scanType,omitempty"`
	EmployeeID  string `json:"employeeId,omitempty"`
}

type Response struct {
	Context     string               `json:"context"`
	Direction   string               `json:"direction"`
	Timestamp   time.Time            `json:"timestamp"`
	ProcessName string               `json:"processName,omitempty"`
	Message     string               `json:"message"`
	Attendance  *attendance.Log      `json:"attendance,omitempty"`
	Session     *worksession.Session `json:"session,omitempty"`
}

func fromAttendance(r *attendance.ScanResult) *Response {
	return &Response{
		Context:    ContextSecurity,
		Direction:  r.Direction,
		Timestamp:  r.Attendance.ScanTime,
		Message:    r.Message,
		Attendance: r.Attendance,
	}
}

func fromSession(context string, r *worksession.ToggleResult) *Response {
	ts := r.Session.StartTime
	if r.Session.EndTime != nil {
		ts = *r.Session.EndTime
	}
	return &Response{
		Context:     context,
		Direction:   r.Direction,
		Timestamp:   ts,
		ProcessName: r.Session.ProcessName,
		Message:     r.Message,
		Session:     r.Session,
	}
}
