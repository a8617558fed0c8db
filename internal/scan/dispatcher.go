package scan

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/workforce-presence/internal/attendance"
	"github.com/frahmantamala/workforce-presence/internal/auth"
	"github.com/frahmantamala/workforce-presence/internal/core/events"
	"github.com/frahmantamala/workforce-presence/internal/process"
	"github.com/frahmantamala/workforce-presence/internal/worksession"
)

type AttendanceScanner interface {
	ScanSecurity(ctx context.Context, req attendance.ScanRequest) (*attendance.ScanResult, error)
}

type SessionToggler interface {
	Toggle(ctx context.Context, req worksession.ToggleRequest) (*worksession.ToggleResult, error)
}

type ProcessLookup interface {
	LinkedTo(ctx context.Context, processID *string) (*process.Process, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Dispatcher struct {
	attendance AttendanceScanner
	sessions   SessionToggler
	processes  ProcessLookup
	publisher  Publisher
	logger     *slog.Logger
}

func NewDispatcher(attendance AttendanceScanner, sessions SessionToggler, processes ProcessLookup, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		attendance: attendance,
		sessions:   sessions,
		processes:  processes,
		logger:     logger,
	}
}

// WithPublisher makes the dispatcher announce every recorded scan on p.
func (d *Dispatcher) WithPublisher(p Publisher) *Dispatcher {
	d.publisher = p
	return d
}

// Dispatch routes req by its context. Engine errors are returned unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, caller *auth.User, req Request) (*Response, error) {
	resp, err := d.dispatch(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	d.announce(ctx, caller, resp)
	return resp, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, caller *auth.User, req Request) (*Response, error) {
	scanContext := strings.ToUpper(strings.TrimSpace(req.Context))

	switch scanContext {
	case "":
		return nil, ErrContextRequired
	case ContextSecurity:
		result, err := d.attendance.ScanSecurity(ctx, attendance.ScanRequest{
			QRID:       req.QRID,
			ScanType:   req.ScanType,
			Context:    scanContext,
			EmployeeID: req.EmployeeID,
		})
		if err != nil {
			return nil, err
		}
		return fromAttendance(result), nil
	case ContextProcess:
		processName, err := d.stationProcess(ctx, caller)
		if err != nil {
			return nil, err
		}
		return d.toggle(ctx, scanContext, req, processName)
	case ContextSupervisor:
		processName := strings.TrimSpace(req.ProcessName)
		if processName == "" {
			return nil, ErrProcessRequired
		}
		return d.toggle(ctx, scanContext, req, processName)
	default:
		d.logger.Warn("unknown scan context", "context", req.Context)
		return nil, ErrUnknownContext.WithMessage("Unknown scan context: " + req.Context)
	}
}

// stationProcess returns the process name a station account is bound to. The payload's
// processName is never trusted for PROCESS scans.
func (d *Dispatcher) stationProcess(ctx context.Context, caller *auth.User) (string, error) {
	if caller == nil {
		return "", ErrCallerRequired
	}
	if caller.Role != auth.RoleProcess {
		d.logger.Warn("process scan by non-station account", "user_id", caller.ID, "role", caller.Role)
		return "", ErrProcessRoleNeeded
	}
	p, err := d.processes.LinkedTo(ctx, caller.ProcessID)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

func (d *Dispatcher) toggle(ctx context.Context, scanContext string, req Request, processName string) (*Response, error) {
	result, err := d.sessions.Toggle(ctx, worksession.ToggleRequest{
		QRID:        req.QRID,
		ProcessName: processName,
		EmployeeID:  req.EmployeeID,
	})
	if err != nil {
		return nil, err
	}
	return fromSession(scanContext, result), nil
}

func (d *Dispatcher) announce(ctx context.Context, caller *auth.User, resp *Response) {
	if d.publisher == nil {
		return
	}

	var recordID, employeeID, scannedBy string
	switch {
	case resp.Attendance != nil:
		recordID = resp.Attendance.ID
		employeeID = resp.Attendance.EmployeeID
	case resp.Session != nil:
		recordID = resp.Session.ID
		if resp.Session.EmployeeID != nil {
			employeeID = *resp.Session.EmployeeID
		}
	}
	if caller != nil {
		scannedBy = caller.ID
	}

	event := events.NewScanRecordedEvent(resp.Context, resp.Direction, resp.ProcessName, recordID, employeeID, scannedBy, resp.Timestamp)
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to publish scan event", "error", err, "record_id", recordID)
	}
}
