package worksession

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/workforce-presence/internal/attendance"
	"github.com/frahmantamala/workforce-presence/internal/clock"
	"github.com/frahmantamala/workforce-presence/internal/core/common/workday"
	sessionDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/worksession"
	"github.com/frahmantamala/workforce-presence/internal/identity"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, token, override string) (*identity.Identity, error)
}

type RepositoryAPI interface {
	// Transaction runs fn against a repository bound to a single transaction.
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	// LockEmployee serializes session starts of one employee until the transaction ends.
	LockEmployee(ctx context.Context, employeeID string) error
	// FindOpen and FindOpenByEmployee return nil without error when nothing is open.
	FindOpen(ctx context.Context, credentialID, processName string) (*sessionDatamodel.WorkSession, error)
	FindOpenByEmployee(ctx context.Context, employeeID string) (*sessionDatamodel.WorkSession, error)
	// LatestSecurityScanType returns the scan type of the employee's latest SECURITY log of
	// workDate, or "" when there is none.
	LatestSecurityScanType(ctx context.Context, employeeID, workDate string) (string, error)
	Create(ctx context.Context, session *sessionDatamodel.WorkSession) error
	Close(ctx context.Context, id string, endTime time.Time, durationMinutes int64) error
	GetByID(ctx context.Context, id string) (*sessionDatamodel.WorkSession, error)
	UpdateTimes(ctx context.Context, id string, start time.Time, end *time.Time, durationMinutes *int64, editedAt time.Time, editedBy string) error
	List(ctx context.Context, from, to time.Time, status string) ([]*sessionDatamodel.WorkSession, error)
}

type Service struct {
	repo     RepositoryAPI
	resolver IdentityResolver
	clock    clock.Clock
	location *time.Location
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, resolver IdentityResolver, clk clock.Clock, location *time.Location, logger *slog.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		resolver: resolver,
		clock:    clk,
		location: location,
		logger:   logger,
	}
}

// Toggle closes the open session of the credential at the process, or opens one when none is open.
func (s *Service) Toggle(ctx context.Context, req ToggleRequest) (*ToggleResult, error) {
	id, err := s.resolve(ctx, &req)
	if err != nil {
		return nil, err
	}

	result, err := s.stop(ctx, id, req.ProcessName)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, ErrNoOpenSession) {
		return nil, err
	}
	return s.start(ctx, id, req.ProcessName)
}

func (s *Service) Start(ctx context.Context, req ToggleRequest) (*ToggleResult, error) {
	id, err := s.resolve(ctx, &req)
	if err != nil {
		return nil, err
	}
	return s.start(ctx, id, req.ProcessName)
}

func (s *Service) Stop(ctx context.Context, req ToggleRequest) (*ToggleResult, error) {
	id, err := s.resolve(ctx, &req)
	if err != nil {
		return nil, err
	}
	return s.stop(ctx, id, req.ProcessName)
}

func (s *Service) resolve(ctx context.Context, req *ToggleRequest) (*identity.Identity, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, req.QRID, req.EmployeeID)
}

func (s *Service) stop(ctx context.Context, id *identity.Identity, processName string) (*ToggleResult, error) {
	open, err := s.repo.FindOpen(ctx, id.CredentialID, processName)
	if err != nil {
		s.logger.Error("failed to look up open session", "error", err, "credential_id", id.CredentialID)
		return nil, err
	}
	if open == nil {
		return nil, ErrNoOpenSession
	}

	end := s.clock.Now().UTC()
	duration := DurationMinutes(open.StartTime, end)
	if err := s.repo.Close(ctx, open.ID, end, duration); err != nil {
		return nil, err
	}
	open.EndTime = &end
	open.DurationMinutes = &duration

	s.logger.Info("work session ended",
		"session_id", open.ID,
		"process_name", processName,
		"duration_minutes", duration)

	return &ToggleResult{Direction: DirectionOut, Message: MessageEnded, Session: FromDataModel(open)}, nil
}

func (s *Service) start(ctx context.Context, id *identity.Identity, processName string) (*ToggleResult, error) {
	if !id.HasEmployee() {
		s.logger.Warn("work session start without employee", "credential_id", id.CredentialID)
		return nil, ErrEmployeeRequired
	}
	employeeID := *id.EmployeeID

	now := s.clock.Now().UTC()
	today := workday.Format(now, s.location)

	var created *sessionDatamodel.WorkSession
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		if err := tx.LockEmployee(ctx, employeeID); err != nil {
			return err
		}

		open, err := tx.FindOpen(ctx, id.CredentialID, processName)
		if err != nil {
			return err
		}
		if open != nil {
			return ErrSessionInProgress
		}

		parallel, err := tx.FindOpenByEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		if parallel != nil {
			return ErrParallelSession
		}

		last, err := tx.LatestSecurityScanType(ctx, employeeID, today)
		if err != nil {
			return err
		}
		if last != attendance.ScanTypeIn {
			return ErrCheckInRequired
		}

		created = &sessionDatamodel.WorkSession{
			QRCodeID:    id.CredentialID,
			CompanyID:   id.CompanyID,
			EmployeeID:  &employeeID,
			ProcessName: processName,
			StartTime:   now,
		}
		return tx.Create(ctx, created)
	})
	if err != nil {
		s.logger.Warn("work session start rejected",
			"error", err,
			"credential_id", id.CredentialID,
			"employee_id", employeeID,
			"process_name", processName)
		return nil, err
	}

	s.logger.Info("work session started",
		"session_id", created.ID,
		"employee_id", employeeID,
		"process_name", processName)

	return &ToggleResult{Direction: DirectionIn, Message: MessageStarted, Session: FromDataModel(created)}, nil
}

// UpdateTimes applies an admin correction and recomputes the stored duration.
func (s *Service) UpdateTimes(ctx context.Context, sessionID string, req UpdateTimesRequest, editorID string) (*Session, error) {
	current, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	start := current.StartTime.UTC()
	if req.StartTime != nil {
		start = req.StartTime.UTC()
	}
	end := current.EndTime
	if req.EndTime != nil {
		e := req.EndTime.UTC()
		end = &e
	}

	var duration *int64
	if end != nil {
		if end.Before(start) {
			return nil, ErrInvalidTimeRange
		}
		d := DurationMinutes(start, *end)
		duration = &d
	}

	editedAt := s.clock.Now().UTC()
	if err := s.repo.UpdateTimes(ctx, sessionID, start, end, duration, editedAt, editorID); err != nil {
		s.logger.Error("failed to update session times", "error", err, "session_id", sessionID)
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("work session edited", "session_id", sessionID, "edited_by", editorID)
	return FromDataModel(updated), nil
}

// List returns the sessions that started on filter.Date, today when empty.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Session, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	day := strings.TrimSpace(filter.Date)
	if day == "" {
		day = workday.Today(s.clock.Now(), s.location)
	}
	r, err := workday.Day(day, s.location)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, r.Start, r.End, filter.Status)
	if err != nil {
		s.logger.Error("failed to list work sessions", "error", err, "date", day)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}
