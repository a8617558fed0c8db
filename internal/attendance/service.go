package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/clock"
	"github.com/frahmantamala/workforce-presence/internal/core/common/workday"
	attendanceDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/attendance"
	"github.com/frahmantamala/workforce-presence/internal/identity"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, token, override string) (*identity.Identity, error)
}

type RepositoryAPI interface {
	// Transaction runs fn against a repository bound to a single transaction.
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	// LockScanner serializes security scans of one employee on one credential until the transaction ends.
	LockScanner(ctx context.Context, credentialID, employeeID string) error
	Create(ctx context.Context, log *attendanceDatamodel.AttendanceLog) error
	// GetLastSecurityLog returns nil without error when the employee has no scan on the
	// credential that day. Employees sharing a credential toggle independently.
	GetLastSecurityLog(ctx context.Context, credentialID, employeeID, workDate string) (*attendanceDatamodel.AttendanceLog, error)
	ListByWorkDate(ctx context.Context, workDate, credentialID string) ([]*attendanceDatamodel.AttendanceLog, error)
	GetByID(ctx context.Context, id string) (*attendanceDatamodel.AttendanceLog, error)
	UpdateScanTime(ctx context.Context, id string, scanTime time.Time, workDate string, editedAt time.Time, editedBy string) error
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

// Today is the calendar day attendance is currently filed under.
func (s *Service) Today() string {
	return workday.Today(s.clock.Now(), s.location)
}

// ScanSecurity records the next IN or OUT of the scanned employee at the security gate.
// The direction comes from the employee's latest log on that credential for the day, read and
// written under one lock so concurrent scans still alternate. A supplied scanType must agree.
func (s *Service) ScanSecurity(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := s.resolver.Resolve(ctx, req.QRID, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !id.HasEmployee() {
		s.logger.Warn("attendance scan without employee", "credential_id", id.CredentialID)
		return nil, ErrEmployeeRequired
	}

	employeeID := *id.EmployeeID
	var row *attendanceDatamodel.AttendanceLog
	err = s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		if err := tx.LockScanner(ctx, id.CredentialID, employeeID); err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		today := workday.Format(now, s.location)

		last, err := tx.GetLastSecurityLog(ctx, id.CredentialID, employeeID, today)
		if err != nil {
			s.logger.Error("failed to load last security scan", "error", err, "credential_id", id.CredentialID)
			return err
		}

		var lastLog *Log
		if last != nil {
			lastLog = FromDataModel(last)
		}
		direction := NextDirection(lastLog)
		if req.ScanType != "" && req.ScanType != direction {
			return internal.NewBadRequestError(
				fmt.Sprintf("scanType %s does not match expected %s", req.ScanType, direction),
				internal.ErrCodeInvalidScanType,
			)
		}

		row = &attendanceDatamodel.AttendanceLog{
			QRCodeID:     id.CredentialID,
			CompanyID:    id.CompanyID,
			EmployeeID:   employeeID,
			ScanType:     direction,
			ScanLocation: LocationSecurity,
			ScanTime:     now,
			WorkDate:     today,
		}
		if err := tx.Create(ctx, row); err != nil {
			s.logger.Error("failed to record attendance", "error", err, "credential_id", id.CredentialID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	direction := row.ScanType

	s.logger.Info("attendance recorded",
		"attendance_id", row.ID,
		"employee_id", row.EmployeeID,
		"direction", direction,
		"work_date", row.WorkDate)

	return &ScanResult{
		Direction:  direction,
		Message:    fmt.Sprintf("Attendance %s recorded", direction),
		Attendance: FromDataModel(row),
	}, nil
}

// ListByDate returns every security log of a day ordered by scan time.
func (s *Service) ListByDate(ctx context.Context, day string) ([]*Log, error) {
	day, err := s.normalizeDay(day)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByWorkDate(ctx, day, "")
	if err != nil {
		s.logger.Error("failed to list attendance", "error", err, "work_date", day)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

// DailySummary groups a day's logs per employee into first IN and last OUT.
// A non-empty qrID narrows the summary to that credential.
func (s *Service) DailySummary(ctx context.Context, day, qrID string) (*DailySummary, error) {
	day, err := s.normalizeDay(day)
	if err != nil {
		return nil, err
	}

	credentialID := ""
	if strings.TrimSpace(qrID) != "" {
		id, err := s.resolver.Resolve(ctx, qrID, "")
		if err != nil {
			return nil, err
		}
		credentialID = id.CredentialID
	}

	rows, err := s.repo.ListByWorkDate(ctx, day, credentialID)
	if err != nil {
		s.logger.Error("failed to load attendance summary", "error", err, "work_date", day)
		return nil, err
	}

	byEmployee := make(map[string]*SummaryRow)
	var order []string
	for _, row := range rows {
		l := FromDataModel(row)
		sr, ok := byEmployee[l.EmployeeID]
		if !ok {
			sr = &SummaryRow{EmployeeID: l.EmployeeID}
			byEmployee[l.EmployeeID] = sr
			order = append(order, l.EmployeeID)
		}
		sr.ScanCount++
		switch l.ScanType {
		case ScanTypeIn:
			if sr.FirstIn == nil || l.ScanTime.Before(sr.FirstIn.ScanTime) {
				sr.FirstIn = l
			}
		case ScanTypeOut:
			if sr.LastOut == nil || l.ScanTime.After(sr.LastOut.ScanTime) {
				sr.LastOut = l
			}
		}
	}

	summary := &DailySummary{Date: day, Rows: make([]*SummaryRow, 0, len(order))}
	for _, employeeID := range order {
		summary.Rows = append(summary.Rows, byEmployee[employeeID])
	}
	sort.SliceStable(summary.Rows, func(i, j int) bool {
		return firstSeen(summary.Rows[i]).Before(firstSeen(summary.Rows[j]))
	})
	return summary, nil
}

// UpdateScanTime corrects a log's timestamp and refiles it under the matching calendar day.
// The alternation of the affected day is not re-validated.
func (s *Service) UpdateScanTime(ctx context.Context, id string, req UpdateScanTimeRequest, editorID string) (*Log, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	scanTime := req.ScanTime.UTC()
	workDate := workday.Format(scanTime, s.location)
	editedAt := s.clock.Now().UTC()
	if err := s.repo.UpdateScanTime(ctx, id, scanTime, workDate, editedAt, editorID); err != nil {
		s.logger.Error("failed to update scan time", "error", err, "attendance_id", id)
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("attendance scan time edited",
		"attendance_id", id,
		"scan_time", scanTime,
		"work_date", workDate,
		"edited_by", editorID)

	return FromDataModel(updated), nil
}

func (s *Service) normalizeDay(day string) (string, error) {
	day = strings.TrimSpace(day)
	if day == "" {
		return s.Today(), nil
	}
	if _, err := workday.Day(day, s.location); err != nil {
		return "", err
	}
	return day, nil
}

func firstSeen(r *SummaryRow) time.Time {
	switch {
	case r.FirstIn != nil:
		return r.FirstIn.ScanTime
	case r.LastOut != nil:
		return r.LastOut.ScanTime
	default:
		return time.Time{}
	}
}
