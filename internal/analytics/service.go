package analytics

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/workforce-presence/internal/clock"
	"github.com/frahmantamala/workforce-presence/internal/core/common/workday"
)

type RepositoryAPI interface {
	SecurityScans(ctx context.Context, workDate string) ([]*SecurityScan, error)
	EmployeeSessions(ctx context.Context, employeeIDs []string, from, to time.Time) ([]*SessionSpan, error)
	CategorySessions(ctx context.Context, category string, from, to time.Time) ([]*SessionSpan, error)
	Breaks(ctx context.Context, from, to time.Time) ([]*BreakSpan, error)
}

type Service struct {
	repo     RepositoryAPI
	clock    clock.Clock
	location *time.Location
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, clk clock.Clock, location *time.Location, logger *slog.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, clock: clk, location: location, logger: logger}
}

// DailyIdle reports, for every employee who checked in at security on day, how much of
// their presence is not covered by work sessions or the plant-wide breaks.
func (s *Service) DailyIdle(ctx context.Context, day string) (*IdleReport, error) {
	day, r, err := s.dayRange(day)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()

	breaks, err := s.repo.Breaks(ctx, r.Start, r.End)
	if err != nil {
		s.logger.Error("failed to load breaks", "error", err, "date", day)
		return nil, err
	}
	var breakMinutes float64
	for _, b := range breaks {
		end := now
		if b.EndTime != nil {
			end = *b.EndTime
		}
		if m := minutesBetween(b.StartTime, end); m > 0 {
			breakMinutes += m
		}
	}

	scans, err := s.repo.SecurityScans(ctx, day)
	if err != nil {
		s.logger.Error("failed to load security scans", "error", err, "date", day)
		return nil, err
	}

	rows := make(map[string]*IdleRow)
	var employeeIDs []string
	for _, sc := range scans {
		if sc.ScanType != scanTypeIn {
			continue
		}
		row, ok := rows[sc.EmployeeID]
		if !ok {
			row = &IdleRow{
				EmployeeID:   sc.EmployeeID,
				EmployeeCode: stringOr(sc.EmployeeCode, ""),
				EmployeeName: stringOr(sc.EmployeeName, UnknownEmployee),
				EmployeeType: stringOr(sc.EmployeeType, ""),
				CompanyID:    sc.CompanyID,
				CompanyName:  stringOr(sc.CompanyName, UnknownCompany),
				CheckInTime:  sc.ScanTime.UTC(),
			}
			rows[sc.EmployeeID] = row
			employeeIDs = append(employeeIDs, sc.EmployeeID)
			continue
		}
		if sc.ScanTime.Before(row.CheckInTime) {
			row.CheckInTime = sc.ScanTime.UTC()
		}
	}
	for _, sc := range scans {
		row, ok := rows[sc.EmployeeID]
		if !ok || sc.ScanType != scanTypeOut {
			continue
		}
		if row.CheckOutTime == nil || sc.ScanTime.After(*row.CheckOutTime) {
			out := sc.ScanTime.UTC()
			row.CheckOutTime = &out
		}
	}

	work := make(map[string]float64)
	if len(employeeIDs) > 0 {
		sessions, err := s.repo.EmployeeSessions(ctx, employeeIDs, r.Start, r.End)
		if err != nil {
			s.logger.Error("failed to load work sessions", "error", err, "date", day)
			return nil, err
		}
		for _, ws := range sessions {
			if ws.EmployeeID != nil {
				work[*ws.EmployeeID] += ws.EffectiveMinutes(now)
			}
		}
	}

	report := &IdleReport{Date: day, BreakMinutes: Round2(breakMinutes), Rows: make([]*IdleRow, 0, len(rows))}
	for _, id := range employeeIDs {
		row := rows[id]
		checkout := now
		if row.CheckOutTime != nil {
			checkout = *row.CheckOutTime
			row.IsCheckedOut = true
		}
		presence := minutesBetween(row.CheckInTime, checkout)
		idle := presence - (work[id] + breakMinutes)
		if idle < 0 {
			idle = 0
		}

		row.PresenceMinutes, row.PresenceHours = Round2(presence), Round2(presence/60)
		row.WorkMinutes, row.WorkHours = Round2(work[id]), Round2(work[id]/60)
		row.BreakMinutes, row.BreakHours = Round2(breakMinutes), Round2(breakMinutes/60)
		row.IdleMinutes, row.IdleHours = Round2(idle), Round2(idle/60)
		report.Rows = append(report.Rows, row)
	}
	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].IdleMinutes > report.Rows[j].IdleMinutes
	})
	return report, nil
}

func (s *Service) DailyHours(ctx context.Context, day string) (*HoursReport, error) {
	day, r, err := s.dayRange(day)
	if err != nil {
		return nil, err
	}
	rows, err := s.hours(ctx, r, false)
	if err != nil {
		return nil, err
	}
	return &HoursReport{Date: day, Rows: rows}, nil
}

func (s *Service) DailyAverageHours(ctx context.Context, day string) (*HoursReport, error) {
	day, r, err := s.dayRange(day)
	if err != nil {
		return nil, err
	}
	rows, err := s.hours(ctx, r, true)
	if err != nil {
		return nil, err
	}
	return &HoursReport{Date: day, Rows: rows}, nil
}

// MonthlyHours takes a YYYY-MM month; empty means the current month.
func (s *Service) MonthlyHours(ctx context.Context, month string) (*HoursReport, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		month = s.clock.Now().In(s.location).Format(workday.MonthLayout)
	}
	r, err := workday.Month(month, s.location)
	if err != nil {
		return nil, err
	}
	rows, err := s.hours(ctx, r, false)
	if err != nil {
		return nil, err
	}
	return &HoursReport{Month: month, Rows: rows}, nil
}

func (s *Service) hours(ctx context.Context, r workday.Range, withAverage bool) ([]*HoursRow, error) {
	sessions, err := s.repo.CategorySessions(ctx, CategoryManpower, r.Start, r.End)
	if err != nil {
		s.logger.Error("failed to load manpower sessions", "error", err)
		return nil, err
	}
	now := s.clock.Now().UTC()

	byCompany := make(map[string]*HoursRow)
	for _, ws := range sessions {
		row, ok := byCompany[ws.CompanyID]
		if !ok {
			row = &HoursRow{CompanyID: ws.CompanyID, CompanyName: stringOr(ws.CompanyName, UnknownCompany)}
			byCompany[ws.CompanyID] = row
		}
		row.SessionCount++
		row.TotalMinutes += ws.EffectiveMinutes(now)
	}

	rows := make([]*HoursRow, 0, len(byCompany))
	for _, row := range byCompany {
		row.TotalHours = Round2(row.TotalMinutes / 60)
		row.TotalMinutes = Round2(row.TotalMinutes)
		if withAverage {
			avg := 0.0
			if row.SessionCount > 0 {
				avg = Round2(row.TotalHours / float64(row.SessionCount))
			}
			row.AverageHoursPerSession = &avg
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CompanyName != rows[j].CompanyName {
			return rows[i].CompanyName < rows[j].CompanyName
		}
		return rows[i].CompanyID < rows[j].CompanyID
	})
	return rows, nil
}

func (s *Service) dayRange(day string) (string, workday.Range, error) {
	day = strings.TrimSpace(day)
	if day == "" {
		day = workday.Today(s.clock.Now(), s.location)
	}
	r, err := workday.Day(day, s.location)
	if err != nil {
		return "", workday.Range{}, err
	}
	return day, r, nil
}
