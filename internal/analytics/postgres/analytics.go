package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/analytics"
	"github.com/jmoiron/sqlx"
)

// AnalyticsRepository runs the reporting reads as plain SQL over sqlx.
// Aggregation happens in Go so the same queries run on postgres and sqlite.
type AnalyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) analytics.RepositoryAPI {
	return &AnalyticsRepository{db: db}
}

const securityScansQuery = `
SELECT a.employee_id, a.company_id, a.scan_type, a.scan_time,
       e.employee_code, e.name AS employee_name, e.category AS employee_type,
       c.name AS company_name
FROM attendance_logs a
LEFT JOIN employees e ON e.id = a.employee_id
LEFT JOIN companies c ON c.id = a.company_id
WHERE a.work_date = ? AND a.scan_location = ?
ORDER BY a.scan_time ASC`

func (r *AnalyticsRepository) SecurityScans(ctx context.Context, workDate string) ([]*analytics.SecurityScan, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var rows []*analytics.SecurityScan
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(securityScansQuery), workDate, analytics.ScanLocationSecurity); err != nil {
		return nil, fmt.Errorf("security scans query: %w", err)
	}
	return rows, nil
}

const employeeSessionsQuery = `
SELECT ws.employee_id, ws.company_id, c.name AS company_name,
       ws.start_time, ws.end_time, ws.duration_minutes
FROM work_sessions ws
LEFT JOIN companies c ON c.id = ws.company_id
WHERE ws.employee_id IN (?) AND ws.start_time >= ? AND ws.start_time <= ?`

func (r *AnalyticsRepository) EmployeeSessions(ctx context.Context, employeeIDs []string, from, to time.Time) ([]*analytics.SessionSpan, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(employeeSessionsQuery, employeeIDs, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("employee sessions query: %w", err)
	}

	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var rows []*analytics.SessionSpan
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("employee sessions query: %w", err)
	}
	return rows, nil
}

const categorySessionsQuery = `
SELECT ws.employee_id, ws.company_id, c.name AS company_name,
       ws.start_time, ws.end_time, ws.duration_minutes
FROM work_sessions ws
JOIN qr_codes q ON q.id = ws.qr_code_id
LEFT JOIN companies c ON c.id = ws.company_id
WHERE q.category = ? AND ws.start_time >= ? AND ws.start_time <= ?`

func (r *AnalyticsRepository) CategorySessions(ctx context.Context, category string, from, to time.Time) ([]*analytics.SessionSpan, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var rows []*analytics.SessionSpan
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(categorySessionsQuery), category, from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("category sessions query: %w", err)
	}
	return rows, nil
}

const breaksQuery = `
SELECT start_time, end_time
FROM break_sessions
WHERE start_time >= ? AND start_time <= ?`

func (r *AnalyticsRepository) Breaks(ctx context.Context, from, to time.Time) ([]*analytics.BreakSpan, error) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()

	var rows []*analytics.BreakSpan
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(breaksQuery), from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("breaks query: %w", err)
	}
	return rows, nil
}
