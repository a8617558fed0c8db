package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/workforce-presence/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/attendance"
	sessionDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/worksession"
	"github.com/frahmantamala/workforce-presence/internal/worksession"
	"gorm.io/gorm"
)

// WorkSessionRepository implements worksession.RepositoryAPI using GORM
type WorkSessionRepository struct {
	db *gorm.DB
}

func NewWorkSessionRepository(db *gorm.DB) worksession.RepositoryAPI {
	return &WorkSessionRepository{db: db}
}

func (r *WorkSessionRepository) Transaction(ctx context.Context, fn func(tx worksession.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&WorkSessionRepository{db: tx})
	})
}

// LockEmployee takes a transaction-scoped advisory lock on postgres. Other dialects rely on
// the partial unique indexes alone.
func (r *WorkSessionRepository) LockEmployee(ctx context.Context, employeeID string) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", employeeID).Error
}

func (r *WorkSessionRepository) FindOpen(ctx context.Context, credentialID, processName string) (*sessionDatamodel.WorkSession, error) {
	return r.firstOpen(ctx, "qr_code_id = ? AND process_name = ?", credentialID, processName)
}

func (r *WorkSessionRepository) FindOpenByEmployee(ctx context.Context, employeeID string) (*sessionDatamodel.WorkSession, error) {
	return r.firstOpen(ctx, "employee_id = ?", employeeID)
}

func (r *WorkSessionRepository) firstOpen(ctx context.Context, query string, args ...interface{}) (*sessionDatamodel.WorkSession, error) {
	var rows []*sessionDatamodel.WorkSession
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Where("end_time IS NULL").
		Order("start_time DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *WorkSessionRepository) LatestSecurityScanType(ctx context.Context, employeeID, workDate string) (string, error) {
	var logs []attendanceDatamodel.AttendanceLog
	err := r.db.WithContext(ctx).
		Select("scan_type").
		Where("employee_id = ? AND work_date = ? AND scan_location = ?", employeeID, workDate, attendance.LocationSecurity).
		Order("scan_time DESC").
		Limit(1).
		Find(&logs).Error
	if err != nil {
		return "", err
	}
	if len(logs) == 0 {
		return "", nil
	}
	return logs[0].ScanType, nil
}

func (r *WorkSessionRepository) Create(ctx context.Context, session *sessionDatamodel.WorkSession) error {
	err := r.db.WithContext(ctx).Create(session).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return worksession.ErrConcurrentStart.WithCause(err)
	}
	return err
}

// Close ends the session only if it is still open, so two racing stops cannot both succeed.
func (r *WorkSessionRepository) Close(ctx context.Context, id string, endTime time.Time, durationMinutes int64) error {
	result := r.db.WithContext(ctx).
		Model(&sessionDatamodel.WorkSession{}).
		Where("id = ? AND end_time IS NULL", id).
		Updates(map[string]interface{}{
			"end_time":         endTime,
			"duration_minutes": durationMinutes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return worksession.ErrNoOpenSession
	}
	return nil
}

func (r *WorkSessionRepository) GetByID(ctx context.Context, id string) (*sessionDatamodel.WorkSession, error) {
	var s sessionDatamodel.WorkSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, worksession.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *WorkSessionRepository) UpdateTimes(ctx context.Context, id string, start time.Time, end *time.Time, durationMinutes *int64, editedAt time.Time, editedBy string) error {
	updates := map[string]interface{}{
		"start_time":       start,
		"end_time":         end,
		"duration_minutes": durationMinutes,
		"edited_at":        editedAt,
	}
	if editedBy != "" {
		updates["edited_by"] = editedBy
	}
	result := r.db.WithContext(ctx).
		Model(&sessionDatamodel.WorkSession{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return worksession.ErrParallelSession.WithCause(result.Error)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return worksession.ErrSessionNotFound
	}
	return nil
}

func (r *WorkSessionRepository) List(ctx context.Context, from, to time.Time, status string) ([]*sessionDatamodel.WorkSession, error) {
	var rows []*sessionDatamodel.WorkSession
	query := r.db.WithContext(ctx).Where("start_time BETWEEN ? AND ?", from, to)
	switch status {
	case worksession.StatusOpen:
		query = query.Where("end_time IS NULL")
	case worksession.StatusClosed:
		query = query.Where("end_time IS NOT NULL")
	}
	if err := query.Order("start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
