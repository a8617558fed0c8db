package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/workforce-presence/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/attendance"
	"gorm.io/gorm"
)

// AttendanceRepository implements attendance.RepositoryAPI using GORM
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(ctx context.Context, log *attendanceDatamodel.AttendanceLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *AttendanceRepository) Transaction(ctx context.Context, fn func(tx attendance.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AttendanceRepository{db: tx})
	})
}

// LockScanner takes a transaction-scoped advisory lock on postgres. Sqlite serializes
// transactions on its single connection.
func (r *AttendanceRepository) LockScanner(ctx context.Context, credentialID, employeeID string) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "attendance:"+credentialID+":"+employeeID).Error
}

func (r *AttendanceRepository) GetLastSecurityLog(ctx context.Context, credentialID, employeeID, workDate string) (*attendanceDatamodel.AttendanceLog, error) {
	var logs []attendanceDatamodel.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("qr_code_id = ? AND employee_id = ? AND work_date = ? AND scan_location = ?",
			credentialID, employeeID, workDate, attendance.LocationSecurity).
		Order("scan_time DESC, created_at DESC").
		Limit(1).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

func (r *AttendanceRepository) ListByWorkDate(ctx context.Context, workDate, credentialID string) ([]*attendanceDatamodel.AttendanceLog, error) {
	var logs []*attendanceDatamodel.AttendanceLog
	query := r.db.WithContext(ctx).
		Where("work_date = ? AND scan_location = ?", workDate, attendance.LocationSecurity)
	if credentialID != "" {
		query = query.Where("qr_code_id = ?", credentialID)
	}
	if err := query.Order("scan_time ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (*attendanceDatamodel.AttendanceLog, error) {
	var l attendanceDatamodel.AttendanceLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *AttendanceRepository) UpdateScanTime(ctx context.Context, id string, scanTime time.Time, workDate string, editedAt time.Time, editedBy string) error {
	updates := map[string]interface{}{
		"scan_time": scanTime,
		"work_date": workDate,
		"edited_at": editedAt,
	}
	if editedBy != "" {
		updates["edited_by"] = editedBy
	}
	result := r.db.WithContext(ctx).
		Model(&attendanceDatamodel.AttendanceLog{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}
