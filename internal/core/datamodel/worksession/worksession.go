package worksession

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkSession rows carry two partial unique indexes so the store itself rejects a second
// open session for the same credential and process, or for the same employee.
type WorkSession struct {
	ID              string     `gorm:"primaryKey;column:id"`
	QRCodeID        string     `gorm:"column:qr_code_id;not null;uniqueIndex:idx_work_sessions_open_process,where:end_time IS NULL"`
	CompanyID       string     `gorm:"column:company_id;not null;index"`
	EmployeeID      *string    `gorm:"column:employee_id;uniqueIndex:idx_work_sessions_open_employee,where:end_time IS NULL"`
	ProcessName     string     `gorm:"column:process_name;not null;uniqueIndex:idx_work_sessions_open_process,where:end_time IS NULL"`
	StartTime       time.Time  `gorm:"column:start_time;not null;index"`
	EndTime         *time.Time `gorm:"column:end_time"`
	DurationMinutes *int64     `gorm:"column:duration_minutes"`
	EditedAt        *time.Time `gorm:"column:edited_at"`
	EditedBy        *string    `gorm:"column:edited_by"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkSession) TableName() string {
	return "work_sessions"
}

func (w *WorkSession) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
