package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceLog struct {
	ID           string     `gorm:"primaryKey;column:id"`
	QRCodeID     string     `gorm:"column:qr_code_id;not null;index:idx_attendance_credential_day,priority:1"`
	CompanyID    string     `gorm:"column:company_id;not null"`
	EmployeeID   string     `gorm:"column:employee_id;not null;index:idx_attendance_employee_day,priority:1"`
	ScanType     string     `gorm:"column:scan_type;not null"`
	ScanLocation string     `gorm:"column:scan_location;not null;index:idx_attendance_credential_day,priority:3"`
	ScanTime     time.Time  `gorm:"column:scan_time;not null;index:idx_attendance_credential_day,priority:4"`
	WorkDate     string     `gorm:"column:work_date;not null;index:idx_attendance_credential_day,priority:2;index:idx_attendance_employee_day,priority:2"`
	EditedAt     *time.Time `gorm:"column:edited_at"`
	EditedBy     *string    `gorm:"column:edited_by"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (AttendanceLog) TableName() string {
	return "attendance_logs"
}

func (a *AttendanceLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
