package qrcode

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRCode is the persisted scan credential. EmployeeID is nil only for legacy shared manpower codes.
type QRCode struct {
	ID          string    `gorm:"primaryKey;column:id"`
	QRID        string    `gorm:"column:qr_id;uniqueIndex;not null"`
	CompanyID   string    `gorm:"column:company_id;index;not null"`
	CompanyName string    `gorm:"column:company_name;not null"`
	EmployeeID  *string   `gorm:"column:employee_id;uniqueIndex"`
	Category    string    `gorm:"column:category;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (QRCode) TableName() string {
	return "qr_codes"
}

func (q *QRCode) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.QRID == "" {
		q.QRID = uuid.NewString()
	}
	return nil
}
