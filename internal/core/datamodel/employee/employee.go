package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID           string    `gorm:"primaryKey;column:id"`
	EmployeeCode string    `gorm:"column:employee_code;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	Category     string    `gorm:"column:category;not null"`
	CompanyID    string    `gorm:"column:company_id;index;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
