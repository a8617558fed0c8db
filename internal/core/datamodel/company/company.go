package company

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Company struct {
	ID                  string    `gorm:"primaryKey;column:id"`
	CompanyCode         string    `gorm:"column:company_code;uniqueIndex;not null"`
	Name                string    `gorm:"column:name;not null"`
	EmployeeTypeAllowed string    `gorm:"column:employee_type_allowed;not null"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Company) TableName() string {
	return "companies"
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
