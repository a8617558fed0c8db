package process

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Process struct {
	ID          string    `gorm:"primaryKey;column:id"`
	ProcessCode string    `gorm:"column:process_code;uniqueIndex;not null"`
	Name        string    `gorm:"column:name;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Process) TableName() string {
	return "processes"
}

func (p *Process) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
