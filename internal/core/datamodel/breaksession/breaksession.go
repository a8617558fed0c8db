package breaksession

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BreakSession struct {
	ID        string     `gorm:"primaryKey;column:id"`
	BreakType string     `gorm:"column:break_type;not null"`
	StartTime time.Time  `gorm:"column:start_time;not null;index"`
	EndTime   *time.Time `gorm:"column:end_time"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (BreakSession) TableName() string {
	return "break_sessions"
}

func (b *BreakSession) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
