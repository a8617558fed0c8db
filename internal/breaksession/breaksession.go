package breaksession

import (
	"strings"
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/core/common/validation"
	breakDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/breaksession"
)

const (
	TypeBreakfast = "BREAKFAST"
	TypeLunch     = "LUNCH"
	TypeTea       = "TEA"
	TypeClothes   = "CLOTHES"
)

var (
	ErrBreakNotFound     = internal.NewNotFoundError("Break session not found", internal.ErrCodeBreakSessionNotFound)
	ErrBreakAlreadyEnded = internal.NewBadRequestError("Break session has already ended", internal.ErrCodeBreakAlreadyEnded)
	ErrInvalidTimeRange  = internal.NewBadRequestError("endTime must not be before startTime", internal.ErrCodeInvalidTimeRange)
)

// Break is a plant-wide pause; it is not tied to an employee or credential.
type Break struct {
	ID        string     `json:"id"`
	BreakType string     `json:"breakType"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

func IsValidType(breakType string) bool {
	switch breakType {
	case TypeBreakfast, TypeLunch, TypeTea, TypeClothes:
		return true
	}
	return false
}

type CreateRequest struct {
	BreakType string     `json:"breakType"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

func (r *CreateRequest) Validate() error {
	r.BreakType = strings.ToUpper(strings.TrimSpace(r.BreakType))
	v := validation.NewValidator()
	v.Field("breakType", r.BreakType).Required().Custom(func(value interface{}) *internal.AppError {
		bt, _ := value.(string)
		if bt == "" || IsValidType(bt) {
			return nil
		}
		return internal.NewValidationFieldError("breakType", "breakType must be one of BREAKFAST, LUNCH, TEA, CLOTHES", internal.ErrCodeInvalidBreakType)
	})
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func FromDataModel(b *breakDatamodel.BreakSession) *Break {
	out := &Break{
		ID:        b.ID,
		BreakType: b.BreakType,
		StartTime: b.StartTime.UTC(),
	}
	if b.EndTime != nil {
		end := b.EndTime.UTC()
		out.EndTime = &end
	}
	return out
}
