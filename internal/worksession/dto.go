package worksession

import (
	"strings"
	"time"

	"github.com/frahmantamala/workforce-presence/internal/core/common/validation"
)

type ToggleRequest struct {
	QRID        string `json:"qrId"`
	ProcessName string `json:"processName"`
	EmployeeID  string `json:"employeeId,omitempty"`
}

func (r *ToggleRequest) Normalize() {
	r.QRID = strings.TrimSpace(r.QRID)
	r.ProcessName = strings.TrimSpace(r.ProcessName)
	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
}

func (r ToggleRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("qrId", r.QRID).Required()
	v.Field("processName", r.ProcessName).Required().MaxLength(255)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateTimesRequest carries an admin correction; a nil field keeps the stored value.
type UpdateTimesRequest struct {
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

type ListFilter struct {
	Date   string
	Status string
}

func (f ListFilter) Validate() error {
	v := validation.NewValidator()
	v.Field("status", f.Status).OneOf(StatusOpen, StatusClosed)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
