package attendance

import (
	"strings"
	"time"

	"github.com/frahmantamala/workforce-presence/internal/core/common/validation"
)

type ScanRequest struct {
	QRID       string `json:"qrId"`
	ScanType   string `json:"scanType,omitempty"`
	Context    string `json:"context,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
}

func (r *ScanRequest) Normalize() {
	r.QRID = strings.TrimSpace(r.QRID)
	r.ScanType = strings.ToUpper(strings.TrimSpace(r.ScanType))
	r.Context = strings.ToUpper(strings.TrimSpace(r.Context))
	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
}

func (r ScanRequest) Validate() error {
	if r.Context != "" && r.Context != LocationSecurity {
		return ErrInvalidContext
	}
	v := validation.NewValidator()
	v.Field("qrId", r.QRID).Required()
	v.Field("scanType", r.ScanType).OneOf(ScanTypeIn, ScanTypeOut)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type UpdateScanTimeRequest struct {
	ScanTime time.Time `json:"scanTime"`
}

func (r UpdateScanTimeRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("scanTime", r.ScanTime).Required()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
