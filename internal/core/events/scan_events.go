package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeScanRecorded = "scan.recorded"

// ScanRecordedEvent is published after a scan changed attendance or a work session.
type ScanRecordedEvent struct {
	BaseEvent
	Context     string `json:"context"`
	Direction   string `json:"direction"`
	ProcessName string `json:"processName,omitempty"`
	RecordID    string `json:"recordId"`
	EmployeeID  string `json:"employeeId,omitempty"`
	ScannedBy   string `json:"scannedBy,omitempty"`
}

func NewScanRecordedEvent(scanContext, direction, processName, recordID, employeeID, scannedBy string, at time.Time) *ScanRecordedEvent {
	return &ScanRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeScanRecorded,
			Timestamp: at,
		},
		Context:     scanContext,
		Direction:   direction,
		ProcessName: processName,
		RecordID:    recordID,
		EmployeeID:  employeeID,
		ScannedBy:   scannedBy,
	}
}
