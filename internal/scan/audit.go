package scan

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/workforce-presence/internal/core/events"
)

// AuditLog returns a subscriber that writes one structured line per recorded scan.
func AuditLog(logger *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.ScanRecordedEvent)
		if !ok {
			return nil
		}
		logger.InfoContext(ctx, "scan recorded",
			"event_id", e.ID,
			"context", e.Context,
			"direction", e.Direction,
			"process_name", e.ProcessName,
			"record_id", e.RecordID,
			"employee_id", e.EmployeeID,
			"scanned_by", e.ScannedBy,
			"at", e.Timestamp)
		return nil
	}
}
