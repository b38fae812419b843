// Package export defines the ports the export pipeline writes through.
package export

import (
	"context"

	"worklog/internal/core"
)

// TimesheetWriter appends and removes time entry rows in an external
// timesheet. AppendEntry returns a reference to the written row.
type TimesheetWriter interface {
	AppendEntry(ctx context.Context, e core.TimeEntry) (string, error)
	RemoveEntry(ctx context.Context, entryID string) error
}
