package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"worklog/internal/amqp"
	"worklog/internal/core"
	"worklog/internal/export"
	"worklog/internal/storage"
)

// ExportWorker mirrors time entries from SQLite into the external
// timesheet. Messages drive the common path; the pending-export scan is
// the backup when messages are lost.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	writer    export.TimesheetWriter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, writer export.TimesheetWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleMessage processes one entry event from the queue.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.EntryEventMessage) error {
	switch msg.Action {
	case amqp.ActionSync:
		return w.handleSync(ctx, msg.EntryID)
	case amqp.ActionDelete:
		return w.handleDelete(ctx, msg.EntryID)
	default:
		// FromJSON rejects unknown actions; this is unreachable in practice.
		return fmt.Errorf("unknown action %q", msg.Action)
	}
}

func (w *ExportWorker) handleSync(ctx context.Context, entryID string) error {
	entry, err := w.storage.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Deleted locally before the message was processed; nothing to export.
			slog.InfoContext(ctx, "Entry gone before export, dropping message", "entry_id", entryID)
			return nil
		}
		return fmt.Errorf("get entry from storage: %w", err)
	}

	return w.exportEntry(ctx, entry)
}

func (w *ExportWorker) handleDelete(ctx context.Context, entryID string) error {
	if err := w.writer.RemoveEntry(ctx, entryID); err != nil {
		return fmt.Errorf("remove entry from timesheet: %w", err)
	}
	slog.InfoContext(ctx, "Removed entry from timesheet", "entry_id", entryID)
	return nil
}

// ProcessPendingEntries exports entries still marked pending. Backup
// mechanism for lost messages; called on a timer.
func (w *ExportWorker) ProcessPendingEntries(ctx context.Context) error {
	pending, err := w.storage.ListEntriesPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending entries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, entry := range pending {
		if err := w.exportEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry", "entry_id", entry.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupCheck drains the pending backlog once at worker startup,
// recovering from missed messages or worker downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.ListEntriesPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending entries for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...", "count", len(pending))

	exported := 0
	failed := 0
	for _, entry := range pending {
		if err := w.exportEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to export entry during startup", "entry_id", entry.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)

	return nil
}

func (w *ExportWorker) exportEntry(ctx context.Context, entry core.TimeEntry) error {
	// Edits queue the entry for re-export. Drop the stale row first so
	// the timesheet holds exactly one row per entry; removal of a row
	// that was never written is a no-op.
	if err := w.writer.RemoveEntry(ctx, entry.ID); err != nil {
		if markErr := w.storage.MarkExportError(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "entry_id", entry.ID, "error", markErr)
		}
		return fmt.Errorf("remove stale timesheet row: %w", err)
	}

	ref, err := w.writer.AppendEntry(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "entry_id", entry.ID, "error", markErr)
		}
		return fmt.Errorf("append to timesheet: %w", err)
	}

	if err := w.storage.MarkExported(ctx, entry.ID); err != nil {
		// The row is written; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark entry as exported", "entry_id", entry.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported entry to timesheet",
		"entry_id", entry.ID,
		"sheet_ref", ref,
		"date", entry.Date.String(),
		"hours", entry.Hours)

	return nil
}
