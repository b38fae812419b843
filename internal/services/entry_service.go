package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"worklog/internal/core"
)

// ErrForbidden is returned when a viewer touches an entry they do not own.
var ErrForbidden = errors.New("forbidden")

// NewEntry carries the fields a caller supplies when logging time. Hours
// is always derived from the start and end times, never taken as input.
type NewEntry struct {
	UserID      string
	Date        core.Date
	StartTime   string
	EndTime     string
	Category    string
	Subcategory string
	Description string
}

// EntryUpdate is a partial field replace; nil fields keep their value.
type EntryUpdate struct {
	Date        *core.Date
	StartTime   *string
	EndTime     *string
	Category    *string
	Subcategory *string
	Description *string
}

// EntryService validates and persists time entries and feeds the export
// pipeline.
type EntryService struct {
	store     EntryStore
	taxonomy  *core.Taxonomy
	publisher EntryEventPublisher
}

func NewEntryService(store EntryStore, taxonomy *core.Taxonomy, publisher EntryEventPublisher) *EntryService {
	return &EntryService{
		store:     store,
		taxonomy:  taxonomy,
		publisher: publisher,
	}
}

// Create validates the input, derives the hour count, and stores the
// entry. Entries whose derived duration is invalid are rejected here,
// never stored.
func (s *EntryService) Create(ctx context.Context, in NewEntry) (core.TimeEntry, error) {
	hours, err := core.HoursBetween(in.StartTime, in.EndTime)
	if err != nil {
		return core.TimeEntry{}, err
	}
	if err := s.taxonomy.Validate(in.Category, in.Subcategory); err != nil {
		return core.TimeEntry{}, err
	}

	entry := core.TimeEntry{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Description: in.Description,
		Hours:       hours,
		CreatedAt:   time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return core.TimeEntry{}, err
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return core.TimeEntry{}, fmt.Errorf("save entry: %w", err)
	}

	s.publishSync(ctx, entry.ID)
	return entry, nil
}

// Update applies a partial field replace. Only the owner or a privileged
// viewer may update an entry; the duration invariant is re-checked.
func (s *EntryService) Update(ctx context.Context, viewer core.Viewer, id string, upd EntryUpdate) (core.TimeEntry, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return core.TimeEntry{}, err
	}
	if !viewer.Privileged && entry.UserID != viewer.UserID {
		return core.TimeEntry{}, ErrForbidden
	}

	if upd.Date != nil {
		entry.Date = *upd.Date
	}
	if upd.StartTime != nil {
		entry.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		entry.EndTime = *upd.EndTime
	}
	if upd.Category != nil {
		entry.Category = *upd.Category
	}
	if upd.Subcategory != nil {
		entry.Subcategory = *upd.Subcategory
	}
	if upd.Description != nil {
		entry.Description = *upd.Description
	}

	hours, err := core.HoursBetween(entry.StartTime, entry.EndTime)
	if err != nil {
		return core.TimeEntry{}, err
	}
	entry.Hours = hours

	if err := s.taxonomy.Validate(entry.Category, entry.Subcategory); err != nil {
		return core.TimeEntry{}, err
	}
	if err := entry.Validate(); err != nil {
		return core.TimeEntry{}, err
	}

	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		return core.TimeEntry{}, fmt.Errorf("update entry: %w", err)
	}

	s.publishSync(ctx, entry.ID)
	return entry, nil
}

// Delete removes an entry after an ownership check.
func (s *EntryService) Delete(ctx context.Context, viewer core.Viewer, id string) error {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.Privileged && entry.UserID != viewer.UserID {
		return ErrForbidden
	}

	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishEntryDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish entry delete message",
				"entry_id", id, "error", err)
			// Entry is already gone locally; the export side reconciles later.
		}
	}
	return nil
}

// ListFor returns the entries visible to the viewer: everything for a
// privileged viewer, otherwise only their own.
func (s *EntryService) ListFor(ctx context.Context, viewer core.Viewer) ([]core.TimeEntry, error) {
	if viewer.Privileged {
		return s.store.ListEntries(ctx)
	}
	return s.store.ListEntriesByUser(ctx, viewer.UserID)
}

// Get returns one entry after an ownership check.
func (s *EntryService) Get(ctx context.Context, viewer core.Viewer, id string) (core.TimeEntry, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return core.TimeEntry{}, err
	}
	if !viewer.Privileged && entry.UserID != viewer.UserID {
		return core.TimeEntry{}, ErrForbidden
	}
	return entry, nil
}

// Taxonomy exposes the category table for forms.
func (s *EntryService) Taxonomy() *core.Taxonomy {
	return s.taxonomy
}

func (s *EntryService) publishSync(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEntrySync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry sync message",
			"entry_id", id, "error", err)
		// Entry is saved locally; the worker's backlog scan catches up.
	}
}
