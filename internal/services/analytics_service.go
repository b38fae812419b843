package services

import (
	"context"
	"fmt"
	"time"

	"worklog/internal/core"
)

// AnalyticsResult pairs the resolved range with the aggregated report.
type AnalyticsResult struct {
	Range  core.DateRange `json:"range"`
	Report core.Report    `json:"report"`
}

// AnalyticsService computes aggregation reports. Every call reads a fresh
// snapshot from the store; nothing is cached between calls.
type AnalyticsService struct {
	store EntryStore
}

func NewAnalyticsService(store EntryStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Report resolves the period, filters the snapshot for the viewer, and
// aggregates. The resolver and aggregator are pure; the only error
// channel here is the store read.
func (s *AnalyticsService) Report(ctx context.Context, viewer core.Viewer, period core.Period, custom core.CustomBounds, now time.Time) (AnalyticsResult, error) {
	r := core.ResolveDateRange(period, custom, now)

	entries, err := s.snapshot(ctx, viewer)
	if err != nil {
		return AnalyticsResult{}, fmt.Errorf("read entries: %w", err)
	}

	filtered := core.FilterEntries(entries, r, viewer)
	return AnalyticsResult{
		Range:  r,
		Report: core.Aggregate(filtered),
	}, nil
}

func (s *AnalyticsService) snapshot(ctx context.Context, viewer core.Viewer) ([]core.TimeEntry, error) {
	if viewer.Privileged {
		return s.store.ListEntries(ctx)
	}
	return s.store.ListEntriesByUser(ctx, viewer.UserID)
}
