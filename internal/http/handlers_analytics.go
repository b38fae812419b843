package http

import (
	"net/http"
	"strings"
	"time"

	"worklog/internal/core"
)

// handleAnalytics computes the aggregation report for the viewer.
// Query parameters: period (defaults to this-week), and for custom
// ranges from/to as "2006-01-02". Malformed or missing custom bounds
// fall back to this-week rather than erroring.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	q := r.URL.Query()
	period := core.Period(strings.TrimSpace(q.Get("period")))
	if period == "" {
		period = core.PeriodThisWeek
	}

	var custom core.CustomBounds
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			custom.From = d
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			custom.To = d
		}
	}

	result, err := s.analytics.Report(r.Context(), sess.Viewer(), period, custom, time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
