package http

import (
	"net/http"
	"time"

	"worklog/internal/core"
	"worklog/internal/services"
)

// entryView is the wire shape of a time entry.
type entryView struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Date        core.Date `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Description string    `json:"description"`
	Hours       float64   `json:"hours"`
	CreatedAt   time.Time `json:"createdAt"`
}

func viewOfEntry(e core.TimeEntry) entryView {
	return entryView{
		ID:          e.ID,
		UserID:      e.UserID,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Description: e.Description,
		Hours:       e.Hours,
		CreatedAt:   e.CreatedAt,
	}
}

func viewOfEntries(entries []core.TimeEntry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, viewOfEntry(e))
	}
	return out
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	tax := s.entries.Taxonomy()

	type group struct {
		Category      string   `json:"category"`
		Subcategories []string `json:"subcategories"`
	}
	groups := make([]group, 0)
	for _, cat := range tax.Categories() {
		subs, _ := tax.Subcategories(cat)
		groups = append(groups, group{Category: cat, Subcategories: subs})
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	entries, err := s.entries.ListFor(r.Context(), sess.Viewer())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOfEntries(entries))
}

type createEntryRequest struct {
	Date        core.Date `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Description string    `json:"description"`
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	var req createEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := s.entries.Create(r.Context(), services.NewEntry{
		UserID:      sess.UserID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOfEntry(entry))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	entry, err := s.entries.Get(r.Context(), sess.Viewer(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOfEntry(entry))
}

type updateEntryRequest struct {
	Date        *core.Date `json:"date"`
	StartTime   *string    `json:"startTime"`
	EndTime     *string    `json:"endTime"`
	Category    *string    `json:"category"`
	Subcategory *string    `json:"subcategory"`
	Description *string    `json:"description"`
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	var req updateEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := s.entries.Update(r.Context(), sess.Viewer(), r.PathValue("id"), services.EntryUpdate{
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOfEntry(entry))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	if err := s.entries.Delete(r.Context(), sess.Viewer(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
