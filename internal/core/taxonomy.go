package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownSubcategory = errors.New("unknown subcategory")
)

// CategoryGroup is one category with its ordered set of allowed subcategories.
type CategoryGroup struct {
	Name          string
	Subcategories []string
}

// Taxonomy is the enumerated category configuration table. Categories and
// their subcategories keep the order they were declared in, which is also
// the order forms and reports present them in.
type Taxonomy struct {
	order []string
	subs  map[string][]string
}

// NewTaxonomy builds a taxonomy from the given groups. Blank names and
// duplicates are dropped; the first occurrence wins.
func NewTaxonomy(groups []CategoryGroup) *Taxonomy {
	t := &Taxonomy{subs: make(map[string][]string)}
	for _, g := range groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			continue
		}
		if _, ok := t.subs[name]; ok {
			continue
		}
		t.order = append(t.order, name)
		t.subs[name] = dedupe(g.Subcategories)
	}
	return t
}

// DefaultTaxonomy returns the built-in work category table.
func DefaultTaxonomy() *Taxonomy {
	return NewTaxonomy([]CategoryGroup{
		{Name: "Development", Subcategories: []string{
			"Frontend", "Backend", "Database Design", "System Testing", "Code Review",
		}},
		{Name: "Project Management", Subcategories: []string{
			"Requirements Analysis", "Progress Tracking", "Meeting Coordination", "Documentation", "Risk Assessment",
		}},
		{Name: "Customer Service", Subcategories: []string{
			"Customer Inquiry", "Issue Resolution", "Technical Support", "Product Demo", "Training",
		}},
		{Name: "Administration", Subcategories: []string{
			"Paperwork", "Report Writing", "Data Entry", "Meeting Minutes", "Other",
		}},
		{Name: "Leave", Subcategories: []string{
			"Annual Leave", "Sick Leave", "Personal Leave", "Special Leave", "Compensatory Leave",
		}},
	})
}

// Categories returns the category names in declaration order.
func (t *Taxonomy) Categories() []string {
	return append([]string(nil), t.order...)
}

// Subcategories returns the allowed subcategories for a category.
func (t *Taxonomy) Subcategories(category string) ([]string, bool) {
	subs, ok := t.subs[category]
	if !ok {
		return nil, false
	}
	return append([]string(nil), subs...), true
}

// Allows reports whether subcategory is a valid choice under category.
func (t *Taxonomy) Allows(category, subcategory string) bool {
	subs, ok := t.subs[category]
	if !ok {
		return false
	}
	for _, s := range subs {
		if s == subcategory {
			return true
		}
	}
	return false
}

// Validate checks a category/subcategory pair against the table.
func (t *Taxonomy) Validate(category, subcategory string) error {
	if _, ok := t.subs[category]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if !t.Allows(category, subcategory) {
		return fmt.Errorf("%w: %q under %q", ErrUnknownSubcategory, subcategory, category)
	}
	return nil
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
