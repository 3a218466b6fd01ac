package events

import (
	"sort"
	"strings"

	"github.com/jubilee25/celebration-api/internal/domain"
)

// DateRange is an inclusive pair of optional bounds.
type DateRange struct {
	Start *domain.CalendarDate
	End   *domain.CalendarDate
}

// FilterState is the gallery's mutable filter: a tag set (OR semantics) and a date range.
type FilterState struct {
	selected  map[string]struct{}
	DateRange DateRange
}

// NewFilterState seeds the selection from a comma-separated tags parameter.
func NewFilterState(tagsParam string) FilterState {
	f := FilterState{selected: map[string]struct{}{}}
	for _, t := range ParseTagsParam(tagsParam) {
		f.selected[t] = struct{}{}
	}
	return f
}

// ParseTagsParam splits on commas, trims, and drops empty entries.
func ParseTagsParam(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ToggleTag adds tag to the selection, or removes it when already selected.
func (f *FilterState) ToggleTag(tag string) {
	if f.selected == nil {
		f.selected = map[string]struct{}{}
	}
	if _, ok := f.selected[tag]; ok {
		delete(f.selected, tag)
		return
	}
	f.selected[tag] = struct{}{}
}

// SetDateRange replaces both bounds.
func (f *FilterState) SetDateRange(r DateRange) {
	f.DateRange = r
}

// Clear resets tags and date range together.
func (f *FilterState) Clear() {
	f.selected = map[string]struct{}{}
	f.DateRange = DateRange{}
}

// SelectedTags returns the selection sorted.
func (f FilterState) SelectedTags() []string {
	out := make([]string, 0, len(f.selected))
	for t := range f.selected {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Matches applies the tag predicate AND the date predicate.
func (f FilterState) Matches(e domain.Event) bool {
	if len(f.selected) > 0 && !e.HasAnyTag(f.selected) {
		return false
	}
	if f.DateRange.Start != nil && e.Date.Before(*f.DateRange.Start) {
		return false
	}
	if f.DateRange.End != nil && e.Date.After(*f.DateRange.End) {
		return false
	}
	return true
}

// Apply returns the matching events, most recent first. The input is not modified.
func Apply(all []domain.Event, f FilterState) []domain.Event {
	out := make([]domain.Event, 0, len(all))
	for _, e := range all {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// TagUniverse returns every tag used by any event, deduplicated and sorted.
func TagUniverse(all []domain.Event) []string {
	seen := map[string]struct{}{}
	for _, e := range all {
		for _, t := range e.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
