package domain

// Photo is one gallery image attached to an event.
type Photo struct {
	URL     string  `json:"url"`
	Caption *string `json:"caption,omitempty"`
}

// Event is an entry in the static celebration gallery.
type Event struct {
	ID          EventID      `json:"id"`
	Date        CalendarDate `json:"date"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags"`
	VideoURL    *string      `json:"videoUrl,omitempty"`
	Photos      []Photo      `json:"photos"`
}

// HasAnyTag reports whether the event carries at least one tag in set.
func (e Event) HasAnyTag(set map[string]struct{}) bool {
	for _, t := range e.Tags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
