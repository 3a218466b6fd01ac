package eventcatalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/jubilee25/celebration-api/internal/domain"
)

//go:embed events.json
var embeddedEvents []byte

// Catalog serves the gallery events. The list is decoded once at construction and never
// changes afterwards, so reads need no locking.
type Catalog struct {
	events []domain.Event
}

// New loads the embedded event list.
func New() (*Catalog, error) {
	return decode(embeddedEvents)
}

// NewFromFile loads events from filename, falling back to the embedded list when the
// file does not exist.
func NewFromFile(filename string) (*Catalog, error) {
	if filename == "" {
		return New()
	}
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return New()
	}
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func decode(data []byte) (*Catalog, error) {
	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	seen := make(map[domain.EventID]struct{}, len(events))
	for i := range events {
		e := &events[i]
		if e.ID == "" {
			return nil, fmt.Errorf("event %d: missing id", i)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("event %q: duplicate id", e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		if e.Photos == nil {
			e.Photos = []domain.Photo{}
		}
	}
	return &Catalog{events: events}, nil
}

func (c *Catalog) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListEvents")
	defer span.End()

	out := make([]domain.Event, len(c.events))
	copy(out, c.events)
	return out, nil
}
