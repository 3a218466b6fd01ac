package events

import (
	"context"
	"sync"

	"github.com/jubilee25/celebration-api/internal/domain"
	"github.com/jubilee25/celebration-api/internal/ports/out/eventcatalog"
)

type Service struct {
	catalog eventcatalog.Catalog

	once   sync.Once
	events []domain.Event
	tags   []string
	err    error
}

func NewService(catalog eventcatalog.Catalog) *Service {
	return &Service{catalog: catalog}
}

// BrowseInput carries the raw gallery query values.
type BrowseInput struct {
	Tags string
	From string
	To   string
}

// BrowseResult is the filtered view plus the full tag universe.
type BrowseResult struct {
	Events       []domain.Event
	Tags         []string
	SelectedTags []string
}

// Browse filters the catalog. Unparseable date bounds are treated as unset.
func (s *Service) Browse(ctx context.Context, in BrowseInput) (BrowseResult, error) {
	all, tags, err := s.load(ctx)
	if err != nil {
		return BrowseResult{}, err
	}

	f := NewFilterState(in.Tags)
	var r DateRange
	if d, ok := domain.ParseDateParam(in.From); ok {
		r.Start = &d
	}
	if d, ok := domain.ParseDateParam(in.To); ok {
		r.End = &d
	}
	f.SetDateRange(r)

	return BrowseResult{
		Events:       Apply(all, f),
		Tags:         tags,
		SelectedTags: f.SelectedTags(),
	}, nil
}

// load reads the catalog and derives the tag universe once; the list never changes.
func (s *Service) load(ctx context.Context) ([]domain.Event, []string, error) {
	s.once.Do(func() {
		s.events, s.err = s.catalog.ListEvents(ctx)
		if s.err == nil {
			s.tags = TagUniverse(s.events)
		}
	})
	return s.events, s.tags, s.err
}
