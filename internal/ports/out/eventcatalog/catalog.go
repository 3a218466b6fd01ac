package eventcatalog

import (
	"context"

	"github.com/jubilee25/celebration-api/internal/domain"
)

// Catalog serves the static gallery event list. The list never changes after load.
type Catalog interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
}
