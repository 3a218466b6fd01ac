package registrationrepo

import (
	"context"

	"github.com/jubilee25/celebration-api/internal/domain"
)

// Direction selects which side of the cursor a page is read from.
//
// Pages are ordered by id descending (newest first):
//   - DirectionNext reads rows with id < cursor
//   - DirectionPrev reads rows with id > cursor
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// Filter holds the fully-resolved filter set. nil means "no constraint".
// Date bounds are forwarded as the caller supplied them (already validated as dates).
type Filter struct {
	Ghaam   *string
	Mandal  *string
	Country *string

	Age    *int
	AgeMin *int
	AgeMax *int

	ArrivalFrom   *string
	ArrivalTo     *string
	DepartureFrom *string
	DepartureTo   *string

	Search *string
}

// PageRequest is the input of the filtered-page contract.
type PageRequest struct {
	Filter    Filter
	Cursor    *domain.RegistrationID
	Direction Direction
	PageSize  int
}

// Page is the output of the filtered-page contract. Stores may leave fields zero;
// callers default them.
type Page struct {
	Rows       []domain.Registration
	PageSize   int
	NextCursor *domain.RegistrationID
	PrevCursor *domain.RegistrationID
	HasMore    bool
	HasPrev    bool
}

// Repository is the data-layer contract for registrations.
type Repository interface {
	// QueryPage runs the filtered keyset query. It is called once per admin list request.
	QueryPage(ctx context.Context, req PageRequest) (Page, error)

	// ListAfter returns up to limit rows with id > after, ascending by id.
	// Used for export chunking; after=0 starts at the beginning.
	ListAfter(ctx context.Context, after domain.RegistrationID, limit int) ([]domain.Registration, error)

	// Create inserts a registration and returns it with its assigned id.
	Create(ctx context.Context, r domain.Registration) (domain.Registration, error)

	Stats(ctx context.Context) (domain.RegistrationStats, error)
}
