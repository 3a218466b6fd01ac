package registrations

import (
	"strconv"
	"strings"

	"github.com/jubilee25/celebration-api/internal/domain"
	"github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

// DefaultPageSize is used whenever page_size is absent or not one of AllowedPageSizes.
const DefaultPageSize = 25

// AllowedPageSizes is the fixed set of page sizes the admin list accepts.
var AllowedPageSizes = []int{25, 50, 100}

// MinSearchLength is the shortest trimmed search string that is honored.
const MinSearchLength = 2

// QueryParams are the raw admin list query-string values, as received.
// Absent parameters are empty strings.
type QueryParams struct {
	PageSize  string
	Cursor    string
	Direction string

	Ghaam   string
	Mandal  string
	Country string

	Age    string
	AgeMin string
	AgeMax string

	ArrivalFrom   string
	ArrivalTo     string
	DepartureFrom string
	DepartureTo   string

	Search string
}

// ResolveQuery turns raw parameters into a page request.
//
// Malformed values fall back to "absent" or the default page size; the only hard
// rejection is age_min > age_max.
func ResolveQuery(p QueryParams) (registrationrepo.PageRequest, error) {
	f := registrationrepo.Filter{
		Ghaam:         domain.TrimmedOrNil(p.Ghaam),
		Mandal:        domain.TrimmedOrNil(p.Mandal),
		Country:       domain.TrimmedOrNil(p.Country),
		Age:           parseOptionalInt(p.Age),
		AgeMin:        parseOptionalInt(p.AgeMin),
		AgeMax:        parseOptionalInt(p.AgeMax),
		ArrivalFrom:   parseOptionalDate(p.ArrivalFrom),
		ArrivalTo:     parseOptionalDate(p.ArrivalTo),
		DepartureFrom: parseOptionalDate(p.DepartureFrom),
		DepartureTo:   parseOptionalDate(p.DepartureTo),
		Search:        parseSearch(p.Search),
	}
	if f.AgeMin != nil && f.AgeMax != nil && *f.AgeMin > *f.AgeMax {
		return registrationrepo.PageRequest{}, badRequest("age_min must be <= age_max")
	}

	req := registrationrepo.PageRequest{
		Filter:    f,
		Direction: registrationrepo.DirectionNext,
		PageSize:  ResolvePageSize(p.PageSize),
	}
	if p.Direction == string(registrationrepo.DirectionPrev) {
		req.Direction = registrationrepo.DirectionPrev
	}
	if c := strings.TrimSpace(p.Cursor); c != "" {
		if v, err := strconv.ParseInt(c, 10, 64); err == nil {
			id := domain.RegistrationID(v)
			req.Cursor = &id
		}
	}
	return req, nil
}

// ResolvePageSize returns the requested size when it is allowed, else DefaultPageSize.
func ResolvePageSize(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPageSize
	}
	for _, allowed := range AllowedPageSizes {
		if n == allowed {
			return n
		}
	}
	return DefaultPageSize
}

func parseOptionalInt(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// parseOptionalDate keeps the trimmed raw string when it is a valid date.
func parseOptionalDate(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if _, ok := domain.ParseDateParam(s); !ok {
		return nil
	}
	return &s
}

func parseSearch(raw string) *string {
	s := strings.TrimSpace(raw)
	if len([]rune(s)) < MinSearchLength {
		return nil
	}
	return &s
}
