package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jubilee25/celebration-api/internal/domain"
	"github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

// RegistrationRow is the JSON shape of a registrations row as produced by to_jsonb and
// by PostgREST.
type RegistrationRow struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"first_name"`
	MiddleName       *string   `json:"middle_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	MobileNumber     *string   `json:"mobile_number"`
	PhoneCountryCode *string   `json:"phone_country_code"`
	Country          string    `json:"country"`
	Ghaam            *string   `json:"ghaam"`
	Mandal           *string   `json:"mandal"`
	ArrivalDate      *string   `json:"arrival_date"`
	DepartureDate    *string   `json:"departure_date"`
	Age              *int      `json:"age"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewRegistrationRow is the insert payload; id and created_at defaults are left to the
// database unless set.
type NewRegistrationRow struct {
	FirstName        string     `json:"first_name"`
	MiddleName       *string    `json:"middle_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	MobileNumber     *string    `json:"mobile_number"`
	PhoneCountryCode *string    `json:"phone_country_code"`
	Country          string     `json:"country"`
	Ghaam            *string    `json:"ghaam"`
	Mandal           *string    `json:"mandal"`
	ArrivalDate      *string    `json:"arrival_date"`
	DepartureDate    *string    `json:"departure_date"`
	Age              *int       `json:"age"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

func (r RegistrationRow) ToDomain() (domain.Registration, error) {
	out := domain.Registration{
		ID:               domain.RegistrationID(r.ID),
		FirstName:        r.FirstName,
		MiddleName:       r.MiddleName,
		LastName:         r.LastName,
		Email:            r.Email,
		MobileNumber:     r.MobileNumber,
		PhoneCountryCode: r.PhoneCountryCode,
		Country:          r.Country,
		Ghaam:            r.Ghaam,
		Mandal:           r.Mandal,
		Age:              r.Age,
		CreatedAt:        r.CreatedAt.UTC(),
	}
	var err error
	if out.ArrivalDate, err = parseOptionalDate(r.ArrivalDate); err != nil {
		return domain.Registration{}, fmt.Errorf("registration %d arrival_date: %w", r.ID, err)
	}
	if out.DepartureDate, err = parseOptionalDate(r.DepartureDate); err != nil {
		return domain.Registration{}, fmt.Errorf("registration %d departure_date: %w", r.ID, err)
	}
	return out, nil
}

// RowFromDomain builds the insert payload for reg.
func RowFromDomain(reg domain.Registration) NewRegistrationRow {
	row := NewRegistrationRow{
		FirstName:        reg.FirstName,
		MiddleName:       reg.MiddleName,
		LastName:         reg.LastName,
		Email:            reg.Email,
		MobileNumber:     reg.MobileNumber,
		PhoneCountryCode: reg.PhoneCountryCode,
		Country:          reg.Country,
		Ghaam:            reg.Ghaam,
		Mandal:           reg.Mandal,
		Age:              reg.Age,
	}
	if reg.ArrivalDate != nil {
		s := reg.ArrivalDate.String()
		row.ArrivalDate = &s
	}
	if reg.DepartureDate != nil {
		s := reg.DepartureDate.String()
		row.DepartureDate = &s
	}
	if !reg.CreatedAt.IsZero() {
		t := reg.CreatedAt.UTC()
		row.CreatedAt = &t
	}
	return row
}

func parseOptionalDate(s *string) (*domain.CalendarDate, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := domain.ParseCalendarDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DecodeRows converts a JSON array of rows.
func DecodeRows(raw []RegistrationRow) ([]domain.Registration, error) {
	out := make([]domain.Registration, 0, len(raw))
	for _, r := range raw {
		reg, err := r.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, nil
}

// pageEnvelope is what admin_registrations_page returns.
type pageEnvelope struct {
	Success    bool              `json:"success"`
	Error      string            `json:"error"`
	Rows       []RegistrationRow `json:"rows"`
	PageSize   int               `json:"pageSize"`
	NextCursor *int64            `json:"nextCursor"`
	PrevCursor *int64            `json:"prevCursor"`
	HasMore    bool              `json:"hasMore"`
	HasPrev    bool              `json:"hasPrev"`
}

// DecodePage turns the page function's jsonb result into a Page. A success=false
// envelope becomes a *registrationrepo.QueryError.
func DecodePage(b []byte) (registrationrepo.Page, error) {
	var env pageEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return registrationrepo.Page{}, fmt.Errorf("decode page: %w", err)
	}
	if !env.Success {
		return registrationrepo.Page{}, &registrationrepo.QueryError{Message: env.Error}
	}
	rows, err := DecodeRows(env.Rows)
	if err != nil {
		return registrationrepo.Page{}, err
	}
	return registrationrepo.Page{
		Rows:       rows,
		PageSize:   env.PageSize,
		NextCursor: cursorPtr(env.NextCursor),
		PrevCursor: cursorPtr(env.PrevCursor),
		HasMore:    env.HasMore,
		HasPrev:    env.HasPrev,
	}, nil
}

type statsEnvelope struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error"`
	Total     int            `json:"total"`
	ByCountry map[string]int `json:"byCountry"`
	ByGhaam   map[string]int `json:"byGhaam"`
	ByMandal  map[string]int `json:"byMandal"`
}

// DecodeStats turns the stats function's jsonb result into RegistrationStats.
func DecodeStats(b []byte) (domain.RegistrationStats, error) {
	var env statsEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return domain.RegistrationStats{}, fmt.Errorf("decode stats: %w", err)
	}
	if !env.Success {
		return domain.RegistrationStats{}, &registrationrepo.QueryError{Message: env.Error}
	}
	return domain.RegistrationStats{
		Total:     env.Total,
		ByCountry: env.ByCountry,
		ByGhaam:   env.ByGhaam,
		ByMandal:  env.ByMandal,
	}, nil
}

// PageArgs are the named arguments of admin_registrations_page, in declaration order.
// PostgREST matches them by JSON key; the pgx adapter passes them positionally.
type PageArgs struct {
	Ghaam         *string `json:"p_ghaam"`
	Mandal        *string `json:"p_mandal"`
	Country       *string `json:"p_country"`
	Age           *int    `json:"p_age"`
	AgeMin        *int    `json:"p_age_min"`
	AgeMax        *int    `json:"p_age_max"`
	ArrivalFrom   *string `json:"p_arrival_from"`
	ArrivalTo     *string `json:"p_arrival_to"`
	DepartureFrom *string `json:"p_departure_from"`
	DepartureTo   *string `json:"p_departure_to"`
	Search        *string `json:"p_search"`
	Cursor        *int64  `json:"p_cursor"`
	Direction     string  `json:"p_direction"`
	PageSize      int     `json:"p_page_size"`
}

func NewPageArgs(req registrationrepo.PageRequest) PageArgs {
	f := req.Filter
	args := PageArgs{
		Ghaam:         f.Ghaam,
		Mandal:        f.Mandal,
		Country:       f.Country,
		Age:           f.Age,
		AgeMin:        f.AgeMin,
		AgeMax:        f.AgeMax,
		ArrivalFrom:   f.ArrivalFrom,
		ArrivalTo:     f.ArrivalTo,
		DepartureFrom: f.DepartureFrom,
		DepartureTo:   f.DepartureTo,
		Search:        f.Search,
		Direction:     string(req.Direction),
		PageSize:      req.PageSize,
	}
	if args.Direction == "" {
		args.Direction = string(registrationrepo.DirectionNext)
	}
	if req.Cursor != nil {
		c := int64(*req.Cursor)
		args.Cursor = &c
	}
	return args
}

func cursorPtr(v *int64) *domain.RegistrationID {
	if v == nil {
		return nil
	}
	id := domain.RegistrationID(*v)
	return &id
}

// RowFromRegistration renders a stored registration in column form.
func RowFromRegistration(reg domain.Registration) RegistrationRow {
	n := RowFromDomain(reg)
	return RegistrationRow{
		ID:               int64(reg.ID),
		FirstName:        n.FirstName,
		MiddleName:       n.MiddleName,
		LastName:         n.LastName,
		Email:            n.Email,
		MobileNumber:     n.MobileNumber,
		PhoneCountryCode: n.PhoneCountryCode,
		Country:          n.Country,
		Ghaam:            n.Ghaam,
		Mandal:           n.Mandal,
		ArrivalDate:      n.ArrivalDate,
		DepartureDate:    n.DepartureDate,
		Age:              n.Age,
		CreatedAt:        reg.CreatedAt.UTC(),
	}
}

// EncodePage renders p as the page function would.
func EncodePage(p registrationrepo.Page) ([]byte, error) {
	env := pageEnvelope{
		Success:  true,
		Rows:     make([]RegistrationRow, 0, len(p.Rows)),
		PageSize: p.PageSize,
		HasMore:  p.HasMore,
		HasPrev:  p.HasPrev,
	}
	for _, r := range p.Rows {
		env.Rows = append(env.Rows, RowFromRegistration(r))
	}
	if p.NextCursor != nil {
		v := int64(*p.NextCursor)
		env.NextCursor = &v
	}
	if p.PrevCursor != nil {
		v := int64(*p.PrevCursor)
		env.PrevCursor = &v
	}
	return json.Marshal(env)
}

// ToPageRequest is the inverse of NewPageArgs.
func (a PageArgs) ToPageRequest() registrationrepo.PageRequest {
	req := registrationrepo.PageRequest{
		Filter: registrationrepo.Filter{
			Ghaam:         a.Ghaam,
			Mandal:        a.Mandal,
			Country:       a.Country,
			Age:           a.Age,
			AgeMin:        a.AgeMin,
			AgeMax:        a.AgeMax,
			ArrivalFrom:   a.ArrivalFrom,
			ArrivalTo:     a.ArrivalTo,
			DepartureFrom: a.DepartureFrom,
			DepartureTo:   a.DepartureTo,
			Search:        a.Search,
		},
		Direction: registrationrepo.Direction(a.Direction),
		PageSize:  a.PageSize,
	}
	req.Cursor = cursorPtr(a.Cursor)
	return req
}
