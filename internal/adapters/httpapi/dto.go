package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/jubilee25/celebration-api/internal/app/registrations"
	"github.com/jubilee25/celebration-api/internal/domain"
)

// registrationDTO is the admin-facing row, keyed like the registrations table.
// Nullable columns are always present, as null when unset.
type registrationDTO struct {
	ID               int64                                 `json:"id"`
	FirstName        string                                `json:"first_name"`
	MiddleName       nullable.Nullable[string]             `json:"middle_name"`
	LastName         string                                `json:"last_name"`
	Email            string                                `json:"email"`
	MobileNumber     nullable.Nullable[string]             `json:"mobile_number"`
	PhoneCountryCode nullable.Nullable[string]             `json:"phone_country_code"`
	Country          string                                `json:"country"`
	Ghaam            nullable.Nullable[string]             `json:"ghaam"`
	Mandal           nullable.Nullable[string]             `json:"mandal"`
	ArrivalDate      nullable.Nullable[openapi_types.Date] `json:"arrival_date"`
	DepartureDate    nullable.Nullable[openapi_types.Date] `json:"departure_date"`
	Age              nullable.Nullable[int]                `json:"age"`
	CreatedAt        time.Time                             `json:"created_at"`
}

type listRegistrationsResponse struct {
	Success    bool                     `json:"success"`
	Rows       []registrationDTO        `json:"rows"`
	PageSize   int                      `json:"pageSize"`
	NextCursor nullable.Nullable[int64] `json:"nextCursor"`
	PrevCursor nullable.Nullable[int64] `json:"prevCursor"`
	HasMore    bool                     `json:"hasMore"`
	HasPrev    bool                     `json:"hasPrev"`
}

type createRegistrationResponse struct {
	Success      bool            `json:"success"`
	Registration registrationDTO `json:"registration"`
}

type statsResponse struct {
	Success   bool           `json:"success"`
	Total     int            `json:"total"`
	ByCountry map[string]int `json:"byCountry"`
	ByGhaam   map[string]int `json:"byGhaam"`
	ByMandal  map[string]int `json:"byMandal"`
}

type eventsResponse struct {
	Events       []domain.Event `json:"events"`
	Tags         []string       `json:"tags"`
	SelectedTags []string       `json:"selectedTags"`
}

func toRegistrationDTO(r domain.Registration) registrationDTO {
	return registrationDTO{
		ID:               int64(r.ID),
		FirstName:        r.FirstName,
		MiddleName:       nullableString(r.MiddleName),
		LastName:         r.LastName,
		Email:            r.Email,
		MobileNumber:     nullableString(r.MobileNumber),
		PhoneCountryCode: nullableString(r.PhoneCountryCode),
		Country:          r.Country,
		Ghaam:            nullableString(r.Ghaam),
		Mandal:           nullableString(r.Mandal),
		ArrivalDate:      nullableDate(r.ArrivalDate),
		DepartureDate:    nullableDate(r.DepartureDate),
		Age:              nullableInt(r.Age),
		CreatedAt:        r.CreatedAt.UTC(),
	}
}

func toListResponse(p registrations.Page) listRegistrationsResponse {
	rows := make([]registrationDTO, 0, len(p.Rows))
	for _, r := range p.Rows {
		rows = append(rows, toRegistrationDTO(r))
	}
	return listRegistrationsResponse{
		Success:    true,
		Rows:       rows,
		PageSize:   p.PageSize,
		NextCursor: nullableID(p.NextCursor),
		PrevCursor: nullableID(p.PrevCursor),
		HasMore:    p.HasMore,
		HasPrev:    p.HasPrev,
	}
}

func nullableString(p *string) nullable.Nullable[string] {
	if p == nil {
		return nullable.NewNullNullable[string]()
	}
	return nullable.NewNullableWithValue(*p)
}

func nullableInt(p *int) nullable.Nullable[int] {
	if p == nil {
		return nullable.NewNullNullable[int]()
	}
	return nullable.NewNullableWithValue(*p)
}

func nullableDate(d *domain.CalendarDate) nullable.Nullable[openapi_types.Date] {
	if d == nil {
		return nullable.NewNullNullable[openapi_types.Date]()
	}
	return nullable.NewNullableWithValue(openapi_types.Date{Time: d.Time()})
}

func nullableID(id *domain.RegistrationID) nullable.Nullable[int64] {
	if id == nil {
		return nullable.NewNullNullable[int64]()
	}
	return nullable.NewNullableWithValue(int64(*id))
}
