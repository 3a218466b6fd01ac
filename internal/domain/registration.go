package domain

import "time"

// Registration is one attendee sign-up for the celebration.
//
// Rows are created by the public registration form and are read-only everywhere else.
type Registration struct {
	ID RegistrationID

	FirstName  string
	MiddleName *string
	LastName   string

	Email            string
	MobileNumber     *string
	PhoneCountryCode *string

	Country string
	Ghaam   *string
	Mandal  *string

	ArrivalDate   *CalendarDate
	DepartureDate *CalendarDate

	Age *int

	CreatedAt time.Time
}

// RegistrationStats is the aggregate view shown on the admin dashboard.
type RegistrationStats struct {
	Total     int
	ByCountry map[string]int
	ByGhaam   map[string]int
	ByMandal  map[string]int
}
