package registrations

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jubilee25/celebration-api/internal/domain"
	"github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

// CreateRegistrationInput is the public registration form payload.
type CreateRegistrationInput struct {
	FirstName        string `json:"first_name" validate:"required,max=100"`
	MiddleName       string `json:"middle_name" validate:"max=100"`
	LastName         string `json:"last_name" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email,max=254"`
	MobileNumber     string `json:"mobile_number" validate:"omitempty,numeric,min=6,max=15"`
	PhoneCountryCode string `json:"phone_country_code" validate:"omitempty,startswith=+,max=5"`
	Country          string `json:"country" validate:"required,max=100"`
	Ghaam            string `json:"ghaam" validate:"max=100"`
	Mandal           string `json:"mandal" validate:"max=100"`
	ArrivalDate      string `json:"arrival_date" validate:"required,calendardate"`
	DepartureDate    string `json:"departure_date" validate:"required,calendardate"`
	Age              *int   `json:"age" validate:"omitempty,gte=0,lte=120"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseCalendarDate(fl.Field().String())
		return err == nil
	})
	return v
}

// CreateRegistration validates the form and stores a new registration.
func (s *Service) CreateRegistration(ctx context.Context, in CreateRegistrationInput) (domain.Registration, error) {
	in.FirstName = domain.NormalizeHumanName(in.FirstName)
	in.MiddleName = domain.NormalizeHumanName(in.MiddleName)
	in.LastName = domain.NormalizeHumanName(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	in.PhoneCountryCode = strings.TrimSpace(in.PhoneCountryCode)
	in.Country = strings.TrimSpace(in.Country)
	in.ArrivalDate = strings.TrimSpace(in.ArrivalDate)
	in.DepartureDate = strings.TrimSpace(in.DepartureDate)

	if err := validate.StructCtx(ctx, in); err != nil {
		return domain.Registration{}, validationError(err)
	}

	arrival, _ := domain.ParseCalendarDate(in.ArrivalDate)
	departure, _ := domain.ParseCalendarDate(in.DepartureDate)
	if departure.Before(arrival) {
		return domain.Registration{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid registration",
			Details: map[string]any{"departure_date": "must not be before arrival_date"},
		}
	}

	reg := domain.Registration{
		FirstName:        in.FirstName,
		MiddleName:       domain.TrimmedOrNil(in.MiddleName),
		LastName:         in.LastName,
		Email:            strings.ToLower(in.Email),
		MobileNumber:     domain.TrimmedOrNil(in.MobileNumber),
		PhoneCountryCode: domain.TrimmedOrNil(in.PhoneCountryCode),
		Country:          in.Country,
		Ghaam:            domain.TrimmedOrNil(in.Ghaam),
		Mandal:           domain.TrimmedOrNil(in.Mandal),
		ArrivalDate:      &arrival,
		DepartureDate:    &departure,
		Age:              in.Age,
		CreatedAt:        s.clk.Now(),
	}
	created, err := s.repo.Create(ctx, reg)
	if err != nil {
		if errors.Is(err, registrationrepo.ErrInvalidRegistration) {
			return domain.Registration{}, &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "registration rejected by store",
			}
		}
		return domain.Registration{}, err
	}
	return created, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = validationMessage(fe)
	}
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid registration",
		Details: details,
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "calendardate":
		return "must be a date in YYYY-MM-DD format"
	case "numeric":
		return "must contain digits only"
	case "startswith":
		return "must start with " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "gte", "lte":
		return "must be between 0 and 120"
	default:
		return "is invalid"
	}
}
