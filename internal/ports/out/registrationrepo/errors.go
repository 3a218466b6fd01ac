package registrationrepo

import "errors"

var (
	// ErrInvalidRegistration indicates the store refused an insert (constraint violation).
	ErrInvalidRegistration = errors.New("invalid registration")
)

// QueryError is a business-rule rejection reported by the data layer itself
// (for example the filtered-page function answering success=false).
// It is distinct from transport failures, which are returned as plain errors.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	if e == nil || e.Message == "" {
		return "query rejected by data layer"
	}
	return e.Message
}

// IsQueryError reports whether err carries a *QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
