package domain

import "strings"

// Principal is the authenticated caller as seen by the API.
type Principal struct {
	Subject SubjectID
	Email   string
}

// IsAdminDomainUser reports whether the principal's email belongs to adminDomain.
// An empty adminDomain never matches.
func (p Principal) IsAdminDomainUser(adminDomain string) bool {
	d := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(adminDomain), "@"))
	if d == "" {
		return false
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	return email[at+1:] == d
}
