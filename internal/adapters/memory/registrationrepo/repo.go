package registrationrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jubilee25/celebration-api/internal/domain"
	"github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

// Repo is an in-memory implementation of registrationrepo.Repository.
// It applies the same filter and keyset rules as the admin_registrations_page
// function so it can stand in for the database in tests and local runs.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	rows   []domain.Registration // ascending by ID
	nextID domain.RegistrationID
}

func NewRepo() *Repo {
	return &Repo{nextID: 1}
}

func (r *Repo) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	_ = ctx
	if strings.TrimSpace(reg.FirstName) == "" || strings.TrimSpace(reg.LastName) == "" || strings.TrimSpace(reg.Email) == "" {
		return domain.Registration{}, registrationrepo.ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reg.ID = r.nextID
	r.nextID++
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, cloneRegistration(reg))
	return cloneRegistration(reg), nil
}

func (r *Repo) ListAfter(ctx context.Context, after domain.RegistrationID, limit int) ([]domain.Registration, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := sort.Search(len(r.rows), func(i int) bool { return r.rows[i].ID > after })
	out := make([]domain.Registration, 0, min(limit, len(r.rows)-start))
	for i := start; i < len(r.rows) && len(out) < limit; i++ {
		out = append(out, cloneRegistration(r.rows[i]))
	}
	return out, nil
}

func (r *Repo) QueryPage(ctx context.Context, req registrationrepo.PageRequest) (registrationrepo.Page, error) {
	_ = ctx
	f := req.Filter
	if f.AgeMin != nil && f.AgeMax != nil && *f.AgeMin > *f.AgeMax {
		return registrationrepo.Page{}, &registrationrepo.QueryError{Message: "age_min must be <= age_max"}
	}
	if req.PageSize <= 0 {
		return registrationrepo.Page{}, &registrationrepo.QueryError{Message: "page_size must be positive"}
	}

	r.mu.RLock()
	// Newest first.
	matched := make([]domain.Registration, 0, len(r.rows))
	for i := len(r.rows) - 1; i >= 0; i-- {
		if matches(r.rows[i], f) {
			matched = append(matched, r.rows[i])
		}
	}
	r.mu.RUnlock()

	lo, hi := 0, len(matched) // window is matched[lo:hi]
	switch {
	case req.Cursor != nil && req.Direction == registrationrepo.DirectionPrev:
		// Rows with id > cursor form a prefix; keep the page closest to the cursor.
		hi = sort.Search(len(matched), func(i int) bool { return matched[i].ID <= *req.Cursor })
		lo = max(0, hi-req.PageSize)
	case req.Cursor != nil:
		lo = sort.Search(len(matched), func(i int) bool { return matched[i].ID < *req.Cursor })
		hi = min(len(matched), lo+req.PageSize)
	default:
		hi = min(len(matched), req.PageSize)
	}

	page := registrationrepo.Page{
		Rows:     make([]domain.Registration, 0, hi-lo),
		PageSize: req.PageSize,
	}
	for _, row := range matched[lo:hi] {
		page.Rows = append(page.Rows, cloneRegistration(row))
	}
	if len(page.Rows) == 0 {
		return page, nil
	}
	if hi < len(matched) {
		page.HasMore = true
		id := page.Rows[len(page.Rows)-1].ID
		page.NextCursor = &id
	}
	if lo > 0 {
		page.HasPrev = true
		id := page.Rows[0].ID
		page.PrevCursor = &id
	}
	return page, nil
}

func (r *Repo) Stats(ctx context.Context) (domain.RegistrationStats, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := domain.RegistrationStats{
		Total:     len(r.rows),
		ByCountry: map[string]int{},
		ByGhaam:   map[string]int{},
		ByMandal:  map[string]int{},
	}
	for _, row := range r.rows {
		if row.Country != "" {
			st.ByCountry[row.Country]++
		}
		if row.Ghaam != nil && *row.Ghaam != "" {
			st.ByGhaam[*row.Ghaam]++
		}
		if row.Mandal != nil && *row.Mandal != "" {
			st.ByMandal[*row.Mandal]++
		}
	}
	return st, nil
}

func matches(row domain.Registration, f registrationrepo.Filter) bool {
	if f.Ghaam != nil && (row.Ghaam == nil || *row.Ghaam != *f.Ghaam) {
		return false
	}
	if f.Mandal != nil && (row.Mandal == nil || *row.Mandal != *f.Mandal) {
		return false
	}
	if f.Country != nil && row.Country != *f.Country {
		return false
	}

	if f.Age != nil || f.AgeMin != nil || f.AgeMax != nil {
		if row.Age == nil {
			return false
		}
		age := *row.Age
		if f.Age != nil && age != *f.Age {
			return false
		}
		if f.AgeMin != nil && age < *f.AgeMin {
			return false
		}
		if f.AgeMax != nil && age > *f.AgeMax {
			return false
		}
	}

	if !withinDates(row.ArrivalDate, f.ArrivalFrom, f.ArrivalTo) {
		return false
	}
	if !withinDates(row.DepartureDate, f.DepartureFrom, f.DepartureTo) {
		return false
	}

	if f.Search != nil {
		return matchesSearch(row, *f.Search)
	}
	return true
}

func withinDates(d *domain.CalendarDate, from, to *string) bool {
	if from == nil && to == nil {
		return true
	}
	if d == nil {
		return false
	}
	if from != nil {
		if lo, ok := domain.ParseDateParam(*from); ok && d.Before(lo) {
			return false
		}
	}
	if to != nil {
		if hi, ok := domain.ParseDateParam(*to); ok && d.After(hi) {
			return false
		}
	}
	return true
}

// matchesSearch requires every token of two or more characters to appear in
// one of the name, email or mobile fields (case-insensitive).
func matchesSearch(row domain.Registration, search string) bool {
	hay := []string{
		strings.ToLower(row.FirstName),
		strings.ToLower(deref(row.MiddleName)),
		strings.ToLower(row.LastName),
		strings.ToLower(row.Email),
		strings.ToLower(deref(row.MobileNumber)),
	}
	for _, tok := range strings.Fields(strings.ToLower(search)) {
		if len([]rune(tok)) < 2 {
			continue
		}
		found := false
		for _, h := range hay {
			if strings.Contains(h, tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func cloneRegistration(r domain.Registration) domain.Registration {
	out := r
	out.MiddleName = cloneStringPtr(r.MiddleName)
	out.MobileNumber = cloneStringPtr(r.MobileNumber)
	out.PhoneCountryCode = cloneStringPtr(r.PhoneCountryCode)
	out.Ghaam = cloneStringPtr(r.Ghaam)
	out.Mandal = cloneStringPtr(r.Mandal)
	if r.ArrivalDate != nil {
		d := *r.ArrivalDate
		out.ArrivalDate = &d
	}
	if r.DepartureDate != nil {
		d := *r.DepartureDate
		out.DepartureDate = &d
	}
	if r.Age != nil {
		a := *r.Age
		out.Age = &a
	}
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
