package contracttest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jubilee25/celebration-api/internal/domain"
	registrationrepoport "github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

type CleanupFunc = func()

type RegistrationRepoFactory func(t *testing.T) (registrationrepoport.Repository, CleanupFunc)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func datePtr(s string) *domain.CalendarDate {
	d, err := domain.ParseCalendarDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

// SeedRegistration builds a valid registration for contract seeding.
func SeedRegistration(i int) domain.Registration {
	country := "India"
	if i%3 == 0 {
		country = "USA"
	}
	return domain.Registration{
		FirstName:        fmt.Sprintf("First%03d", i),
		LastName:         fmt.Sprintf("Last%03d", i),
		Email:            fmt.Sprintf("person%03d@example.com", i),
		MobileNumber:     strPtr(fmt.Sprintf("98765%05d", i)),
		PhoneCountryCode: strPtr("+91"),
		Country:          country,
		Ghaam:            strPtr("Gadhada"),
		Mandal:           strPtr("Yuvak"),
		ArrivalDate:      datePtr("2025-12-20"),
		DepartureDate:    datePtr("2025-12-27"),
		Age:              intPtr(20 + i%50),
		CreatedAt:        time.Unix(int64(1_700_000_000+i), 0).UTC(),
	}
}

// RunRegistrationRepo exercises the filtered-page, chunk, create, and stats contract.
func RunRegistrationRepo(t *testing.T, newRepo RegistrationRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	const total = 60
	ids := make([]domain.RegistrationID, 0, total)
	for i := 1; i <= total; i++ {
		r := SeedRegistration(i)
		if i == 7 {
			r.FirstName = "Kishan"
			r.MiddleName = strPtr("Ramesh")
			r.Ghaam = strPtr("Sarangpur")
			r.Mandal = strPtr("Balika")
			r.Age = intPtr(12)
			r.ArrivalDate = datePtr("2025-12-18")
		}
		created, err := repo.Create(ctx, r)
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if len(ids) > 0 && created.ID <= ids[len(ids)-1] {
			t.Fatalf("ids not increasing: %d after %d", created.ID, ids[len(ids)-1])
		}
		ids = append(ids, created.ID)
	}

	// Chunks: ascending, strictly after the bound, no gaps or duplicates.
	var (
		after domain.RegistrationID
		seen  int
	)
	for {
		chunk, err := repo.ListAfter(ctx, after, 25)
		if err != nil {
			t.Fatalf("ListAfter(%d): %v", after, err)
		}
		for _, row := range chunk {
			if row.ID <= after {
				t.Fatalf("ListAfter returned id %d <= bound %d", row.ID, after)
			}
			if row.ID != ids[seen] {
				t.Fatalf("ListAfter row %d id=%d want %d", seen, row.ID, ids[seen])
			}
			after = row.ID
			seen++
		}
		if len(chunk) < 25 {
			break
		}
	}
	if seen != total {
		t.Fatalf("ListAfter saw %d rows, want %d", seen, total)
	}

	// First page: newest first.
	first, err := repo.QueryPage(ctx, registrationrepoport.PageRequest{
		Direction: registrationrepoport.DirectionNext,
		PageSize:  25,
	})
	if err != nil {
		t.Fatalf("QueryPage first: %v", err)
	}
	if len(first.Rows) != 25 || first.Rows[0].ID != ids[total-1] {
		t.Fatalf("unexpected first page: len=%d", len(first.Rows))
	}
	if !first.HasMore || first.HasPrev || first.NextCursor == nil || first.PrevCursor != nil {
		t.Fatalf("unexpected first page flags: %+v", first)
	}
	if *first.NextCursor != first.Rows[24].ID {
		t.Fatalf("nextCursor=%d want %d", *first.NextCursor, first.Rows[24].ID)
	}

	second, err := repo.QueryPage(ctx, registrationrepoport.PageRequest{
		Cursor:    first.NextCursor,
		Direction: registrationrepoport.DirectionNext,
		PageSize:  25,
	})
	if err != nil {
		t.Fatalf("QueryPage second: %v", err)
	}
	if len(second.Rows) != 25 || second.Rows[0].ID >= *first.NextCursor {
		t.Fatalf("unexpected second page")
	}
	if !second.HasMore || !second.HasPrev || second.PrevCursor == nil {
		t.Fatalf("unexpected second page flags: %+v", second)
	}

	back, err := repo.QueryPage(ctx, registrationrepoport.PageRequest{
		Cursor:    second.PrevCursor,
		Direction: registrationrepoport.DirectionPrev,
		PageSize:  25,
	})
	if err != nil {
		t.Fatalf("QueryPage prev: %v", err)
	}
	if len(back.Rows) != 25 || back.Rows[0].ID != first.Rows[0].ID || back.Rows[24].ID != first.Rows[24].ID {
		t.Fatalf("prev page does not match first page")
	}
	if back.HasPrev || !back.HasMore {
		t.Fatalf("unexpected prev page flags: %+v", back)
	}

	third, err := repo.QueryPage(ctx, registrationrepoport.PageRequest{
		Cursor:    second.NextCursor,
		Direction: registrationrepoport.DirectionNext,
		PageSize:  25,
	})
	if err != nil {
		t.Fatalf("QueryPage third: %v", err)
	}
	if len(third.Rows) != 10 || third.HasMore || third.NextCursor != nil || !third.HasPrev {
		t.Fatalf("unexpected last page: len=%d %+v", len(third.Rows), third)
	}

	// Filters.
	filtered, err := repo.QueryPage(ctx, registrationrepoport.PageRequest{
		Filter: registrationrepoport.Filter{
			Ghaam:       strPtr("Sarangpur"),
			AgeMax:      intPtr(15),
			ArrivalFrom: strPtr("2025-12-18"),
			ArrivalTo:   strPtr("2025-12-18"),
		},
		Direction: registrationrepoport.DirectionNext,
		PageSize:  25,
	})
	if err != nil {
		t.Fatalf("QueryPage filtered: %v", err)
	}
	if len(filtered.Rows) != 1 || filtered.Rows[0].FirstName != "Kishan" {
		t.Fatalf("unexpected filtered rows: %d", len(filtered.Rows))
	}

	searched, err := repo.QueryPage(ctx, registrationrepoport.PageRequest{
		Filter:    registrationrepoport.Filter{Search: strPtr("kish RAM")},
		Direction: registrationrepoport.DirectionNext,
		PageSize:  25,
	})
	if err != nil {
		t.Fatalf("QueryPage search: %v", err)
	}
	if len(searched.Rows) != 1 || searched.Rows[0].ID != ids[6] {
		t.Fatalf("unexpected search rows: %d", len(searched.Rows))
	}

	usa, err := repo.QueryPage(ctx, registrationrepoport.PageRequest{
		Filter:    registrationrepoport.Filter{Country: strPtr("USA")},
		Direction: registrationrepoport.DirectionNext,
		PageSize:  100,
	})
	if err != nil {
		t.Fatalf("QueryPage country: %v", err)
	}
	if len(usa.Rows) != total/3 {
		t.Fatalf("country=USA rows=%d want %d", len(usa.Rows), total/3)
	}

	// Business-rule rejection is reported as a QueryError.
	_, err = repo.QueryPage(ctx, registrationrepoport.PageRequest{
		Filter:    registrationrepoport.Filter{AgeMin: intPtr(40), AgeMax: intPtr(30)},
		Direction: registrationrepoport.DirectionNext,
		PageSize:  25,
	})
	var qe *registrationrepoport.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QueryError, got %v", err)
	}

	st, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != total || st.ByCountry["USA"] != total/3 || st.ByGhaam["Sarangpur"] != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}
