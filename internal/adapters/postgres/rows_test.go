package postgres

import (
	"errors"
	"testing"

	"github.com/jubilee25/celebration-api/internal/domain"
	"github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

func TestDecodePage(t *testing.T) {
	t.Parallel()

	body := `{
		"success": true,
		"rows": [
			{"id": 9, "first_name": "Asha", "middle_name": null, "last_name": "Patel",
			 "email": "asha@example.com", "mobile_number": "9876500000", "phone_country_code": "+91",
			 "country": "India", "ghaam": "Gadhada", "mandal": null,
			 "arrival_date": "2025-12-20", "departure_date": null, "age": 31,
			 "created_at": "2025-01-02T03:04:05.123456+00:00"}
		],
		"pageSize": 25, "nextCursor": 9, "prevCursor": null, "hasMore": true, "hasPrev": false
	}`
	page, err := DecodePage([]byte(body))
	if err != nil {
		t.Fatalf("DecodePage: %v", err)
	}
	if len(page.Rows) != 1 || page.PageSize != 25 || !page.HasMore || page.HasPrev {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.NextCursor == nil || *page.NextCursor != 9 || page.PrevCursor != nil {
		t.Fatalf("unexpected cursors: %+v", page)
	}
	r := page.Rows[0]
	if r.ArrivalDate == nil || r.ArrivalDate.String() != "2025-12-20" || r.DepartureDate != nil {
		t.Fatalf("unexpected dates: %+v", r)
	}
	if r.Mandal != nil || r.Age == nil || *r.Age != 31 || r.CreatedAt.Year() != 2025 {
		t.Fatalf("unexpected row: %+v", r)
	}
}

func TestDecodePage_DomainFailure(t *testing.T) {
	t.Parallel()

	_, err := DecodePage([]byte(`{"success": false, "error": "age_min must be <= age_max"}`))
	var qe *registrationrepo.QueryError
	if !errors.As(err, &qe) || qe.Message != "age_min must be <= age_max" {
		t.Fatalf("expected QueryError, got %v", err)
	}
}

func TestDecodePage_BadRowDate(t *testing.T) {
	t.Parallel()

	_, err := DecodePage([]byte(`{"success": true, "rows": [{"id": 1, "arrival_date": "2025-13-01", "created_at": "2025-01-02T03:04:05Z"}]}`))
	if err == nil || registrationrepo.IsQueryError(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestDecodeStats(t *testing.T) {
	t.Parallel()

	st, err := DecodeStats([]byte(`{"success": true, "total": 3, "byCountry": {"India": 2, "USA": 1}, "byGhaam": {}, "byMandal": {"Yuvak": 3}}`))
	if err != nil {
		t.Fatalf("DecodeStats: %v", err)
	}
	if st.Total != 3 || st.ByCountry["India"] != 2 || st.ByMandal["Yuvak"] != 3 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestNewPageArgs(t *testing.T) {
	t.Parallel()

	cur := domain.RegistrationID(42)
	ghaam := "Sarangpur"
	args := NewPageArgs(registrationrepo.PageRequest{
		Filter:   registrationrepo.Filter{Ghaam: &ghaam},
		Cursor:   &cur,
		PageSize: 50,
	})
	if args.Direction != "next" || args.Cursor == nil || *args.Cursor != 42 || args.PageSize != 50 {
		t.Fatalf("unexpected args: %+v", args)
	}
	if args.Ghaam == nil || *args.Ghaam != ghaam || args.Mandal != nil {
		t.Fatalf("unexpected filter args: %+v", args)
	}
}

func TestRowFromDomain(t *testing.T) {
	t.Parallel()

	d := domain.CalendarDate{Year: 2025, Month: 12, Day: 20}
	row := RowFromDomain(domain.Registration{FirstName: "A", LastName: "B", Email: "a@b.c", ArrivalDate: &d})
	if row.ArrivalDate == nil || *row.ArrivalDate != "2025-12-20" || row.DepartureDate != nil || row.CreatedAt != nil {
		t.Fatalf("unexpected row: %+v", row)
	}
}
