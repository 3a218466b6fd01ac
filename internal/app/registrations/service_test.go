package registrations

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jubilee25/celebration-api/internal/adapters/contracttest"
	memclock "github.com/jubilee25/celebration-api/internal/adapters/memory/clock"
	memregistrationrepo "github.com/jubilee25/celebration-api/internal/adapters/memory/registrationrepo"
	"github.com/jubilee25/celebration-api/internal/domain"
	"github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

// stubRepo records calls and returns canned results.
type stubRepo struct {
	registrationrepo.Repository

	page    registrationrepo.Page
	pageErr error
	calls   []registrationrepo.PageRequest

	chunkErrAt int // fail the Nth ListAfter call (1-based); 0 never fails
	listCalls  int
	inner      registrationrepo.Repository
}

func (s *stubRepo) QueryPage(_ context.Context, req registrationrepo.PageRequest) (registrationrepo.Page, error) {
	s.calls = append(s.calls, req)
	return s.page, s.pageErr
}

func (s *stubRepo) ListAfter(ctx context.Context, after domain.RegistrationID, limit int) ([]domain.Registration, error) {
	s.listCalls++
	if s.chunkErrAt > 0 && s.listCalls == s.chunkErrAt {
		return nil, errors.New("connection reset")
	}
	return s.inner.ListAfter(ctx, after, limit)
}

func newClock() *memclock.ManualClock {
	return memclock.NewManualClock(time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC))
}

func seededRepo(t *testing.T, n int) *memregistrationrepo.Repo {
	t.Helper()
	repo := memregistrationrepo.NewRepo()
	for i := 1; i <= n; i++ {
		if _, err := repo.Create(context.Background(), contracttest.SeedRegistration(i)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return repo
}

func TestService_ListRegistrations_DefaultsMissingFields(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := NewService(repo, newClock())

	page, err := svc.ListRegistrations(context.Background(), QueryParams{PageSize: "50"})
	if err != nil {
		t.Fatalf("ListRegistrations: %v", err)
	}
	if len(repo.calls) != 1 {
		t.Fatalf("calls=%d, want 1", len(repo.calls))
	}
	if page.Rows == nil || len(page.Rows) != 0 {
		t.Fatalf("rows should default to empty slice")
	}
	if page.PageSize != 50 || page.NextCursor != nil || page.PrevCursor != nil || page.HasMore || page.HasPrev {
		t.Fatalf("unexpected defaults: %+v", page)
	}
}

func TestService_ListRegistrations_PageSize999FallsBackTo25(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := NewService(repo, newClock())
	if _, err := svc.ListRegistrations(context.Background(), QueryParams{PageSize: "999"}); err != nil {
		t.Fatalf("ListRegistrations: %v", err)
	}
	if repo.calls[0].PageSize != 25 {
		t.Fatalf("page size=%d", repo.calls[0].PageSize)
	}
}

func TestService_ListRegistrations_InvertedAgeRangeNeverReachesStore(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := NewService(repo, newClock())
	_, err := svc.ListRegistrations(context.Background(), QueryParams{AgeMin: "40", AgeMax: "30"})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 400 {
		t.Fatalf("err=%v, want 400", err)
	}
	if len(repo.calls) != 0 {
		t.Fatalf("store called %d times", len(repo.calls))
	}
}

func TestService_ListRegistrations_DataLayerRejectionIs400(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{pageErr: &registrationrepo.QueryError{Message: "invalid ghaam"}}
	svc := NewService(repo, newClock())
	_, err := svc.ListRegistrations(context.Background(), QueryParams{})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Message != "invalid ghaam" {
		t.Fatalf("err=%v, want 400 invalid ghaam", err)
	}
}

func TestService_ListRegistrations_TransportErrorPassesThrough(t *testing.T) {
	t.Parallel()

	boom := errors.New("dial tcp: connection refused")
	repo := &stubRepo{pageErr: boom}
	svc := NewService(repo, newClock())
	_, err := svc.ListRegistrations(context.Background(), QueryParams{})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	ae := (*Error)(nil)
	if errors.As(err, &ae) {
		t.Fatalf("transport error must not be an app Error")
	}
}

func TestService_ListRegistrations_TrustsStorePagination(t *testing.T) {
	t.Parallel()

	next := domain.RegistrationID(11)
	repo := &stubRepo{page: registrationrepo.Page{
		Rows:       []domain.Registration{{ID: 12}, {ID: 11}},
		PageSize:   2,
		NextCursor: &next,
		HasMore:    true,
	}}
	svc := NewService(repo, newClock())
	page, err := svc.ListRegistrations(context.Background(), QueryParams{})
	if err != nil {
		t.Fatalf("ListRegistrations: %v", err)
	}
	if page.PageSize != 2 || !page.HasMore || page.NextCursor == nil || *page.NextCursor != 11 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestService_ExportCSV_ThreeRoundsFor1200Rows(t *testing.T) {
	t.Parallel()

	stub := &stubRepo{inner: seededRepo(t, 1200)}
	svc := NewService(stub, newClock())

	var buf bytes.Buffer
	sum, err := svc.ExportCSV(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if sum.Rounds != 3 || stub.listCalls != 3 || sum.Rows != 1200 {
		t.Fatalf("summary=%+v listCalls=%d", sum, stub.listCalls)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\uFEFFid,first_name,") {
		t.Fatalf("missing BOM/header: %q", out[:40])
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("export should end with a newline")
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 1201 {
		t.Fatalf("lines=%d, want 1201", len(lines))
	}
	if !strings.HasPrefix(lines[1], "1,First001,,Last001,person001@example.com,") {
		t.Fatalf("first row=%q", lines[1])
	}
	if !strings.HasPrefix(lines[1200], "1200,") {
		t.Fatalf("last row=%q", lines[1200])
	}
}

func TestService_ExportCSV_EmptyStore(t *testing.T) {
	t.Parallel()

	stub := &stubRepo{inner: memregistrationrepo.NewRepo()}
	svc := NewService(stub, newClock())
	var buf bytes.Buffer
	sum, err := svc.ExportCSV(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if sum.Rounds != 1 || sum.Rows != 0 {
		t.Fatalf("summary=%+v", sum)
	}
	if buf.String() != "\uFEFF"+csvHeader()+"\n" {
		t.Fatalf("output=%q", buf.String())
	}
}

func TestService_ExportCSV_FetchErrorKeepsWrittenBytes(t *testing.T) {
	t.Parallel()

	stub := &stubRepo{inner: seededRepo(t, 1200), chunkErrAt: 2}
	svc := NewService(stub, newClock())

	var buf bytes.Buffer
	sum, err := svc.ExportCSV(context.Background(), &buf)
	if err == nil {
		t.Fatalf("expected error")
	}
	if sum.Rows != 500 {
		t.Fatalf("rows before failure=%d", sum.Rows)
	}
	if n := strings.Count(buf.String(), "\n"); n != 501 {
		t.Fatalf("newlines=%d, want 501 (header + first chunk)", n)
	}
	if stub.listCalls != 2 {
		t.Fatalf("listCalls=%d", stub.listCalls)
	}
}

func TestService_ExportCSV_StopsWhenContextCancelled(t *testing.T) {
	t.Parallel()

	stub := &stubRepo{inner: seededRepo(t, 10)}
	svc := NewService(stub, newClock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ExportCSV(ctx, &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
	if stub.listCalls != 0 {
		t.Fatalf("fetched %d chunks after cancel", stub.listCalls)
	}
}

func TestService_ExportFilename_UsesClock(t *testing.T) {
	t.Parallel()

	svc := NewService(memregistrationrepo.NewRepo(), newClock())
	if got := svc.ExportFilename(); got != "registrations-2025-12-01T100000Z.csv" {
		t.Fatalf("filename=%q", got)
	}
}

func TestService_CreateRegistration(t *testing.T) {
	t.Parallel()

	repo := memregistrationrepo.NewRepo()
	svc := NewService(repo, newClock())
	age := 34
	reg, err := svc.CreateRegistration(context.Background(), CreateRegistrationInput{
		FirstName:        "  Asha ",
		LastName:         "Patel",
		Email:            " Asha@Example.com ",
		MobileNumber:     "9876543210",
		PhoneCountryCode: "+91",
		Country:          "India",
		Ghaam:            "Gadhada",
		ArrivalDate:      "2025-12-20",
		DepartureDate:    "2025-12-27",
		Age:              &age,
	})
	if err != nil {
		t.Fatalf("CreateRegistration: %v", err)
	}
	if reg.ID != 1 || reg.FirstName != "Asha" || reg.Email != "asha@example.com" || reg.Mandal != nil {
		t.Fatalf("unexpected registration: %+v", reg)
	}
	if reg.ArrivalDate == nil || reg.ArrivalDate.String() != "2025-12-20" {
		t.Fatalf("arrival=%v", reg.ArrivalDate)
	}
}

func TestService_CreateRegistration_ValidationDetails(t *testing.T) {
	t.Parallel()

	svc := NewService(memregistrationrepo.NewRepo(), newClock())
	_, err := svc.CreateRegistration(context.Background(), CreateRegistrationInput{
		FirstName:     "Asha",
		Email:         "not-an-email",
		Country:       "India",
		ArrivalDate:   "2025-12-32",
		DepartureDate: "2025-12-27",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want 422", err)
	}
	for _, field := range []string{"last_name", "email", "arrival_date"} {
		if _, ok := ae.Details[field]; !ok {
			t.Fatalf("missing detail for %s: %+v", field, ae.Details)
		}
	}
}

func TestService_CreateRegistration_DepartureBeforeArrival(t *testing.T) {
	t.Parallel()

	svc := NewService(memregistrationrepo.NewRepo(), newClock())
	_, err := svc.CreateRegistration(context.Background(), CreateRegistrationInput{
		FirstName:     "Asha",
		LastName:      "Patel",
		Email:         "asha@example.com",
		Country:       "India",
		ArrivalDate:   "2025-12-27",
		DepartureDate: "2025-12-20",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 || ae.Details["departure_date"] == nil {
		t.Fatalf("err=%v", err)
	}
}

func TestService_Stats(t *testing.T) {
	t.Parallel()

	svc := NewService(seededRepo(t, 9), newClock())
	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 9 || st.ByCountry["USA"] != 3 || st.ByCountry["India"] != 6 || st.ByMandal["Yuvak"] != 9 {
		t.Fatalf("stats=%+v", st)
	}
}
