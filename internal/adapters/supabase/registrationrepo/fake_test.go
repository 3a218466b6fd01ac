package registrationrepo

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	memregistrationrepo "github.com/jubilee25/celebration-api/internal/adapters/memory/registrationrepo"
	postgres "github.com/jubilee25/celebration-api/internal/adapters/postgres"
	"github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

const testServiceKey = "service-role-test-key"

// newFakePostgREST serves the subset of PostgREST the adapter uses, backed by the
// in-memory repository.
func newFakePostgREST(t *testing.T) *httptest.Server {
	t.Helper()
	mem := memregistrationrepo.NewRepo()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/rpc/admin_registrations_page", func(w http.ResponseWriter, r *http.Request) {
		var args postgres.PageArgs
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"code": "PGRST102", "message": err.Error()})
			return
		}
		page, err := mem.QueryPage(r.Context(), args.ToPageRequest())
		var qe *registrationrepo.QueryError
		if errors.As(err, &qe) {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": qe.Message})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		b, err := postgres.EncodePage(page)
		if err != nil {
			t.Errorf("EncodePage: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
	})
	mux.HandleFunc("/rest/v1/rpc/admin_registrations_stats", func(w http.ResponseWriter, r *http.Request) {
		st, _ := mem.Stats(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"total":     st.Total,
			"byCountry": st.ByCountry,
			"byGhaam":   st.ByGhaam,
			"byMandal":  st.ByMandal,
		})
	})
	mux.HandleFunc("/rest/v1/registrations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			q := r.URL.Query()
			after, err := strconv.ParseInt(strings.TrimPrefix(q.Get("id"), "gt."), 10, 64)
			if err != nil || q.Get("order") != "id.asc" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad query"})
				return
			}
			limit, _ := strconv.Atoi(q.Get("limit"))
			regs, _ := mem.ListAfter(r.Context(), domainID(after), limit)
			rows := make([]postgres.RegistrationRow, 0, len(regs))
			for _, reg := range regs {
				rows = append(rows, postgres.RowFromRegistration(reg))
			}
			writeJSON(w, http.StatusOK, rows)
		case http.MethodPost:
			if r.Header.Get("Prefer") != "return=representation" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "missing Prefer"})
				return
			}
			var in postgres.NewRegistrationRow
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
				return
			}
			row := postgres.RegistrationRow{
				FirstName:        in.FirstName,
				MiddleName:       in.MiddleName,
				LastName:         in.LastName,
				Email:            in.Email,
				MobileNumber:     in.MobileNumber,
				PhoneCountryCode: in.PhoneCountryCode,
				Country:          in.Country,
				Ghaam:            in.Ghaam,
				Mandal:           in.Mandal,
				ArrivalDate:      in.ArrivalDate,
				DepartureDate:    in.DepartureDate,
				Age:              in.Age,
			}
			if in.CreatedAt != nil {
				row.CreatedAt = *in.CreatedAt
			} else {
				row.CreatedAt = time.Now().UTC()
			}
			reg, err := row.ToDomain()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"code": "22007", "message": err.Error()})
				return
			}
			created, err := mem.Create(r.Context(), reg)
			if errors.Is(err, registrationrepo.ErrInvalidRegistration) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"code": "23514", "message": "new row violates check constraint"})
				return
			}
			writeJSON(w, http.StatusCreated, []postgres.RegistrationRow{postgres.RowFromRegistration(created)})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != testServiceKey || r.Header.Get("Authorization") != "Bearer "+testServiceKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid API key"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}
