package itest

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

type registrationRow struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	Email     string  `json:"email"`
	Ghaam     *string `json:"ghaam"`
	Age       *int    `json:"age"`
}

type listResponse struct {
	Success    bool              `json:"success"`
	Rows       []registrationRow `json:"rows"`
	PageSize   int               `json:"pageSize"`
	NextCursor *int64            `json:"nextCursor"`
	PrevCursor *int64            `json:"prevCursor"`
	HasMore    bool              `json:"hasMore"`
	HasPrev    bool              `json:"hasPrev"`
}

func registerN(t *testing.T, s *testServer, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		ghaam := "Gadhada"
		if i%4 == 0 {
			ghaam = "Sarangpur"
		}
		status, body, _ := s.do(t, http.MethodPost, "/api/registrations", principal{}, map[string]any{
			"first_name":         fmt.Sprintf("Bhakta%02d", i),
			"last_name":          "Patel",
			"email":              fmt.Sprintf("bhakta%02d@example.com", i),
			"mobile_number":      fmt.Sprintf("98250%05d", i),
			"phone_country_code": "+91",
			"country":            "India",
			"ghaam":              ghaam,
			"mandal":             "Yuvak",
			"arrival_date":       "2025-12-20",
			"departure_date":     "2025-12-27",
			"age":                18 + i,
		})
		if status != http.StatusCreated {
			t.Fatalf("register %d: status=%d body=%s", i, status, string(body))
		}
	}
}

func TestAdminRegistrations_PaginateForwardAndBack(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			s := newTestServer(t, b, 0)
			registerN(t, s, 60)

			var (
				pages  [][]int64
				cursor *int64
			)
			for {
				path := "/api/admin/registrations?page_size=25"
				if cursor != nil {
					path += fmt.Sprintf("&cursor=%d&direction=next", *cursor)
				}
				status, body, h := s.do(t, http.MethodGet, path, admin, nil)
				if status != http.StatusOK {
					t.Fatalf("status=%d body=%s", status, string(body))
				}
				requireHeader(t, h, "Cache-Control", "no-store, max-age=0")

				page := mustUnmarshal[listResponse](t, body)
				ids := make([]int64, len(page.Rows))
				for i, row := range page.Rows {
					ids[i] = row.ID
					if i > 0 && ids[i] >= ids[i-1] {
						t.Fatalf("page not newest first: %v", ids)
					}
				}
				pages = append(pages, ids)
				if (len(pages) > 1) != page.HasPrev {
					t.Fatalf("page %d hasPrev=%v", len(pages), page.HasPrev)
				}
				if !page.HasMore {
					if page.NextCursor != nil {
						t.Fatalf("last page carries nextCursor")
					}
					break
				}
				cursor = page.NextCursor
			}
			if len(pages) != 3 || len(pages[2]) != 10 {
				t.Fatalf("unexpected page shape: %d pages", len(pages))
			}

			// Walk back from the last page.
			status, body, _ := s.do(t, http.MethodGet, fmt.Sprintf("/api/admin/registrations?page_size=25&cursor=%d&direction=prev", pages[2][0]), admin, nil)
			if status != http.StatusOK {
				t.Fatalf("status=%d body=%s", status, string(body))
			}
			back := mustUnmarshal[listResponse](t, body)
			if len(back.Rows) != 25 || back.Rows[0].ID != pages[1][0] || back.Rows[24].ID != pages[1][24] {
				t.Fatalf("prev page does not reproduce page 2")
			}
			if !back.HasPrev || !back.HasMore {
				t.Fatalf("prev page flags: hasPrev=%v hasMore=%v", back.HasPrev, back.HasMore)
			}
		})
	}
}

func TestAdminRegistrations_FiltersAndErrors(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			s := newTestServer(t, b, 0)
			registerN(t, s, 20)

			status, body, _ := s.do(t, http.MethodGet, "/api/admin/registrations?ghaam=Sarangpur&age_min=25&search=bhakta", admin, nil)
			if status != http.StatusOK {
				t.Fatalf("status=%d body=%s", status, string(body))
			}
			page := mustUnmarshal[listResponse](t, body)
			// Sarangpur rows are i=4,8,12,16,20 with age 18+i; age>=25 keeps 8..20.
			if len(page.Rows) != 4 {
				t.Fatalf("rows=%d want 4", len(page.Rows))
			}
			for _, row := range page.Rows {
				if row.Ghaam == nil || *row.Ghaam != "Sarangpur" || row.Age == nil || *row.Age < 25 {
					t.Fatalf("row does not match filter: %+v", row)
				}
			}

			status, body, _ = s.do(t, http.MethodGet, "/api/admin/registrations?age_min=50&age_max=20", admin, nil)
			requireError(t, status, body, http.StatusBadRequest, "age_min must be <= age_max")

			status, body, _ = s.do(t, http.MethodGet, "/api/admin/registrations", principal{}, nil)
			requireError(t, status, body, http.StatusUnauthorized, "Unauthorized")

			status, body, _ = s.do(t, http.MethodGet, "/api/admin/registrations", principal{Subject: "dev|x", Email: "x@gmail.com"}, nil)
			requireError(t, status, body, http.StatusForbidden, "Forbidden")
		})
	}
}

func TestAdminRegistrations_ExportAndStats(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			s := newTestServer(t, b, 7)
			registerN(t, s, 20)

			status, body, h := s.do(t, http.MethodGet, "/api/admin/registrations/export", admin, nil)
			if status != http.StatusOK {
				t.Fatalf("status=%d body=%s", status, string(body))
			}
			requireHeader(t, h, "Content-Type", "text/csv; charset=utf-8")
			requireHeader(t, h, "Content-Disposition", `attachment; filename="registrations-2025-12-01T083000Z.csv"`)

			text := strings.TrimPrefix(string(body), "\ufeff")
			if len(text) == len(body) {
				t.Fatalf("missing BOM")
			}
			lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
			if len(lines) != 21 {
				t.Fatalf("lines=%d want 21", len(lines))
			}
			if !strings.HasPrefix(lines[0], "id,first_name,middle_name,last_name,email,") {
				t.Fatalf("header=%q", lines[0])
			}
			if !strings.Contains(lines[1], ",Bhakta01,,Patel,bhakta01@example.com,") {
				t.Fatalf("first row=%q", lines[1])
			}

			status, body, _ = s.do(t, http.MethodGet, "/api/admin/registrations/stats", admin, nil)
			if status != http.StatusOK {
				t.Fatalf("status=%d body=%s", status, string(body))
			}
			st := mustUnmarshal[struct {
				Total   int            `json:"total"`
				ByGhaam map[string]int `json:"byGhaam"`
			}](t, body)
			if st.Total != 20 || st.ByGhaam["Sarangpur"] != 5 || st.ByGhaam["Gadhada"] != 15 {
				t.Fatalf("unexpected stats: %+v", st)
			}
		})
	}
}
