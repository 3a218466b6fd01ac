package registrations

import (
	"strconv"
	"strings"
	"time"

	"github.com/jubilee25/celebration-api/internal/domain"
)

// csvBOM lets spreadsheet tools detect UTF-8.
const csvBOM = "\uFEFF"

// ExportColumns is the fixed export column order.
var ExportColumns = []string{
	"id",
	"first_name",
	"middle_name",
	"last_name",
	"email",
	"mobile_number",
	"phone_country_code",
	"country",
	"ghaam",
	"mandal",
	"arrival_date",
	"departure_date",
	"age",
}

// EscapeCSVField quotes s only when it contains a comma, a newline or a double quote.
// Embedded quotes are doubled.
func EscapeCSVField(s string) string {
	if !strings.ContainsAny(s, ",\n\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// csvLine renders one registration without a trailing newline. nil fields are empty.
func csvLine(r domain.Registration) string {
	fields := []string{
		strconv.FormatInt(int64(r.ID), 10),
		r.FirstName,
		optString(r.MiddleName),
		r.LastName,
		r.Email,
		optString(r.MobileNumber),
		optString(r.PhoneCountryCode),
		r.Country,
		optString(r.Ghaam),
		optString(r.Mandal),
		optDate(r.ArrivalDate),
		optDate(r.DepartureDate),
		optInt(r.Age),
	}
	for i, f := range fields {
		fields[i] = EscapeCSVField(f)
	}
	return strings.Join(fields, ",")
}

func csvHeader() string {
	return strings.Join(ExportColumns, ",")
}

// ExportFilename derives the attachment name from now, in UTC, to whole seconds,
// with ':' and '.' removed (e.g. registrations-2025-01-02T030405Z.csv).
func ExportFilename(now time.Time) string {
	ts := now.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
	ts = strings.NewReplacer(":", "", ".", "").Replace(ts)
	return "registrations-" + ts + ".csv"
}

func optString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optDate(d *domain.CalendarDate) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
