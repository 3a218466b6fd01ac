package registrationrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	postgres "github.com/jubilee25/celebration-api/internal/adapters/postgres"
	"github.com/jubilee25/celebration-api/internal/domain"
	"github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

const registrationColumns = `
	id, first_name, middle_name, last_name, email, mobile_number, phone_country_code,
	country, ghaam, mandal, arrival_date, departure_date, age, created_at`

// Repo is a Postgres implementation of registrationrepo.Repository.
// Filtered pages and stats are delegated to the admin_registrations_* functions.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) QueryPage(ctx context.Context, req registrationrepo.PageRequest) (registrationrepo.Page, error) {
	ctx, span := tracer.Start(ctx, "QueryPage", trace.WithAttributes(
		attribute.String("direction", string(req.Direction)),
		attribute.Int("page_size", req.PageSize),
	))
	defer span.End()

	if r.pool == nil {
		return registrationrepo.Page{}, errors.New("nil postgres pool")
	}

	a := postgres.NewPageArgs(req)
	var raw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT admin_registrations_page(
			$1::text, $2::text, $3::text,
			$4::int, $5::int, $6::int,
			$7::text, $8::text, $9::text, $10::text,
			$11::text, $12::bigint, $13::text, $14::int
		)
	`,
		a.Ghaam, a.Mandal, a.Country,
		a.Age, a.AgeMin, a.AgeMax,
		a.ArrivalFrom, a.ArrivalTo, a.DepartureFrom, a.DepartureTo,
		a.Search, a.Cursor, a.Direction, a.PageSize,
	).Scan(&raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query page")
		return registrationrepo.Page{}, err
	}

	page, err := postgres.DecodePage(raw)
	if err != nil {
		span.RecordError(err)
		return registrationrepo.Page{}, err
	}
	span.SetAttributes(attribute.Int("rows", len(page.Rows)))
	return page, nil
}

func (r *Repo) ListAfter(ctx context.Context, after domain.RegistrationID, limit int) ([]domain.Registration, error) {
	ctx, span := tracer.Start(ctx, "ListAfter", trace.WithAttributes(
		attribute.Int64("after", int64(after)),
		attribute.Int("limit", limit),
	))
	defer span.End()

	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT`+registrationColumns+`
		FROM registrations
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`, int64(after), limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list after")
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Registration, 0, limit)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list after")
		return nil, err
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	ctx, span := tracer.Start(ctx, "Create")
	defer span.End()

	if r.pool == nil {
		return domain.Registration{}, errors.New("nil postgres pool")
	}

	createdAt := reg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO registrations (
			first_name,
			middle_name,
			last_name,
			email,
			mobile_number,
			phone_country_code,
			country,
			ghaam,
			mandal,
			arrival_date,
			departure_date,
			age,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`,
		reg.FirstName,
		reg.MiddleName,
		reg.LastName,
		reg.Email,
		reg.MobileNumber,
		reg.PhoneCountryCode,
		reg.Country,
		reg.Ghaam,
		reg.Mandal,
		dateArg(reg.ArrivalDate),
		dateArg(reg.DepartureDate),
		reg.Age,
		createdAt.UTC(),
	).Scan(&id)
	if err != nil {
		span.RecordError(err)
		if postgres.IsConstraintViolation(err) {
			return domain.Registration{}, registrationrepo.ErrInvalidRegistration
		}
		span.SetStatus(codes.Error, "insert registration")
		return domain.Registration{}, err
	}

	reg.ID = domain.RegistrationID(id)
	// Match the microsecond precision the column stores.
	reg.CreatedAt = createdAt.UTC().Truncate(time.Microsecond)
	span.SetAttributes(attribute.Int64("registration_id", id))
	return reg, nil
}

func (r *Repo) Stats(ctx context.Context) (domain.RegistrationStats, error) {
	ctx, span := tracer.Start(ctx, "Stats")
	defer span.End()

	if r.pool == nil {
		return domain.RegistrationStats{}, errors.New("nil postgres pool")
	}

	var raw []byte
	if err := r.pool.QueryRow(ctx, `SELECT admin_registrations_stats()`).Scan(&raw); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stats")
		return domain.RegistrationStats{}, err
	}
	return postgres.DecodeStats(raw)
}

func scanRegistration(row pgx.Row) (domain.Registration, error) {
	var (
		reg       domain.Registration
		id        int64
		arrival   *time.Time
		departure *time.Time
	)
	if err := row.Scan(
		&id,
		&reg.FirstName,
		&reg.MiddleName,
		&reg.LastName,
		&reg.Email,
		&reg.MobileNumber,
		&reg.PhoneCountryCode,
		&reg.Country,
		&reg.Ghaam,
		&reg.Mandal,
		&arrival,
		&departure,
		&reg.Age,
		&reg.CreatedAt,
	); err != nil {
		return domain.Registration{}, err
	}
	reg.ID = domain.RegistrationID(id)
	reg.ArrivalDate = dateFromColumn(arrival)
	reg.DepartureDate = dateFromColumn(departure)
	reg.CreatedAt = reg.CreatedAt.UTC()
	return reg, nil
}

func dateArg(d *domain.CalendarDate) any {
	if d == nil {
		return nil
	}
	return d.Time()
}

func dateFromColumn(t *time.Time) *domain.CalendarDate {
	if t == nil {
		return nil
	}
	d := domain.DateOf(*t)
	return &d
}
