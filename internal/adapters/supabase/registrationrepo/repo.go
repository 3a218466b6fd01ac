package registrationrepo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	postgres "github.com/jubilee25/celebration-api/internal/adapters/postgres"
	"github.com/jubilee25/celebration-api/internal/domain"
	"github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

// Repo implements registrationrepo.Repository on top of Supabase's PostgREST API,
// calling the same stored functions the Postgres adapter uses.
type Repo struct {
	c *client
}

func NewRepo(baseURL, serviceRoleKey string, opts Options) (*Repo, error) {
	c, err := newClient(baseURL, serviceRoleKey, opts)
	if err != nil {
		return nil, err
	}
	return &Repo{c: c}, nil
}

func (r *Repo) QueryPage(ctx context.Context, req registrationrepo.PageRequest) (registrationrepo.Page, error) {
	ctx, span := tracer.Start(ctx, "QueryPage", trace.WithAttributes(
		attribute.String("direction", string(req.Direction)),
		attribute.Int("page_size", req.PageSize),
	))
	defer span.End()

	var raw []byte
	if err := r.c.do(ctx, http.MethodPost, "rpc/admin_registrations_page", nil, postgres.NewPageArgs(req), nil, &raw); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rpc admin_registrations_page")
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

	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "gt."+strconv.FormatInt(int64(after), 10))
	q.Set("order", "id.asc")
	q.Set("limit", strconv.Itoa(limit))

	var rows []postgres.RegistrationRow
	if err := r.c.do(ctx, http.MethodGet, "registrations", q, nil, nil, &rows); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list registrations")
		return nil, err
	}
	return postgres.DecodeRows(rows)
}

func (r *Repo) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	ctx, span := tracer.Start(ctx, "Create")
	defer span.End()

	h := http.Header{}
	h.Set("Prefer", "return=representation")

	var rows []postgres.RegistrationRow
	if err := r.c.do(ctx, http.MethodPost, "registrations", nil, postgres.RowFromDomain(reg), h, &rows); err != nil {
		span.RecordError(err)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsConstraintViolation() {
			return domain.Registration{}, registrationrepo.ErrInvalidRegistration
		}
		span.SetStatus(codes.Error, "insert registration")
		return domain.Registration{}, err
	}
	if len(rows) != 1 {
		return domain.Registration{}, fmt.Errorf("supabase: insert returned %d rows", len(rows))
	}
	out, err := rows[0].ToDomain()
	if err != nil {
		return domain.Registration{}, err
	}
	span.SetAttributes(attribute.Int64("registration_id", int64(out.ID)))
	return out, nil
}

func (r *Repo) Stats(ctx context.Context) (domain.RegistrationStats, error) {
	ctx, span := tracer.Start(ctx, "Stats")
	defer span.End()

	var raw []byte
	if err := r.c.do(ctx, http.MethodPost, "rpc/admin_registrations_stats", nil, struct{}{}, nil, &raw); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rpc admin_registrations_stats")
		return domain.RegistrationStats{}, err
	}
	return postgres.DecodeStats(raw)
}
