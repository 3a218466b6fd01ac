package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jubilee25/celebration-api/internal/app/events"
	"github.com/jubilee25/celebration-api/internal/app/registrations"
	"github.com/jubilee25/celebration-api/internal/ports/out/idempotency"
)

// Handlers binds HTTP requests to the application services.
type Handlers struct {
	Registrations *registrations.Service
	Events        *events.Service
	// Idem replays POST /api/registrations retries carrying an Idempotency-Key. nil disables replay.
	Idem   idempotency.Store
	Logger *slog.Logger
}

func NewHandlers(regs *registrations.Service, evs *events.Service, idem idempotency.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Registrations: regs,
		Events:        evs,
		Idem:          idem,
		Logger:        logger,
	}
}

func (h *Handlers) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Registrations.ListRegistrations(r.Context(), registrations.QueryParams{
		PageSize:      q.Get("page_size"),
		Cursor:        q.Get("cursor"),
		Direction:     q.Get("direction"),
		Ghaam:         q.Get("ghaam"),
		Mandal:        q.Get("mandal"),
		Country:       q.Get("country"),
		Age:           q.Get("age"),
		AgeMin:        q.Get("age_min"),
		AgeMax:        q.Get("age_max"),
		ArrivalFrom:   q.Get("arrival_from"),
		ArrivalTo:     q.Get("arrival_to"),
		DepartureFrom: q.Get("departure_from"),
		DepartureTo:   q.Get("departure_to"),
		Search:        q.Get("search"),
	})
	if err != nil {
		writeAppError(w, r, h.Logger, "Failed to fetch registrations", err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(page))
}

// ExportRegistrations streams every registration as CSV.
//
// Headers and status are committed before the first fetch. If a later round fails the
// connection is aborted so the client sees a truncated transfer rather than a
// well-formed file.
func (h *Handlers) ExportRegistrations(w http.ResponseWriter, r *http.Request) {
	filename := h.Registrations.ExportFilename()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	sum, err := h.Registrations.ExportCSV(r.Context(), newFlushWriter(w))
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("export.rounds", sum.Rounds), attribute.Int("export.rows", sum.Rows))
	if err != nil {
		span.RecordError(err)
		h.Logger.ErrorContext(r.Context(), "registrations export aborted",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
			"rounds", sum.Rounds,
			"rows", sum.Rows,
		)
		panic(http.ErrAbortHandler)
	}
	h.Logger.InfoContext(r.Context(), "registrations export finished",
		"filename", filename,
		"rounds", sum.Rounds,
		"rows", sum.Rows,
	)
}

func (h *Handlers) RegistrationStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Registrations.Stats(r.Context())
	if err != nil {
		writeAppError(w, r, h.Logger, "Failed to fetch registration stats", err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Success:   true,
		Total:     st.Total,
		ByCountry: st.ByCountry,
		ByGhaam:   st.ByGhaam,
		ByMandal:  st.ByMandal,
	})
}

const createRegistrationRoute = "POST /api/registrations"

// CreateRegistration stores a public form submission.
//
// With an Idempotency-Key header a retry carrying the same body replays the first 201,
// and the same key with a different body is rejected with 409.
func (h *Handlers) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, plainError{Error: "invalid request body"})
		return
	}

	var in registrations.CreateRegistrationInput
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, plainError{Error: "invalid JSON body"})
		return
	}

	key := idempotency.Key(strings.TrimSpace(r.Header.Get("Idempotency-Key")))
	var respFP idempotency.Fingerprint
	if key != "" && h.Idem != nil {
		sum := sha256.Sum256(raw)
		bodyHash := hex.EncodeToString(sum[:])
		metaFP := idempotency.Fingerprint{Key: key, Route: createRegistrationRoute}

		meta, ok, err := h.Idem.Get(r.Context(), metaFP)
		if err != nil {
			writeAppError(w, r, h.Logger, "Failed to save registration", err)
			return
		}
		if ok && string(meta.Body) != bodyHash {
			writeJSON(w, http.StatusConflict, plainError{Error: "Idempotency-Key reused with a different payload"})
			return
		}
		if !ok {
			if err := h.Idem.Put(r.Context(), metaFP, idempotency.Record{
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   time.Now().UTC(),
			}); err != nil {
				h.Logger.WarnContext(r.Context(), "idempotency metadata not stored", "error", err)
			}
		}

		respFP = metaFP
		respFP.BodyHash = bodyHash
		if rec, ok, err := h.Idem.Get(r.Context(), respFP); err == nil && ok && rec.StatusCode == http.StatusCreated {
			w.Header().Set("Content-Type", rec.ContentType)
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}
	}

	reg, err := h.Registrations.CreateRegistration(r.Context(), in)
	if err != nil {
		writeAppError(w, r, h.Logger, "Failed to save registration", err)
		return
	}
	resp := createRegistrationResponse{
		Success:      true,
		Registration: toRegistrationDTO(reg),
	}

	if respFP.BodyHash != "" {
		if b, err := json.Marshal(resp); err == nil {
			if err := h.Idem.Put(r.Context(), respFP, idempotency.Record{
				StatusCode:  http.StatusCreated,
				ContentType: "application/json",
				Body:        append(b, '\n'),
				CreatedAt:   time.Now().UTC(),
			}); err != nil {
				h.Logger.WarnContext(r.Context(), "idempotency response not stored", "error", err)
			}
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.Events.Browse(r.Context(), events.BrowseInput{
		Tags: q.Get("tags"),
		From: q.Get("from"),
		To:   q.Get("to"),
	})
	if err != nil {
		writeAppError(w, r, h.Logger, "Failed to load events", err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, eventsResponse{
		Events:       res.Events,
		Tags:         res.Tags,
		SelectedTags: res.SelectedTags,
	})
}

// flushWriter pushes each write boundary to the client through the response
// controller, which sees through middleware wrappers.
type flushWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newFlushWriter(w http.ResponseWriter) *flushWriter {
	return &flushWriter{w: w, rc: http.NewResponseController(w)}
}

func (f *flushWriter) Write(p []byte) (int, error) { return f.w.Write(p) }

func (f *flushWriter) Flush() error {
	if err := f.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
