package registrations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jubilee25/celebration-api/internal/domain"
	clockport "github.com/jubilee25/celebration-api/internal/ports/out/clock"
	"github.com/jubilee25/celebration-api/internal/ports/out/registrationrepo"
)

// DefaultExportChunkSize bounds how many rows an export holds in memory at once.
const DefaultExportChunkSize = 500

type Service struct {
	repo registrationrepo.Repository
	clk  clockport.Clock

	// ExportChunkSize is the number of rows fetched per export round.
	ExportChunkSize int
}

func NewService(repo registrationrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo:            repo,
		clk:             clk,
		ExportChunkSize: DefaultExportChunkSize,
	}
}

// Page is the normalized admin list result.
type Page struct {
	Rows       []domain.Registration
	PageSize   int
	NextCursor *domain.RegistrationID
	PrevCursor *domain.RegistrationID
	HasMore    bool
	HasPrev    bool
}

// ListRegistrations resolves p and issues exactly one filtered-page call.
//
// Errors:
//   - *Error with Status 400 for age_min > age_max (no data-layer call) and for
//     rejections reported by the data layer
//   - any other error is a transport failure
func (s *Service) ListRegistrations(ctx context.Context, p QueryParams) (Page, error) {
	req, err := ResolveQuery(p)
	if err != nil {
		return Page{}, err
	}

	res, err := s.repo.QueryPage(ctx, req)
	if err != nil {
		var qe *registrationrepo.QueryError
		if errors.As(err, &qe) {
			return Page{}, badRequest(qe.Error())
		}
		return Page{}, err
	}

	out := Page{
		Rows:       res.Rows,
		PageSize:   res.PageSize,
		NextCursor: res.NextCursor,
		PrevCursor: res.PrevCursor,
		HasMore:    res.HasMore,
		HasPrev:    res.HasPrev,
	}
	if out.Rows == nil {
		out.Rows = []domain.Registration{}
	}
	if out.PageSize == 0 {
		out.PageSize = req.PageSize
	}
	return out, nil
}

// ExportSummary describes a finished (or aborted) export.
type ExportSummary struct {
	Rounds int
	Rows   int
}

// ExportFilename returns the attachment filename for an export started now.
func (s *Service) ExportFilename() string {
	return ExportFilename(s.clk.Now())
}

// ExportCSV streams every registration as CSV to w.
//
// Rows are fetched in ascending id order, ExportChunkSize at a time, each round bounded
// by the last id of the previous one. Every round is written (and flushed, when w
// supports it) before the next fetch, so memory stays bounded by one chunk and a slow
// reader stalls the loop. A fetch or write error ends the export; bytes already written
// are not retracted.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (ExportSummary, error) {
	var sum ExportSummary

	chunkSize := s.ExportChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultExportChunkSize
	}

	if _, err := io.WriteString(w, csvBOM+csvHeader()+"\n"); err != nil {
		return sum, fmt.Errorf("write csv header: %w", err)
	}
	if err := flush(w); err != nil {
		return sum, err
	}

	var after domain.RegistrationID
	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		chunk, err := s.repo.ListAfter(ctx, after, chunkSize)
		if err != nil {
			return sum, fmt.Errorf("fetch rows after id %d: %w", after, err)
		}
		sum.Rounds++
		if len(chunk) == 0 {
			return sum, nil
		}

		lines := make([]string, len(chunk))
		for i, row := range chunk {
			lines[i] = csvLine(row)
		}
		if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
			return sum, fmt.Errorf("write csv rows: %w", err)
		}
		if err := flush(w); err != nil {
			return sum, err
		}
		sum.Rows += len(chunk)
		after = chunk[len(chunk)-1].ID

		if len(chunk) < chunkSize {
			return sum, nil
		}
	}
}

// flush pushes buffered bytes to the client when w supports it.
func flush(w io.Writer) error {
	switch f := w.(type) {
	case interface{ Flush() error }:
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush csv: %w", err)
		}
	case interface{ Flush() }:
		f.Flush()
	}
	return nil
}

// Stats returns dashboard aggregates.
func (s *Service) Stats(ctx context.Context) (domain.RegistrationStats, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		var qe *registrationrepo.QueryError
		if errors.As(err, &qe) {
			return domain.RegistrationStats{}, badRequest(qe.Error())
		}
		return domain.RegistrationStats{}, err
	}
	if st.ByCountry == nil {
		st.ByCountry = map[string]int{}
	}
	if st.ByGhaam == nil {
		st.ByGhaam = map[string]int{}
	}
	if st.ByMandal == nil {
		st.ByMandal = map[string]int{}
	}
	return st, nil
}
