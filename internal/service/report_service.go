package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nurpe/gigledger/internal/config"
	"github.com/nurpe/gigledger/internal/model"
)

// ClientReportExporter renders the best-clients ranking as a document.
type ClientReportExporter interface {
	Generate(report model.ClientReport) ([]byte, error)
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// ReportService aggregates settled jobs over an inclusive calendar-date
// window. It never writes; callers get empty results, not errors, for
// windows with no settled jobs.
type ReportService struct {
	store        ReportStore
	exporter     ClientReportExporter
	defaultLimit int
}

func NewReportService(store ReportStore, exporter ClientReportExporter, cfg *config.Config) *ReportService {
	return &ReportService{
		store:        store,
		exporter:     exporter,
		defaultLimit: cfg.Reports.ClientLimit,
	}
}

// BestProfession returns the profession whose settled jobs in the window
// gross the most, or nil when nothing settled in the window.
func (s *ReportService) BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionEarnings, error) {
	from, toExclusive, err := reportWindow(start, end)
	if err != nil {
		return nil, err
	}
	if toExclusive.IsZero() {
		return nil, nil
	}
	return s.store.BestProfession(ctx, from, toExclusive)
}

// BestClients returns the top clients by amount paid in the window. A
// zero limit means the configured default; negative limits are invalid.
func (s *ReportService) BestClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientSpending, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidInput)
	}
	if limit == 0 {
		limit = s.defaultLimit
	}

	from, toExclusive, err := reportWindow(start, end)
	if err != nil {
		return nil, err
	}
	if toExclusive.IsZero() {
		return []model.ClientSpending{}, nil
	}

	clients, err := s.store.BestClients(ctx, from, toExclusive, limit)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []model.ClientSpending{}
	}
	return clients, nil
}

// ExportBestClients renders the best-clients ranking as a spreadsheet
// attachment.
func (s *ReportService) ExportBestClients(ctx context.Context, start, end time.Time, limit int) (*ExportResult, error) {
	clients, err := s.BestClients(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}

	from := dateOnly(start)
	to := dateOnly(end)
	content, err := s.exporter.Generate(model.ClientReport{
		PeriodStart: from,
		PeriodEnd:   to,
		Clients:     clients,
	})
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("best-clients-%s-%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

// reportWindow normalizes the inclusive [start, end] date pair into a
// half-open [from, toExclusive) range. An inverted window is not an
// error; it yields no rows, signalled by a zero toExclusive.
func reportWindow(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	from := dateOnly(start)
	to := dateOnly(end)
	if from.After(to) {
		return time.Time{}, time.Time{}, nil
	}
	return from, to.Add(24 * time.Hour), nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
