package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"threesixty/internal/domain/banks"
	"threesixty/internal/domain/evaluation"
	"threesixty/internal/domain/scoring"
)

type RowSource interface {
	ScoreRows(ctx context.Context, filter evaluation.Filter) ([]scoring.Row, error)
	StatusRows(ctx context.Context, filter evaluation.Filter) ([]evaluation.StatusRow, error)
	OverallStatusRows(ctx context.Context, companyID, bankID string) ([]evaluation.OverallStatusRow, error)
}

type BankSource interface {
	Summary(ctx context.Context, companyID, bankID string) (banks.Summary, error)
}

// Recorder receives report counters. Optional.
type Recorder interface {
	ReportGenerated(kind string)
	ReportFetchFailed()
}

type Service struct {
	Rows    RowSource
	Banks   BankSource
	Metrics Recorder
	Timeout time.Duration
}

func NewService(rows RowSource, bankSource BankSource, metrics Recorder, timeout time.Duration) *Service {
	return &Service{Rows: rows, Banks: bankSource, Metrics: metrics, Timeout: timeout}
}

type bankData struct {
	rows           []scoring.Row
	attributeNames []string
	idealScore     *float64
}

func validFilter(filter Filter) error {
	if strings.TrimSpace(filter.UserID) == "" || strings.TrimSpace(filter.BankID) == "" {
		return ErrMissingFilter
	}
	return nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// load fetches the rows and bank metadata for filter. An unknown bank is an error; any other
// fetch failure is logged and degrades to empty data.
func (s *Service) load(ctx context.Context, filter Filter) (bankData, error) {
	if err := validFilter(filter); err != nil {
		return bankData{}, err
	}

	var data bankData
	summary, err := s.Banks.Summary(ctx, filter.CompanyID, filter.BankID)
	if errors.Is(err, banks.ErrBankNotFound) {
		return bankData{}, err
	}
	if err != nil {
		s.fetchFailed("bank summary", filter, err)
	} else {
		data.attributeNames = summary.AttributeNames
		data.idealScore = summary.IdealScore
	}

	rows, err := s.Rows.ScoreRows(ctx, filter)
	if err != nil {
		s.fetchFailed("score rows", filter, err)
		return data, nil
	}
	data.rows = rows
	return data, nil
}

func (s *Service) fetchFailed(what string, filter Filter, err error) {
	slog.Warn("report fetch failed", "what", what, "companyId", filter.CompanyID, "userId", filter.UserID, "bankId", filter.BankID, "err", err)
	if s.Metrics != nil {
		s.Metrics.ReportFetchFailed()
	}
}

func (s *Service) generated(kind string) {
	if s.Metrics != nil {
		s.Metrics.ReportGenerated(kind)
	}
}

// RelationReport compares self scores with one non-self relationship.
func (s *Service) RelationReport(ctx context.Context, filter Filter, relationship string) (RelationReport, error) {
	r, ok := scoring.ParseRelationship(relationship)
	if !ok || r.IsSelf() {
		return RelationReport{}, fmt.Errorf("%w: %q", ErrInvalidRelationship, relationship)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.load(ctx, filter)
	if err != nil {
		return RelationReport{}, err
	}
	report := buildRelation(string(r), r.Label(), data.rows, data.attributeNames, scoring.RelationPartition(r))
	report.IdealScore = data.idealScore
	s.generated(KindRelation)
	return report, nil
}

// TotalReport compares self scores with all non-self responses pooled together.
func (s *Service) TotalReport(ctx context.Context, filter Filter) (RelationReport, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.load(ctx, filter)
	if err != nil {
		return RelationReport{}, err
	}
	report := buildRelation(totalColumn, totalLabel, data.rows, data.attributeNames, scoring.TotalPartition)
	report.IdealScore = data.idealScore
	s.generated(KindTotal)
	return report, nil
}

func (s *Service) SelfReport(ctx context.Context, filter Filter) (SelfReport, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.load(ctx, filter)
	if err != nil {
		return SelfReport{}, err
	}
	report := buildSelf(data.rows, data.attributeNames)
	report.IdealScore = data.idealScore
	s.generated(KindSelf)
	return report, nil
}

func (s *Service) DemographyReport(ctx context.Context, filter Filter) (DemographyReport, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.load(ctx, filter)
	if err != nil {
		return DemographyReport{}, err
	}
	report := buildDemography(data.rows, data.attributeNames)
	report.IdealScore = data.idealScore
	s.generated(KindDemography)
	return report, nil
}

// QuotientReport compares the user's scores under two banks. afterBankID may be empty, in which
// case only the before side is reported. Both banks are fetched concurrently. categories overrides
// the default task/people category of individual attributes and may be nil.
func (s *Service) QuotientReport(ctx context.Context, filter Filter, afterBankID string, categories scoring.Categories) (QuotientReport, error) {
	if err := validFilter(filter); err != nil {
		return QuotientReport{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	hasAfter := strings.TrimSpace(afterBankID) != ""
	afterFilter := filter
	afterFilter.BankID = afterBankID

	var before, after bankData
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := s.load(gCtx, filter)
		if err != nil {
			return fmt.Errorf("before bank: %w", err)
		}
		before = data
		return nil
	})
	if hasAfter {
		g.Go(func() error {
			data, err := s.load(gCtx, afterFilter)
			if err != nil {
				return fmt.Errorf("after bank: %w", err)
			}
			after = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return QuotientReport{}, err
	}

	report := buildQuotient(before.rows, after.rows, hasAfter, categories)
	report.BeforeBankID = filter.BankID
	if hasAfter {
		report.AfterBankID = afterBankID
	}
	s.generated(KindQuotient)
	return report, nil
}

// CategoryOverrides builds the category choices of a quotient report from the attribute names the
// reviewer placed in each category. No names means no overrides.
func CategoryOverrides(task, people []string) (scoring.Categories, error) {
	if len(task) == 0 && len(people) == 0 {
		return nil, nil
	}
	categories := scoring.Categories{}
	categories.Set(scoring.CategoryTask, task...)
	for _, name := range people {
		if _, ok := categories.Chosen(name); ok {
			return nil, fmt.Errorf("%w: %q", ErrConflictingCategory, name)
		}
	}
	categories.Set(scoring.CategoryPeople, people...)
	return categories, nil
}

// StatusReport counts assigned and completed evaluators per relationship.
func (s *Service) StatusReport(ctx context.Context, filter Filter) (StatusReport, error) {
	if err := validFilter(filter); err != nil {
		return StatusReport{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.Rows.StatusRows(ctx, filter)
	if err != nil {
		s.fetchFailed("status rows", filter, err)
		rows = nil
	}
	s.generated(KindStatus)
	return buildStatus(rows), nil
}

// OverallStatus lists every assignment under the bank, grouped by evaluation name, with the
// status of each evaluator.
func (s *Service) OverallStatus(ctx context.Context, companyID, bankID string) (OverallStatusReport, error) {
	bankID = strings.TrimSpace(bankID)
	if bankID == "" {
		return OverallStatusReport{}, ErrMissingBank
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := Filter{CompanyID: companyID, BankID: bankID}
	if _, err := s.Banks.Summary(ctx, companyID, bankID); errors.Is(err, banks.ErrBankNotFound) {
		return OverallStatusReport{}, err
	} else if err != nil {
		s.fetchFailed("bank summary", filter, err)
	}

	rows, err := s.Rows.OverallStatusRows(ctx, companyID, bankID)
	if err != nil {
		s.fetchFailed("overall status rows", filter, err)
		rows = nil
	}
	s.generated(KindOverall)
	return buildOverallStatus(bankID, rows), nil
}
