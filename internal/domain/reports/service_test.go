package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threesixty/internal/domain/banks"
	"threesixty/internal/domain/evaluation"
	"threesixty/internal/domain/scoring"
)

type fakeRows struct {
	byBank  map[string][]scoring.Row
	status  []evaluation.StatusRow
	overall []evaluation.OverallStatusRow
	err     error
}

func (f *fakeRows) ScoreRows(_ context.Context, filter evaluation.Filter) ([]scoring.Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byBank[filter.BankID], nil
}

func (f *fakeRows) StatusRows(context.Context, evaluation.Filter) ([]evaluation.StatusRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

func (f *fakeRows) OverallStatusRows(context.Context, string, string) ([]evaluation.OverallStatusRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.overall, nil
}

type fakeBanks struct {
	names map[string][]string
	ideal map[string]float64

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeBanks) Summary(_ context.Context, _, bankID string) (banks.Summary, error) {
	f.mu.Lock()
	f.calls[bankID]++
	f.mu.Unlock()
	names, ok := f.names[bankID]
	if !ok {
		return banks.Summary{}, banks.ErrBankNotFound
	}
	summary := banks.Summary{AttributeNames: names}
	if v, ok := f.ideal[bankID]; ok {
		summary.IdealScore = &v
	}
	return summary, nil
}

type fakeMetrics struct {
	mu       sync.Mutex
	kinds    []string
	failures int
}

func (m *fakeMetrics) ReportGenerated(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds = append(m.kinds, kind)
}

func (m *fakeMetrics) ReportFetchFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func row(rel string, self bool, attribute, statement string, weight int) scoring.Row {
	return scoring.Row{RelationshipType: rel, IsSelfEvaluator: self, AttributeName: attribute, StatementText: statement, Weight: weight}
}

var beforeRows = []scoring.Row{
	row("self", true, "Planning", "Plans ahead", 80),
	row("self", true, "Empathy", "Shows care", 60),
	row("peer", false, "Planning", "Plans ahead", 100),
	row("peer", false, "Planning", "Plans ahead", 50),
	row("peer", false, "Empathy", "Shows care", 40),
	row("hr", false, "Planning", "Plans ahead", 30),
}

var afterRows = []scoring.Row{
	row("self", true, "Planning", "Plans ahead", 90),
	row("peer", false, "Planning", "Plans ahead", 70),
	row("peer", false, "Teamwork", "Helps others", 90),
}

func newTestService() (*Service, *fakeRows, *fakeMetrics) {
	svc, rows, _, metrics := newTestServiceWithBanks()
	return svc, rows, metrics
}

func newTestServiceWithBanks() (*Service, *fakeRows, *fakeBanks, *fakeMetrics) {
	rows := &fakeRows{byBank: map[string][]scoring.Row{"before": beforeRows, "after": afterRows}}
	bankSource := &fakeBanks{
		names: map[string][]string{"before": {"Planning", "Empathy", "Innovation"}, "after": {"Planning", "Teamwork"}},
		ideal: map[string]float64{"before": 75},
		calls: map[string]int{},
	}
	metrics := &fakeMetrics{}
	return NewService(rows, bankSource, metrics, 0), rows, bankSource, metrics
}

func filterFor(bank string) Filter {
	return Filter{CompanyID: "c1", UserID: "u1", BankID: bank}
}

func TestRelationReport(t *testing.T) {
	svc, _, metrics := newTestService()

	report, err := svc.RelationReport(context.Background(), filterFor("before"), "peer")
	require.NoError(t, err)

	assert.Equal(t, "Peer", report.Label)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, ComparisonRow{AttributeName: "Empathy", Category: scoring.CategoryPeople, SelfScore: scoring.Of(60), Score: scoring.Of(40)}, report.Rows[0])
	assert.Equal(t, "Innovation", report.Rows[1].AttributeName)
	assert.False(t, report.Rows[1].Score.Valid)
	assert.False(t, report.Rows[1].SelfScore.Valid)
	assert.Equal(t, scoring.Of(75), report.Rows[2].Score)
	assert.Equal(t, scoring.Of(70), report.SelfCumulative)
	assert.InDelta(t, 57.5, report.Cumulative.Value, 1e-9)
	require.NotNil(t, report.IdealScore)
	assert.Equal(t, 75.0, *report.IdealScore)
	assert.Equal(t, []string{KindRelation}, metrics.kinds)
}

func TestRelationReportRejectsSelfAndUnknown(t *testing.T) {
	svc, _, _ := newTestService()
	for _, rel := range []string{"self", "manager", ""} {
		_, err := svc.RelationReport(context.Background(), filterFor("before"), rel)
		assert.ErrorIs(t, err, ErrInvalidRelationship, rel)
	}
}

func TestTotalReportPoolsNonSelfRows(t *testing.T) {
	svc, _, _ := newTestService()

	report, err := svc.TotalReport(context.Background(), filterFor("before"))
	require.NoError(t, err)

	planning := report.Rows[2]
	assert.Equal(t, "Planning", planning.AttributeName)
	assert.Equal(t, scoring.Of(60), planning.Score)
	assert.Equal(t, scoring.Of(80), planning.SelfScore)
}

func TestSelfReport(t *testing.T) {
	svc, _, _ := newTestService()

	report, err := svc.SelfReport(context.Background(), filterFor("before"))
	require.NoError(t, err)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, scoring.Of(70), report.Cumulative)
}

func TestDemographyReport(t *testing.T) {
	svc, _, _ := newTestService()

	report, err := svc.DemographyReport(context.Background(), filterFor("before"))
	require.NoError(t, err)

	keys := make([]string, 0, len(report.Columns))
	for _, col := range report.Columns {
		keys = append(keys, col.Key)
	}
	assert.Equal(t, []string{"self", "peer", "hr", "total"}, keys)

	require.Len(t, report.Rows, 3)
	planning := report.Rows[2]
	assert.Equal(t, scoring.Of(75), planning.Scores["peer"])
	assert.Equal(t, scoring.Of(30), planning.Scores["hr"])
	assert.Equal(t, scoring.Of(60), planning.Scores["total"])
	assert.False(t, report.Rows[0].Scores["hr"].Valid)
	assert.Equal(t, scoring.Of(30), report.Cumulative["hr"])
}

func TestQuotientReport(t *testing.T) {
	svc, _, metrics := newTestService()

	report, err := svc.QuotientReport(context.Background(), filterFor("before"), "after", nil)
	require.NoError(t, err)

	assert.Equal(t, "after", report.AfterBankID)
	require.Len(t, report.Total.Rows, 3)
	teamwork := report.Total.Rows[2]
	assert.Equal(t, "Teamwork", teamwork.AttributeName)
	assert.False(t, teamwork.Before.Valid)
	require.NotNil(t, teamwork.After)
	assert.Equal(t, scoring.Of(90), *teamwork.After)

	assert.Equal(t, scoring.Of(60), report.Rollup.Task.Before)
	assert.Equal(t, scoring.Of(70), report.Rollup.Task.After)
	assert.Equal(t, scoring.Of(40), report.Rollup.People.Before)
	assert.Equal(t, scoring.Of(90), report.Rollup.People.After)
	assert.Equal(t, scoring.QuadrantAuthoritarian, report.Quadrant.Before)
	assert.Equal(t, scoring.QuadrantTeamLeadership, report.Quadrant.After)

	require.Len(t, report.Columns, 3)
	assert.Equal(t, "self", report.Columns[0].Key)
	assert.Equal(t, []string{KindQuotient}, metrics.kinds)
}

func TestQuotientReportCategoryOverrides(t *testing.T) {
	svc, _, _ := newTestService()
	categories, err := CategoryOverrides([]string{"empathy"}, []string{"Planning"})
	require.NoError(t, err)

	report, err := svc.QuotientReport(context.Background(), filterFor("before"), "after", categories)
	require.NoError(t, err)

	assert.Equal(t, scoring.CategoryTask, report.Total.Rows[0].Category)
	assert.Equal(t, scoring.CategoryPeople, report.Total.Rows[1].Category)
	assert.Equal(t, scoring.CategoryPeople, report.Columns[0].Rows[1].Category)

	assert.Equal(t, scoring.Of(40), report.Rollup.Task.Before)
	assert.False(t, report.Rollup.Task.After.Valid)
	assert.Equal(t, scoring.Of(60), report.Rollup.People.Before)
	assert.Equal(t, scoring.Of(80), report.Rollup.People.After)
	assert.Equal(t, scoring.QuadrantSocialite, report.Quadrant.Before)
	assert.Empty(t, report.Quadrant.After)
}

func TestCategoryOverrides(t *testing.T) {
	none, err := CategoryOverrides(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = CategoryOverrides([]string{"Planning"}, []string{" planning"})
	assert.ErrorIs(t, err, ErrConflictingCategory)
}

func TestReportsLookUpEachBankOnce(t *testing.T) {
	svc, _, bankSource, _ := newTestServiceWithBanks()

	_, err := svc.TotalReport(context.Background(), filterFor("before"))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"before": 1}, bankSource.calls)

	_, err = svc.QuotientReport(context.Background(), filterFor("before"), "after", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"before": 2, "after": 1}, bankSource.calls)
}

func TestQuotientReportWithoutAfterBank(t *testing.T) {
	svc, _, _ := newTestService()

	report, err := svc.QuotientReport(context.Background(), filterFor("before"), "", nil)
	require.NoError(t, err)
	assert.Empty(t, report.AfterBankID)
	for _, row := range report.Total.Rows {
		assert.Nil(t, row.After)
	}
	assert.Empty(t, report.Quadrant.After)
}

func TestQuotientReportUnknownBank(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.QuotientReport(context.Background(), filterFor("before"), "missing", nil)
	assert.ErrorIs(t, err, banks.ErrBankNotFound)
}

func TestFetchFailureYieldsEmptyReport(t *testing.T) {
	svc, rows, metrics := newTestService()
	rows.err = errors.New("connection refused")

	report, err := svc.TotalReport(context.Background(), filterFor("before"))
	require.NoError(t, err)
	for _, r := range report.Rows {
		assert.False(t, r.Score.Valid)
		assert.False(t, r.SelfScore.Valid)
	}
	assert.False(t, report.Cumulative.Valid)
	assert.Equal(t, 1, metrics.failures)

	status, err := svc.StatusReport(context.Background(), filterFor("before"))
	require.NoError(t, err)
	assert.Empty(t, status.Groups)
}

func TestMissingFilter(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.TotalReport(context.Background(), Filter{CompanyID: "c1", BankID: "before"})
	assert.ErrorIs(t, err, ErrMissingFilter)
	_, err = svc.StatusReport(context.Background(), Filter{CompanyID: "c1", UserID: "u1"})
	assert.ErrorIs(t, err, ErrMissingFilter)
}

func TestStatusReport(t *testing.T) {
	svc, rows, _ := newTestService()
	rows.status = []evaluation.StatusRow{
		{EvaluatorID: "r1", RelationshipType: "reporting_boss", Status: evaluation.StatusPending},
		{EvaluatorID: "p1", RelationshipType: "peer", Status: evaluation.StatusCompleted},
		{EvaluatorID: "p2", RelationshipType: "peer", Status: evaluation.StatusInProgress},
		{EvaluatorID: "u1", RelationshipType: "self", IsSelfEvaluator: true, Status: evaluation.StatusCompleted},
	}

	report, err := svc.StatusReport(context.Background(), filterFor("before"))
	require.NoError(t, err)

	require.Len(t, report.Groups, 3)
	assert.Equal(t, "self", report.Groups[0].Relationship)
	assert.Equal(t, 1, report.Groups[0].Total)
	assert.Equal(t, "peer", report.Groups[1].Relationship)
	assert.Equal(t, 2, report.Groups[1].Total)
	assert.Equal(t, 1, report.Groups[1].Completed)
	assert.Equal(t, "reporting_boss", report.Groups[2].Relationship)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Completed)
}

func TestWriteCSV(t *testing.T) {
	svc, _, _ := newTestService()
	report, err := svc.RelationReport(context.Background(), filterFor("before"), "hr")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, report))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Attribute", "Category", "Self", "HR"}, records[0])
	assert.Equal(t, []string{"Empathy", "people", "60.0", "NA"}, records[1])
	assert.Equal(t, []string{"Planning", "task", "80.0", "30.0"}, records[3])
	assert.Equal(t, []string{"Cumulative", "", "70.0", "30.0"}, records[4])
	assert.Equal(t, []string{"Ideal", "", "75.0", "75.0"}, records[5])
}

func TestWriteSelfTables(t *testing.T) {
	svc, _, _ := newTestService()
	report, err := svc.SelfReport(context.Background(), filterFor("before"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSelfCSV(&buf, report))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Attribute", "Category", "Self"}, records[0])
	assert.Equal(t, []string{"Cumulative", "", "70.0"}, records[4])
	assert.Equal(t, []string{"Ideal", "", "75.0"}, records[5])

	buf.Reset()
	require.NoError(t, WriteSelfPDF(&buf, "Self report", report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDF(t *testing.T) {
	svc, _, _ := newTestService()
	report, err := svc.TotalReport(context.Background(), filterFor("before"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, "Total report", report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func overallRow(assignment, name, user, userName, evaluator, rel, status string) evaluation.OverallStatusRow {
	return evaluation.OverallStatusRow{
		AssignmentID:   assignment,
		EvaluationName: name,
		UserID:         user,
		UserName:       userName,
		StatusRow: evaluation.StatusRow{
			EvaluatorID:      evaluator,
			RelationshipType: rel,
			IsSelfEvaluator:  rel == "self",
			Status:           status,
		},
	}
}

func TestOverallStatus(t *testing.T) {
	svc, rows, metrics := newTestService()
	rows.overall = []evaluation.OverallStatusRow{
		overallRow("a3", "Year end", "u3", "Zoe", "u3", "self", evaluation.StatusPending),
		overallRow("a1", "Mid-year", "u1", "Mia", "p1", "peer", evaluation.StatusCompleted),
		overallRow("a1", "Mid-year", "u1", "Mia", "u1", "self", evaluation.StatusCompleted),
		overallRow("a2", "Mid-year", "u2", "Ada", "h1", "hr", evaluation.StatusInProgress),
		overallRow("a2", "Mid-year", "u2", "Ada", "u2", "self", evaluation.StatusPending),
		overallRow("a2", "Mid-year", "u2", "Ada", "x1", "manager", evaluation.StatusCompleted),
	}

	report, err := svc.OverallStatus(context.Background(), "c1", " before ")
	require.NoError(t, err)

	assert.Equal(t, "before", report.BankID)
	require.Len(t, report.Evaluations, 2)
	assert.Equal(t, "Year end", report.Evaluations[0].EvaluationName)

	midYear := report.Evaluations[1]
	require.Len(t, midYear.Employees, 2)
	ada, mia := midYear.Employees[0], midYear.Employees[1]
	assert.Equal(t, "Ada", ada.UserName)
	assert.Equal(t, evaluation.StatusPending, ada.SelfStatus)
	require.Len(t, ada.Evaluators, 1)
	assert.Equal(t, "h1", ada.Evaluators[0].EvaluatorID)
	assert.Equal(t, 2, ada.Total)
	assert.Equal(t, 0, ada.Completed)
	assert.Equal(t, "Mia", mia.UserName)
	assert.Equal(t, 2, mia.Completed)
	assert.Equal(t, 4, midYear.Total)
	assert.Equal(t, 2, midYear.Completed)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 2, report.Completed)
	assert.Equal(t, []string{KindOverall}, metrics.kinds)
}

func TestOverallStatusErrors(t *testing.T) {
	svc, rows, metrics := newTestService()

	_, err := svc.OverallStatus(context.Background(), "c1", " ")
	assert.ErrorIs(t, err, ErrMissingBank)

	_, err = svc.OverallStatus(context.Background(), "c1", "missing")
	assert.ErrorIs(t, err, banks.ErrBankNotFound)

	rows.err = errors.New("connection refused")
	report, err := svc.OverallStatus(context.Background(), "c1", "before")
	require.NoError(t, err)
	assert.Empty(t, report.Evaluations)
	assert.Equal(t, 1, metrics.failures)
}
