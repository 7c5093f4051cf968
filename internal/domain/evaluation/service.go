package evaluation

import (
	"context"
	"fmt"
	"strings"

	"threesixty/internal/domain/auth"
	"threesixty/internal/domain/banks"
	"threesixty/internal/domain/scoring"
)

type StoreAPI interface {
	CountCompanyUsers(ctx context.Context, companyID string, userIDs []string) (int, error)
	BankInCompany(ctx context.Context, companyID, bankID string) (bool, error)
	CreateAssignment(ctx context.Context, companyID, createdBy string, input CreateAssignmentInput) (Assignment, error)
	GetEvaluation(ctx context.Context, companyID, evaluationID string) (Evaluation, error)
	ListForEvaluator(ctx context.Context, companyID, evaluatorID string) ([]Evaluation, error)
	DraftResponses(ctx context.Context, evaluationID string) ([]Answer, error)
	FinalResponses(ctx context.Context, evaluationID string) ([]Answer, error)
	SaveDraft(ctx context.Context, evaluationID string, answers []Answer) error
	Submit(ctx context.Context, evaluationID string, answers []Answer) error
	ScoreRows(ctx context.Context, filter Filter) ([]scoring.Row, error)
	StatusRows(ctx context.Context, filter Filter) ([]StatusRow, error)
	OverallStatusRows(ctx context.Context, companyID, bankID string) ([]OverallStatusRow, error)
}

// StatementSource lists a bank's statements with their options.
type StatementSource interface {
	ListStatements(ctx context.Context, bankID string) ([]banks.Statement, error)
}

type Service struct {
	Store      StoreAPI
	Statements StatementSource
}

func NewService(store StoreAPI, statements StatementSource) *Service {
	return &Service{Store: store, Statements: statements}
}

// CreateAssignment assigns evaluators to a user under a bank. The user is always added as their
// own self evaluator; an evaluator listed twice keeps its first relationship.
func (s *Service) CreateAssignment(ctx context.Context, companyID, createdBy string, input CreateAssignmentInput) (Assignment, error) {
	evaluators, err := normalizeEvaluators(input.UserToEvaluateID, input.Evaluators)
	if err != nil {
		return Assignment{}, err
	}
	input.Evaluators = evaluators
	input.EvaluationName = strings.TrimSpace(input.EvaluationName)

	ok, err := s.Store.BankInCompany(ctx, companyID, input.BankID)
	if err != nil {
		return Assignment{}, err
	}
	if !ok {
		return Assignment{}, ErrBankNotFound
	}

	ids := make([]string, 0, len(evaluators))
	for _, ev := range evaluators {
		ids = append(ids, ev.EvaluatorID)
	}
	count, err := s.Store.CountCompanyUsers(ctx, companyID, ids)
	if err != nil {
		return Assignment{}, err
	}
	if count != len(ids) {
		return Assignment{}, ErrUnknownUser
	}

	return s.Store.CreateAssignment(ctx, companyID, createdBy, input)
}

func normalizeEvaluators(targetID string, input []EvaluatorInput) ([]EvaluatorInput, error) {
	out := []EvaluatorInput{{EvaluatorID: targetID, RelationshipType: string(scoring.RelationshipSelf)}}
	seen := map[string]bool{targetID: true}
	for _, ev := range input {
		relationship, ok := scoring.ParseRelationship(ev.RelationshipType)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRelationship, ev.RelationshipType)
		}
		if relationship.IsSelf() && ev.EvaluatorID != targetID {
			return nil, fmt.Errorf("%w: self evaluator must be the evaluated user", ErrInvalidRelationship)
		}
		id := strings.TrimSpace(ev.EvaluatorID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, EvaluatorInput{EvaluatorID: id, RelationshipType: string(relationship)})
	}
	return out, nil
}

func (s *Service) ListForEvaluator(ctx context.Context, user auth.UserContext) ([]Evaluation, error) {
	return s.Store.ListForEvaluator(ctx, user.CompanyID, user.UserID)
}

// evaluationFor loads an evaluation the caller may act on. Admins may read any evaluation of
// their company; only the evaluator may write.
func (s *Service) evaluationFor(ctx context.Context, user auth.UserContext, evaluationID string, write bool) (Evaluation, error) {
	ev, err := s.Store.GetEvaluation(ctx, user.CompanyID, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if ev.EvaluatorID != user.UserID && (write || !user.IsAdmin()) {
		return Evaluation{}, ErrForbidden
	}
	return ev, nil
}

// Form returns the evaluation with its statements and the answers recorded so far, final answers
// taking precedence over drafts.
func (s *Service) Form(ctx context.Context, user auth.UserContext, evaluationID string) (Form, error) {
	ev, err := s.evaluationFor(ctx, user, evaluationID, false)
	if err != nil {
		return Form{}, err
	}
	statements, err := s.Statements.ListStatements(ctx, ev.BankID)
	if err != nil {
		return Form{}, fmt.Errorf("list statements: %w", err)
	}
	answers, err := s.answers(ctx, ev.ID)
	if err != nil {
		return Form{}, err
	}
	return Form{Evaluation: ev, Statements: statements, Answers: answers}, nil
}

func (s *Service) answers(ctx context.Context, evaluationID string) ([]Answer, error) {
	draft, err := s.Store.DraftResponses(ctx, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("draft responses: %w", err)
	}
	final, err := s.Store.FinalResponses(ctx, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("final responses: %w", err)
	}
	return MergeResponses(draft, final), nil
}

// SaveDraft records partial answers and moves a pending evaluation to in_progress.
func (s *Service) SaveDraft(ctx context.Context, user auth.UserContext, evaluationID string, answers []Answer) error {
	ev, err := s.evaluationFor(ctx, user, evaluationID, true)
	if err != nil {
		return err
	}
	if ev.Status == StatusCompleted {
		return ErrEvaluationCompleted
	}
	statements, err := s.Statements.ListStatements(ctx, ev.BankID)
	if err != nil {
		return fmt.Errorf("list statements: %w", err)
	}
	if err := validateAnswers(statements, answers); err != nil {
		return err
	}
	return s.Store.SaveDraft(ctx, ev.ID, answers)
}

// Submit merges answers over saved drafts, requires every statement of the bank to be answered
// and completes the evaluation.
func (s *Service) Submit(ctx context.Context, user auth.UserContext, evaluationID string, answers []Answer) error {
	ev, err := s.evaluationFor(ctx, user, evaluationID, true)
	if err != nil {
		return err
	}
	if ev.Status == StatusCompleted {
		return ErrEvaluationCompleted
	}
	statements, err := s.Statements.ListStatements(ctx, ev.BankID)
	if err != nil {
		return fmt.Errorf("list statements: %w", err)
	}
	if err := validateAnswers(statements, answers); err != nil {
		return err
	}

	draft, err := s.Store.DraftResponses(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("draft responses: %w", err)
	}
	merged := MergeResponses(draft, answers)
	if err := requireComplete(statements, merged); err != nil {
		return err
	}
	return s.Store.Submit(ctx, ev.ID, merged)
}

func validateAnswers(statements []banks.Statement, answers []Answer) error {
	options := make(map[string]map[string]bool, len(statements))
	for _, stmt := range statements {
		ids := make(map[string]bool, len(stmt.Options))
		for _, opt := range stmt.Options {
			ids[opt.ID] = true
		}
		options[stmt.ID] = ids
	}
	for _, a := range answers {
		if !options[a.StatementID][a.OptionID] {
			return fmt.Errorf("%w: statement %s", ErrInvalidAnswer, a.StatementID)
		}
	}
	return nil
}

func requireComplete(statements []banks.Statement, answers []Answer) error {
	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		answered[a.StatementID] = true
	}
	missing := 0
	for _, stmt := range statements {
		if !answered[stmt.ID] {
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("%w: %d unanswered", ErrIncompleteResponses, missing)
	}
	return nil
}

func (s *Service) ScoreRows(ctx context.Context, filter Filter) ([]scoring.Row, error) {
	return s.Store.ScoreRows(ctx, filter)
}

func (s *Service) StatusRows(ctx context.Context, filter Filter) ([]StatusRow, error) {
	return s.Store.StatusRows(ctx, filter)
}

func (s *Service) OverallStatusRows(ctx context.Context, companyID, bankID string) ([]OverallStatusRow, error) {
	return s.Store.OverallStatusRows(ctx, companyID, bankID)
}
