package evaluation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"threesixty/internal/domain/scoring"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CountCompanyUsers(ctx context.Context, companyID string, userIDs []string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM users WHERE company_id = $1 AND id::text = ANY($2)
  `, companyID, userIDs).Scan(&count)
	return count, err
}

func (s *Store) BankInCompany(ctx context.Context, companyID, bankID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM attribute_banks WHERE company_id = $1 AND id::text = $2
  `, companyID, bankID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateAssignment inserts the assignment and one evaluation per evaluator in one transaction.
func (s *Store) CreateAssignment(ctx context.Context, companyID, createdBy string, input CreateAssignmentInput) (Assignment, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Assignment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out := Assignment{
		CompanyID:        companyID,
		UserToEvaluateID: input.UserToEvaluateID,
		BankID:           input.BankID,
		EvaluationName:   input.EvaluationName,
		CreatedBy:        createdBy,
	}
	err = tx.QueryRow(ctx, `
    INSERT INTO evaluation_assignments (company_id, user_to_evaluate_id, attribute_bank_id, evaluation_name, created_by)
    VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid)
    RETURNING id, created_at
  `, companyID, input.UserToEvaluateID, input.BankID, input.EvaluationName, createdBy).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Assignment{}, ErrDuplicateAssignment
		}
		return Assignment{}, err
	}

	for _, ev := range input.Evaluators {
		evaluation := Evaluation{
			AssignmentID:     out.ID,
			BankID:           out.BankID,
			UserToEvaluateID: out.UserToEvaluateID,
			EvaluatorID:      ev.EvaluatorID,
			RelationshipType: ev.RelationshipType,
			IsSelfEvaluator:  ev.RelationshipType == string(scoring.RelationshipSelf),
			Status:           StatusPending,
		}
		if err := tx.QueryRow(ctx, `
      INSERT INTO evaluations (assignment_id, evaluator_id, relationship_type, is_self_evaluator, status)
      VALUES ($1, $2, $3, $4, $5)
      RETURNING id
    `, out.ID, ev.EvaluatorID, ev.RelationshipType, evaluation.IsSelfEvaluator, StatusPending).Scan(&evaluation.ID); err != nil {
			return Assignment{}, err
		}
		out.Evaluations = append(out.Evaluations, evaluation)
	}

	if err := tx.Commit(ctx); err != nil {
		return Assignment{}, err
	}
	return out, nil
}

const evaluationColumns = `
    e.id, e.assignment_id, ea.attribute_bank_id, ea.user_to_evaluate_id, e.evaluator_id,
    e.relationship_type, e.is_self_evaluator, e.status, e.started_at, e.completed_at
`

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var ev Evaluation
	err := row.Scan(&ev.ID, &ev.AssignmentID, &ev.BankID, &ev.UserToEvaluateID, &ev.EvaluatorID,
		&ev.RelationshipType, &ev.IsSelfEvaluator, &ev.Status, &ev.StartedAt, &ev.CompletedAt)
	return ev, err
}

func (s *Store) GetEvaluation(ctx context.Context, companyID, evaluationID string) (Evaluation, error) {
	ev, err := scanEvaluation(s.DB.QueryRow(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations e
    JOIN evaluation_assignments ea ON ea.id = e.assignment_id
    WHERE ea.company_id = $1 AND e.id::text = $2
  `, companyID, evaluationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrEvaluationNotFound
	}
	return ev, err
}

// ListForEvaluator returns the evaluations the user has to fill in, open ones first.
func (s *Store) ListForEvaluator(ctx context.Context, companyID, evaluatorID string) ([]Evaluation, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations e
    JOIN evaluation_assignments ea ON ea.id = e.assignment_id
    WHERE ea.company_id = $1 AND e.evaluator_id = $2
    ORDER BY (e.status = 'completed'), e.created_at DESC
  `, companyID, evaluatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) listAnswers(ctx context.Context, table, evaluationID string) ([]Answer, error) {
	rows, err := s.DB.Query(ctx, "SELECT statement_id, selected_option_id FROM "+table+" WHERE evaluation_id = $1", evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.StatementID, &a.OptionID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DraftResponses(ctx context.Context, evaluationID string) ([]Answer, error) {
	return s.listAnswers(ctx, "evaluation_draft_responses", evaluationID)
}

func (s *Store) FinalResponses(ctx context.Context, evaluationID string) ([]Answer, error) {
	return s.listAnswers(ctx, "evaluation_responses", evaluationID)
}

// lockOpen locks the evaluation row and fails when it is already completed.
func lockOpen(ctx context.Context, tx pgx.Tx, evaluationID string) error {
	var status string
	err := tx.QueryRow(ctx, "SELECT status FROM evaluations WHERE id = $1 FOR UPDATE", evaluationID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEvaluationNotFound
	}
	if err != nil {
		return err
	}
	if status == StatusCompleted {
		return ErrEvaluationCompleted
	}
	return nil
}

func (s *Store) SaveDraft(ctx context.Context, evaluationID string, answers []Answer) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockOpen(ctx, tx, evaluationID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, a := range answers {
		batch.Queue(`
      INSERT INTO evaluation_draft_responses (evaluation_id, statement_id, selected_option_id)
      VALUES ($1, $2, $3)
      ON CONFLICT (evaluation_id, statement_id)
      DO UPDATE SET selected_option_id = EXCLUDED.selected_option_id, updated_at = now()
    `, evaluationID, a.StatementID, a.OptionID)
	}
	batch.Queue(`
    UPDATE evaluations
    SET status = $2, started_at = COALESCE(started_at, now())
    WHERE id = $1
  `, evaluationID, StatusInProgress)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Submit writes the final responses, drops drafts and completes the evaluation atomically.
func (s *Store) Submit(ctx context.Context, evaluationID string, answers []Answer) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockOpen(ctx, tx, evaluationID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	batch.Queue("DELETE FROM evaluation_responses WHERE evaluation_id = $1", evaluationID)
	for _, a := range answers {
		batch.Queue(`
      INSERT INTO evaluation_responses (evaluation_id, statement_id, selected_option_id)
      VALUES ($1, $2, $3)
    `, evaluationID, a.StatementID, a.OptionID)
	}
	batch.Queue("DELETE FROM evaluation_draft_responses WHERE evaluation_id = $1", evaluationID)
	batch.Queue(`
    UPDATE evaluations
    SET status = $2, started_at = COALESCE(started_at, now()), completed_at = now()
    WHERE id = $1
  `, evaluationID, StatusCompleted)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ScoreRows returns one joined row per final response of the completed evaluations matching filter.
func (s *Store) ScoreRows(ctx context.Context, filter Filter) ([]scoring.Row, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT COALESCE(e.relationship_type, ''), e.is_self_evaluator,
           COALESCE(st.statement, ''), COALESCE(a.name, ''), COALESCE(o.weight, -1)
    FROM evaluation_responses r
    JOIN evaluations e ON e.id = r.evaluation_id
    JOIN evaluation_assignments ea ON ea.id = e.assignment_id
    LEFT JOIN attribute_statements st ON st.id = r.statement_id
    LEFT JOIN attributes a ON a.id = st.attribute_id
    LEFT JOIN attribute_statement_options o ON o.id = r.selected_option_id
    WHERE ea.company_id = $1
      AND ea.user_to_evaluate_id::text = $2
      AND ea.attribute_bank_id::text = $3
      AND e.status = $4
  `, filter.CompanyID, filter.UserID, filter.BankID, StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scoring.Row
	for rows.Next() {
		var row scoring.Row
		if err := rows.Scan(&row.RelationshipType, &row.IsSelfEvaluator, &row.StatementText, &row.AttributeName, &row.Weight); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) StatusRows(ctx context.Context, filter Filter) ([]StatusRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.evaluator_id, COALESCE(NULLIF(u.full_name, ''), u.email, ''), e.relationship_type, e.is_self_evaluator, e.status
    FROM evaluations e
    JOIN evaluation_assignments ea ON ea.id = e.assignment_id
    LEFT JOIN users u ON u.id = e.evaluator_id
    WHERE ea.company_id = $1
      AND ea.user_to_evaluate_id::text = $2
      AND ea.attribute_bank_id::text = $3
    ORDER BY e.relationship_type, 2
  `, filter.CompanyID, filter.UserID, filter.BankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusRow
	for rows.Next() {
		var row StatusRow
		if err := rows.Scan(&row.EvaluatorID, &row.EvaluatorName, &row.RelationshipType, &row.IsSelfEvaluator, &row.Status); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// OverallStatusRows lists every evaluator of every assignment under the bank, newest assignment first.
func (s *Store) OverallStatusRows(ctx context.Context, companyID, bankID string) ([]OverallStatusRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT ea.id, ea.evaluation_name, ea.created_at,
           ea.user_to_evaluate_id, COALESCE(NULLIF(t.full_name, ''), t.email, ''),
           e.evaluator_id, COALESCE(NULLIF(u.full_name, ''), u.email, ''), e.relationship_type, e.is_self_evaluator, e.status
    FROM evaluation_assignments ea
    JOIN evaluations e ON e.assignment_id = ea.id
    LEFT JOIN users t ON t.id = ea.user_to_evaluate_id
    LEFT JOIN users u ON u.id = e.evaluator_id
    WHERE ea.company_id = $1
      AND ea.attribute_bank_id::text = $2
    ORDER BY ea.created_at DESC, ea.id, e.relationship_type, 7
  `, companyID, bankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OverallStatusRow
	for rows.Next() {
		var row OverallStatusRow
		if err := rows.Scan(
			&row.AssignmentID, &row.EvaluationName, &row.AssignedAt,
			&row.UserID, &row.UserName,
			&row.EvaluatorID, &row.EvaluatorName, &row.RelationshipType, &row.IsSelfEvaluator, &row.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
