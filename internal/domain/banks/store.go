package banks

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (s *Store) CreateBank(ctx context.Context, companyID string, input CreateBankInput) (Bank, error) {
	bank := Bank{CompanyID: companyID, Name: input.Name, IdealScore: input.IdealScore}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attribute_banks (company_id, name, ideal_score)
    VALUES ($1, $2, $3)
    RETURNING id, created_at
  `, companyID, input.Name, input.IdealScore).Scan(&bank.ID, &bank.CreatedAt)
	if isUniqueViolation(err) {
		return Bank{}, ErrDuplicateName
	}
	return bank, err
}

func (s *Store) ListBanks(ctx context.Context, companyID string) ([]Bank, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, company_id, name, ideal_score::float8, created_at
    FROM attribute_banks
    WHERE company_id = $1
    ORDER BY created_at DESC
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bank
	for rows.Next() {
		var bank Bank
		if err := rows.Scan(&bank.ID, &bank.CompanyID, &bank.Name, &bank.IdealScore, &bank.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, bank)
	}
	return out, rows.Err()
}

func (s *Store) GetBank(ctx context.Context, companyID, bankID string) (Bank, error) {
	var bank Bank
	err := s.DB.QueryRow(ctx, `
    SELECT id, company_id, name, ideal_score::float8, created_at
    FROM attribute_banks
    WHERE company_id = $1 AND id::text = $2
  `, companyID, bankID).Scan(&bank.ID, &bank.CompanyID, &bank.Name, &bank.IdealScore, &bank.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bank{}, ErrBankNotFound
	}
	return bank, err
}

// ListStatements returns the bank's statements with their options, ordered by attribute then creation.
func (s *Store) ListStatements(ctx context.Context, bankID string) ([]Statement, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT s.id, s.attribute_id, a.name, s.statement,
           COALESCE(o.id::text, ''), COALESCE(o.option_text, ''), COALESCE(o.weight, 0)
    FROM attribute_statements s
    JOIN attributes a ON a.id = s.attribute_id
    LEFT JOIN attribute_statement_options o ON o.statement_id = s.id
    WHERE s.attribute_bank_id = $1
    ORDER BY a.name, s.created_at, s.id, o.weight DESC
  `, bankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Statement
	index := map[string]int{}
	for rows.Next() {
		var stmt Statement
		var opt Option
		if err := rows.Scan(&stmt.ID, &stmt.AttributeID, &stmt.AttributeName, &stmt.Text, &opt.ID, &opt.Text, &opt.Weight); err != nil {
			return nil, err
		}
		pos, ok := index[stmt.ID]
		if !ok {
			pos = len(out)
			index[stmt.ID] = pos
			out = append(out, stmt)
		}
		if opt.ID != "" {
			out[pos].Options = append(out[pos].Options, opt)
		}
	}
	return out, rows.Err()
}

// BankAttributeNames lists the distinct attribute names that have statements in the bank.
func (s *Store) BankAttributeNames(ctx context.Context, bankID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT a.name
    FROM attribute_statements s
    JOIN attributes a ON a.id = s.attribute_id
    WHERE s.attribute_bank_id = $1
    ORDER BY a.name
  `, bankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) CreateAttribute(ctx context.Context, input CreateAttributeInput) (Attribute, error) {
	attr := Attribute{Name: input.Name, Description: input.Description}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attributes (name, description)
    VALUES ($1, $2)
    RETURNING id, created_at
  `, input.Name, input.Description).Scan(&attr.ID, &attr.CreatedAt)
	if isUniqueViolation(err) {
		return Attribute{}, ErrDuplicateName
	}
	return attr, err
}

func (s *Store) ListAttributes(ctx context.Context) ([]Attribute, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, description, created_at
    FROM attributes
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attribute
	for rows.Next() {
		var attr Attribute
		if err := rows.Scan(&attr.ID, &attr.Name, &attr.Description, &attr.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, attr)
	}
	return out, rows.Err()
}

// AddStatement inserts a statement and its options in one transaction.
func (s *Store) AddStatement(ctx context.Context, bankID string, input AddStatementInput) (Statement, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Statement{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stmt := Statement{AttributeID: input.AttributeID, Text: input.Text}
	err = tx.QueryRow(ctx, "SELECT name FROM attributes WHERE id = $1", input.AttributeID).Scan(&stmt.AttributeName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Statement{}, ErrAttributeNotFound
	}
	if err != nil {
		return Statement{}, err
	}

	if err := tx.QueryRow(ctx, `
    INSERT INTO attribute_statements (attribute_id, attribute_bank_id, statement)
    VALUES ($1, $2, $3)
    RETURNING id
  `, input.AttributeID, bankID, input.Text).Scan(&stmt.ID); err != nil {
		return Statement{}, err
	}

	for _, opt := range input.Options {
		option := Option{Text: opt.Text, Weight: opt.Weight}
		if err := tx.QueryRow(ctx, `
      INSERT INTO attribute_statement_options (statement_id, option_text, weight)
      VALUES ($1, $2, $3)
      RETURNING id
    `, stmt.ID, opt.Text, opt.Weight).Scan(&option.ID); err != nil {
			return Statement{}, err
		}
		stmt.Options = append(stmt.Options, option)
	}

	if err := tx.Commit(ctx); err != nil {
		return Statement{}, err
	}
	return stmt, nil
}
