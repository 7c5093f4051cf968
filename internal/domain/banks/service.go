package banks

import (
	"context"
	"fmt"
	"strings"
)

type StoreAPI interface {
	CreateBank(ctx context.Context, companyID string, input CreateBankInput) (Bank, error)
	ListBanks(ctx context.Context, companyID string) ([]Bank, error)
	GetBank(ctx context.Context, companyID, bankID string) (Bank, error)
	ListStatements(ctx context.Context, bankID string) ([]Statement, error)
	BankAttributeNames(ctx context.Context, bankID string) ([]string, error)
	CreateAttribute(ctx context.Context, input CreateAttributeInput) (Attribute, error)
	ListAttributes(ctx context.Context) ([]Attribute, error)
	AddStatement(ctx context.Context, bankID string, input AddStatementInput) (Statement, error)
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) CreateBank(ctx context.Context, companyID string, input CreateBankInput) (Bank, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateBank(input); err != nil {
		return Bank{}, err
	}
	return s.Store.CreateBank(ctx, companyID, input)
}

func (s *Service) ListBanks(ctx context.Context, companyID string) ([]Bank, error) {
	return s.Store.ListBanks(ctx, companyID)
}

// GetBank returns the bank with its statements and options.
func (s *Service) GetBank(ctx context.Context, companyID, bankID string) (Bank, error) {
	bank, err := s.Store.GetBank(ctx, companyID, bankID)
	if err != nil {
		return Bank{}, err
	}
	statements, err := s.Store.ListStatements(ctx, bank.ID)
	if err != nil {
		return Bank{}, fmt.Errorf("list statements: %w", err)
	}
	bank.Statements = statements
	return bank, nil
}

// Summary looks the bank up once and returns what reports need from it: the attributes it asks
// about, used to mark unanswered ones NA, and its ideal score.
func (s *Service) Summary(ctx context.Context, companyID, bankID string) (Summary, error) {
	bank, err := s.Store.GetBank(ctx, companyID, bankID)
	if err != nil {
		return Summary{}, err
	}
	names, err := s.Store.BankAttributeNames(ctx, bank.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("bank attribute names: %w", err)
	}
	return Summary{AttributeNames: names, IdealScore: bank.IdealScore}, nil
}

func (s *Service) CreateAttribute(ctx context.Context, input CreateAttributeInput) (Attribute, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Attribute{}, ErrEmptyName
	}
	return s.Store.CreateAttribute(ctx, input)
}

func (s *Service) ListAttributes(ctx context.Context) ([]Attribute, error) {
	return s.Store.ListAttributes(ctx)
}

func (s *Service) AddStatement(ctx context.Context, companyID, bankID string, input AddStatementInput) (Statement, error) {
	if err := validateStatement(input); err != nil {
		return Statement{}, err
	}
	if _, err := s.Store.GetBank(ctx, companyID, bankID); err != nil {
		return Statement{}, err
	}
	return s.Store.AddStatement(ctx, bankID, input)
}
