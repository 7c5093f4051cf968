package evaluation

import (
	"time"

	"threesixty/internal/domain/banks"
)

type Assignment struct {
	ID               string       `json:"id"`
	CompanyID        string       `json:"companyId"`
	UserToEvaluateID string       `json:"userToEvaluateId"`
	BankID           string       `json:"attributeBankId"`
	EvaluationName   string       `json:"evaluationName,omitempty"`
	CreatedBy        string       `json:"createdBy,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	Evaluations      []Evaluation `json:"evaluations"`
}

type Evaluation struct {
	ID               string     `json:"id"`
	AssignmentID     string     `json:"assignmentId"`
	BankID           string     `json:"attributeBankId"`
	UserToEvaluateID string     `json:"userToEvaluateId"`
	EvaluatorID      string     `json:"evaluatorId"`
	RelationshipType string     `json:"relationshipType"`
	IsSelfEvaluator  bool       `json:"isSelfEvaluator"`
	Status           string     `json:"status"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// Answer is the option an evaluator picked for one statement.
type Answer struct {
	StatementID string `json:"statementId" validate:"required,uuid"`
	OptionID    string `json:"optionId" validate:"required,uuid"`
}

type EvaluatorInput struct {
	EvaluatorID      string `json:"evaluatorId" validate:"required,uuid"`
	RelationshipType string `json:"relationshipType" validate:"required"`
}

type CreateAssignmentInput struct {
	UserToEvaluateID string           `json:"userToEvaluateId" validate:"required,uuid"`
	BankID           string           `json:"attributeBankId" validate:"required,uuid"`
	EvaluationName   string           `json:"evaluationName" validate:"max=200"`
	Evaluators       []EvaluatorInput `json:"evaluators" validate:"dive"`
}

// Filter selects the evaluations of one target user under one bank.
type Filter struct {
	CompanyID string
	UserID    string
	BankID    string
}

type StatusRow struct {
	EvaluatorID      string `json:"evaluatorId"`
	EvaluatorName    string `json:"evaluatorName"`
	RelationshipType string `json:"relationshipType"`
	IsSelfEvaluator  bool   `json:"isSelfEvaluator"`
	Status           string `json:"status"`
}

// Form is what an evaluator sees: the bank's statements plus the answers recorded so far.
type Form struct {
	Evaluation Evaluation        `json:"evaluation"`
	Statements []banks.Statement `json:"statements"`
	Answers    []Answer          `json:"answers"`
}

// OverallStatusRow is one evaluator of one assignment, as listed across a whole bank.
type OverallStatusRow struct {
	AssignmentID   string
	EvaluationName string
	AssignedAt     time.Time
	UserID         string
	UserName       string
	StatusRow
}
