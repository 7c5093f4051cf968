package reports

import (
	"threesixty/internal/domain/evaluation"
	"threesixty/internal/domain/scoring"
)

const (
	KindSelf       = "self"
	KindRelation   = "relation"
	KindTotal      = "total"
	KindDemography = "demography"
	KindQuotient   = "quotient"
	KindStatus     = "status"
	KindOverall    = "overall_status"

	totalColumn = "total"
	totalLabel  = "Total"
)

type Filter = evaluation.Filter

// ComparisonRow puts the evaluated user's own score next to one other perspective.
type ComparisonRow struct {
	AttributeName string           `json:"attributeName"`
	Category      scoring.Category `json:"category"`
	SelfScore     scoring.Score    `json:"selfScore"`
	Score         scoring.Score    `json:"score"`
}

// RelationReport backs the per-relationship views and the total view.
type RelationReport struct {
	Relationship   string                   `json:"relationship"`
	Label          string                   `json:"label"`
	Rows           []ComparisonRow          `json:"rows"`
	SelfCumulative scoring.Score            `json:"selfCumulative"`
	Cumulative     scoring.Score            `json:"cumulative"`
	IdealScore     *float64                 `json:"idealScore,omitempty"`
	Attributes     []scoring.AttributeScore `json:"attributes"`
}

type SelfRow struct {
	AttributeName string           `json:"attributeName"`
	Category      scoring.Category `json:"category"`
	Score         scoring.Score    `json:"score"`
}

type SelfReport struct {
	Rows       []SelfRow                `json:"rows"`
	Cumulative scoring.Score            `json:"cumulative"`
	IdealScore *float64                 `json:"idealScore,omitempty"`
	Attributes []scoring.AttributeScore `json:"attributes"`
}

type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// DemographyRow holds one attribute's score per column key.
type DemographyRow struct {
	AttributeName string                   `json:"attributeName"`
	Category      scoring.Category         `json:"category"`
	Scores        map[string]scoring.Score `json:"scores"`
}

type DemographyReport struct {
	Columns    []Column                 `json:"columns"`
	Rows       []DemographyRow          `json:"rows"`
	Cumulative map[string]scoring.Score `json:"cumulative"`
	IdealScore *float64                 `json:"idealScore,omitempty"`
}

type QuotientColumn struct {
	Key        string                 `json:"key"`
	Label      string                 `json:"label"`
	Rows       []scoring.Comparison   `json:"rows"`
	Cumulative scoring.CategoryScores `json:"cumulative"`
}

type Quadrants struct {
	Before string `json:"before"`
	After  string `json:"after,omitempty"`
}

type QuotientReport struct {
	BeforeBankID string           `json:"beforeBankId"`
	AfterBankID  string           `json:"afterBankId,omitempty"`
	Columns      []QuotientColumn `json:"columns"`
	Total        QuotientColumn   `json:"total"`
	Rollup       scoring.Rollup   `json:"rollup"`
	Quadrant     Quadrants        `json:"quadrant"`
}

type StatusGroup struct {
	Relationship string                 `json:"relationship"`
	Label        string                 `json:"label"`
	Total        int                    `json:"total"`
	Completed    int                    `json:"completed"`
	Evaluators   []evaluation.StatusRow `json:"evaluators"`
}

type StatusReport struct {
	Groups    []StatusGroup `json:"groups"`
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
}

// EmployeeStatus is one evaluated user's progress: their own evaluation and every other evaluator.
type EmployeeStatus struct {
	AssignmentID string                 `json:"assignmentId"`
	UserID       string                 `json:"userId"`
	UserName     string                 `json:"userName"`
	SelfStatus   string                 `json:"selfStatus,omitempty"`
	Evaluators   []evaluation.StatusRow `json:"evaluators"`
	Total        int                    `json:"total"`
	Completed    int                    `json:"completed"`
}

type EvaluationStatus struct {
	EvaluationName string           `json:"evaluationName"`
	Employees      []EmployeeStatus `json:"employees"`
	Total          int              `json:"total"`
	Completed      int              `json:"completed"`
}

// OverallStatusReport covers every assignment under one bank.
type OverallStatusReport struct {
	BankID      string             `json:"attributeBankId"`
	Evaluations []EvaluationStatus `json:"evaluations"`
	Total       int                `json:"total"`
	Completed   int                `json:"completed"`
}
