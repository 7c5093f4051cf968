package scoring

// Row is one response already joined with its statement, attribute and option weight.
type Row struct {
	RelationshipType string `json:"relationship_type"`
	IsSelfEvaluator  bool   `json:"is_self_evaluator"`
	StatementText    string `json:"statement_text"`
	AttributeName    string `json:"attribute_name"`
	Weight           int    `json:"weight"`
}

// Relationship resolves the row's effective relationship; false for rows that carry none.
func (r Row) Relationship() (Relationship, bool) {
	return Normalize(r.RelationshipType, r.IsSelfEvaluator)
}

type AttributeScore struct {
	AttributeName          string   `json:"attributeName"`
	Category               Category `json:"category"`
	NumStatements          int      `json:"numStatements"`
	Responses              int      `json:"responses"`
	RawScore               float64  `json:"rawScore"`
	AverageScore           float64  `json:"averageScore"`
	EvaluatorsPerStatement float64  `json:"evaluatorsPerStatement"`
	MaxPossible            float64  `json:"maxPossible"`
	Percentage             Score    `json:"percentageScore"`
	// Divergent is set when statements of the attribute received different response counts.
	Divergent bool `json:"divergent,omitempty"`
}

type Comparison struct {
	AttributeName string   `json:"attributeName"`
	Category      Category `json:"category"`
	Before        Score    `json:"beforeScore"`
	After         *Score   `json:"afterScore,omitempty"`
}

type CategoryScores struct {
	Before Score `json:"before"`
	After  Score `json:"after"`
}

type Rollup struct {
	Task   CategoryScores `json:"task"`
	People CategoryScores `json:"people"`
}
