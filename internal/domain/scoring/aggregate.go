package scoring

import (
	"sort"
	"strings"
)

type statementGroup struct {
	total      int
	evaluators int
}

type attributeGroup struct {
	statements map[string]*statementGroup
	order      []string
}

// Aggregate computes one percentage score per attribute over the rows whose relationship is
// selected by include.
//
// Responses are grouped by statement text (exact match). For each attribute:
//
//	averageScore = sum(weights) / numStatements
//	maxPossible  = evaluatorsPerStatement * 100
//	percentage   = averageScore / maxPossible * 100
//
// evaluatorsPerStatement is the mean response count across statement groups, so an attribute whose
// statements were answered unevenly is scored as the mean weight of all its responses and flagged
// Divergent. Rows without an attribute, statement or relationship, or with a weight outside 0..100,
// are skipped.
func Aggregate(rows []Row, include Partition) map[string]AttributeScore {
	if include == nil {
		include = AllPartition
	}

	groups := map[string]*attributeGroup{}
	for _, row := range rows {
		if !validRow(row) {
			continue
		}
		relationship, ok := row.Relationship()
		if !ok || !include(relationship) {
			continue
		}

		attr, ok := groups[row.AttributeName]
		if !ok {
			attr = &attributeGroup{statements: map[string]*statementGroup{}}
			groups[row.AttributeName] = attr
		}
		stmt, ok := attr.statements[row.StatementText]
		if !ok {
			stmt = &statementGroup{}
			attr.statements[row.StatementText] = stmt
			attr.order = append(attr.order, row.StatementText)
		}
		stmt.total += row.Weight
		stmt.evaluators++
	}

	out := make(map[string]AttributeScore, len(groups))
	for name, attr := range groups {
		out[name] = scoreAttribute(name, attr)
	}
	return out
}

func scoreAttribute(name string, attr *attributeGroup) AttributeScore {
	score := AttributeScore{
		AttributeName: name,
		Category:      CategoryOf(name),
		NumStatements: len(attr.order),
		Percentage:    NA(),
	}
	if score.NumStatements == 0 {
		return score
	}

	first := attr.statements[attr.order[0]].evaluators
	for _, key := range attr.order {
		group := attr.statements[key]
		score.RawScore += float64(group.total)
		score.Responses += group.evaluators
		if group.evaluators != first {
			score.Divergent = true
		}
	}

	score.AverageScore = score.RawScore / float64(score.NumStatements)
	score.EvaluatorsPerStatement = float64(score.Responses) / float64(score.NumStatements)
	score.MaxPossible = score.EvaluatorsPerStatement * 100
	if score.MaxPossible > 0 {
		score.Percentage = Of(score.AverageScore / score.MaxPossible * 100)
	}
	return score
}

func validRow(row Row) bool {
	if strings.TrimSpace(row.AttributeName) == "" || strings.TrimSpace(row.StatementText) == "" {
		return false
	}
	return row.Weight >= MinWeight && row.Weight <= MaxWeight
}

// Percentages projects aggregated scores onto attribute name → percentage.
func Percentages(scores map[string]AttributeScore) map[string]Score {
	out := make(map[string]Score, len(scores))
	for name, score := range scores {
		out[name] = score.Percentage
	}
	return out
}

// Ordered returns scores sorted by attribute name.
func Ordered(scores map[string]AttributeScore) []AttributeScore {
	out := make([]AttributeScore, 0, len(scores))
	for _, score := range scores {
		out = append(out, score)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AttributeName < out[j].AttributeName
	})
	return out
}

// AttributeNames returns the sorted union of attribute names across the given score maps.
func AttributeNames(maps ...map[string]Score) []string {
	seen := map[string]struct{}{}
	for _, m := range maps {
		for name := range m {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Relationships lists the distinct relationships present in rows, in display order.
func Relationships(rows []Row) []Relationship {
	seen := map[Relationship]struct{}{}
	var out []Relationship
	for _, row := range rows {
		relationship, ok := row.Relationship()
		if !ok {
			continue
		}
		if _, dup := seen[relationship]; dup {
			continue
		}
		seen[relationship] = struct{}{}
		out = append(out, relationship)
	}
	SortRelationships(out)
	return out
}
