package reports

import (
	"sort"

	"threesixty/internal/domain/evaluation"
	"threesixty/internal/domain/scoring"
)

func buildRelation(key, label string, rows []scoring.Row, attributeNames []string, include scoring.Partition) RelationReport {
	self := scoring.WithAttributes(scoring.Aggregate(rows, scoring.SelfPartition), attributeNames)
	other := scoring.WithAttributes(scoring.Aggregate(rows, include), attributeNames)
	selfPct := scoring.Percentages(self)
	otherPct := scoring.Percentages(other)

	report := RelationReport{Relationship: key, Label: label, Attributes: scoring.Ordered(other)}
	var selfScores, otherScores []scoring.Score
	for _, name := range scoring.AttributeNames(selfPct, otherPct) {
		row := ComparisonRow{
			AttributeName: name,
			Category:      scoring.CategoryOf(name),
			SelfScore:     scoreOf(selfPct, name),
			Score:         scoreOf(otherPct, name),
		}
		report.Rows = append(report.Rows, row)
		selfScores = append(selfScores, row.SelfScore)
		otherScores = append(otherScores, row.Score)
	}
	report.SelfCumulative = scoring.Cumulative(selfScores)
	report.Cumulative = scoring.Cumulative(otherScores)
	return report
}

func buildSelf(rows []scoring.Row, attributeNames []string) SelfReport {
	scores := scoring.Ordered(scoring.WithAttributes(scoring.Aggregate(rows, scoring.SelfPartition), attributeNames))
	report := SelfReport{Attributes: scores}
	values := make([]scoring.Score, 0, len(scores))
	for _, score := range scores {
		report.Rows = append(report.Rows, SelfRow{AttributeName: score.AttributeName, Category: score.Category, Score: score.Percentage})
		values = append(values, score.Percentage)
	}
	report.Cumulative = scoring.Cumulative(values)
	return report
}

// buildDemography scores every relationship present in rows plus the non-self total.
func buildDemography(rows []scoring.Row, attributeNames []string) DemographyReport {
	relationships := scoring.Relationships(rows)
	columns := make([]Column, 0, len(relationships)+1)
	perColumn := make(map[string]map[string]scoring.Score, len(relationships)+1)
	for _, r := range relationships {
		columns = append(columns, Column{Key: string(r), Label: r.Label()})
		perColumn[string(r)] = scoring.Percentages(scoring.Aggregate(rows, scoring.RelationPartition(r)))
	}
	columns = append(columns, Column{Key: totalColumn, Label: totalLabel})
	perColumn[totalColumn] = scoring.Percentages(scoring.Aggregate(rows, scoring.TotalPartition))

	maps := make([]map[string]scoring.Score, 0, len(perColumn)+1)
	for _, m := range perColumn {
		maps = append(maps, m)
	}
	maps = append(maps, namesAsNA(attributeNames))

	report := DemographyReport{Columns: columns, Cumulative: map[string]scoring.Score{}}
	byColumn := map[string][]scoring.Score{}
	for _, name := range scoring.AttributeNames(maps...) {
		row := DemographyRow{AttributeName: name, Category: scoring.CategoryOf(name), Scores: map[string]scoring.Score{}}
		for _, col := range columns {
			score := scoreOf(perColumn[col.Key], name)
			row.Scores[col.Key] = score
			byColumn[col.Key] = append(byColumn[col.Key], score)
		}
		report.Rows = append(report.Rows, row)
	}
	for _, col := range columns {
		report.Cumulative[col.Key] = scoring.Cumulative(byColumn[col.Key])
	}
	return report
}

// buildQuotient compares two banks per relationship and in total. A nil after slice means no
// second bank was chosen. categories decides which attributes feed the task and people rollup.
func buildQuotient(before, after []scoring.Row, hasAfter bool, categories scoring.Categories) QuotientReport {
	relationships := scoring.Relationships(append(append([]scoring.Row{}, before...), after...))

	report := QuotientReport{}
	for _, r := range relationships {
		report.Columns = append(report.Columns, quotientColumn(string(r), r.Label(), before, after, hasAfter, scoring.RelationPartition(r), categories))
	}
	report.Total = quotientColumn(totalColumn, totalLabel, before, after, hasAfter, scoring.TotalPartition, categories)
	report.Rollup = scoring.CategoryRollup(report.Total.Rows)
	report.Quadrant.Before = scoring.Quadrant(report.Rollup.Task.Before, report.Rollup.People.Before)
	if hasAfter {
		report.Quadrant.After = scoring.Quadrant(report.Rollup.Task.After, report.Rollup.People.After)
	}
	return report
}

func quotientColumn(key, label string, before, after []scoring.Row, hasAfter bool, include scoring.Partition, categories scoring.Categories) QuotientColumn {
	beforePct := scoring.Percentages(scoring.Aggregate(before, include))
	var afterPct map[string]scoring.Score
	if hasAfter {
		afterPct = scoring.Percentages(scoring.Aggregate(after, include))
	}
	rows := scoring.Compare(beforePct, afterPct)
	categories.Recategorize(rows)

	col := QuotientColumn{Key: key, Label: label, Rows: rows}
	var b, a []scoring.Score
	for _, row := range rows {
		b = append(b, row.Before)
		if row.After != nil {
			a = append(a, *row.After)
		}
	}
	col.Cumulative = scoring.CategoryScores{Before: scoring.Cumulative(b), After: scoring.Cumulative(a)}
	return col
}

func buildStatus(rows []evaluation.StatusRow) StatusReport {
	groups := map[scoring.Relationship]*StatusGroup{}
	var order []scoring.Relationship
	report := StatusReport{}
	for _, row := range rows {
		relationship, ok := scoring.Normalize(row.RelationshipType, row.IsSelfEvaluator)
		if !ok {
			continue
		}
		group, ok := groups[relationship]
		if !ok {
			group = &StatusGroup{Relationship: string(relationship), Label: relationship.Label()}
			groups[relationship] = group
			order = append(order, relationship)
		}
		group.Total++
		report.Total++
		if row.Status == evaluation.StatusCompleted {
			group.Completed++
			report.Completed++
		}
		group.Evaluators = append(group.Evaluators, row)
	}
	scoring.SortRelationships(order)
	for _, r := range order {
		report.Groups = append(report.Groups, *groups[r])
	}
	return report
}

// buildOverallStatus groups rows by evaluation name, keeping the row order for groups (newest
// assignment first) and sorting employees by name within a group.
func buildOverallStatus(bankID string, rows []evaluation.OverallStatusRow) OverallStatusReport {
	report := OverallStatusReport{BankID: bankID}
	groupIndex := map[string]int{}
	employeeIndex := map[string]int{}
	for _, row := range rows {
		if _, ok := scoring.Normalize(row.RelationshipType, row.IsSelfEvaluator); !ok {
			continue
		}
		gi, ok := groupIndex[row.EvaluationName]
		if !ok {
			gi = len(report.Evaluations)
			groupIndex[row.EvaluationName] = gi
			report.Evaluations = append(report.Evaluations, EvaluationStatus{EvaluationName: row.EvaluationName})
		}
		group := &report.Evaluations[gi]

		ei, ok := employeeIndex[row.AssignmentID]
		if !ok {
			ei = len(group.Employees)
			employeeIndex[row.AssignmentID] = ei
			group.Employees = append(group.Employees, EmployeeStatus{AssignmentID: row.AssignmentID, UserID: row.UserID, UserName: row.UserName})
		}
		employee := &group.Employees[ei]

		if row.IsSelfEvaluator {
			employee.SelfStatus = row.Status
		} else {
			employee.Evaluators = append(employee.Evaluators, row.StatusRow)
		}
		employee.Total++
		group.Total++
		report.Total++
		if row.Status == evaluation.StatusCompleted {
			employee.Completed++
			group.Completed++
			report.Completed++
		}
	}
	for i := range report.Evaluations {
		employees := report.Evaluations[i].Employees
		sort.SliceStable(employees, func(a, b int) bool { return employees[a].UserName < employees[b].UserName })
	}
	return report
}

func scoreOf(scores map[string]scoring.Score, name string) scoring.Score {
	if score, ok := scores[name]; ok {
		return score
	}
	return scoring.NA()
}

func namesAsNA(names []string) map[string]scoring.Score {
	out := make(map[string]scoring.Score, len(names))
	for _, name := range names {
		out[name] = scoring.NA()
	}
	return out
}
