package scoring

// Compare joins the per-attribute percentages of two banks. Attributes missing on one side are NA
// on that side. A nil after map means no second bank was chosen and AfterScore is omitted.
func Compare(before, after map[string]Score) []Comparison {
	names := AttributeNames(before, after)
	out := make([]Comparison, 0, len(names))
	for _, name := range names {
		row := Comparison{
			AttributeName: name,
			Category:      CategoryOf(name),
			Before:        lookup(before, name),
		}
		if after != nil {
			afterScore := lookup(after, name)
			row.After = &afterScore
		}
		out = append(out, row)
	}
	return out
}

func lookup(scores map[string]Score, name string) Score {
	if score, ok := scores[name]; ok {
		return score
	}
	return NA()
}

// CategoryRollup averages before/after scores within the task and people categories.
// Other-category and NA scores do not contribute.
func CategoryRollup(rows []Comparison) Rollup {
	var taskBefore, taskAfter, peopleBefore, peopleAfter []Score
	for _, row := range rows {
		after := NA()
		if row.After != nil {
			after = *row.After
		}
		switch row.Category {
		case CategoryTask:
			taskBefore = append(taskBefore, row.Before)
			taskAfter = append(taskAfter, after)
		case CategoryPeople:
			peopleBefore = append(peopleBefore, row.Before)
			peopleAfter = append(peopleAfter, after)
		}
	}
	return Rollup{
		Task:   CategoryScores{Before: Cumulative(taskBefore), After: Cumulative(taskAfter)},
		People: CategoryScores{Before: Cumulative(peopleBefore), After: Cumulative(peopleAfter)},
	}
}

// Quadrant places a task/people pair on the leadership grid. Empty when either score is NA.
func Quadrant(task, people Score) string {
	if !task.Valid || !people.Valid {
		return ""
	}
	highTask := task.Value >= quadrantThreshold
	highPeople := people.Value >= quadrantThreshold
	switch {
	case highPeople && highTask:
		return QuadrantTeamLeadership
	case highPeople:
		return QuadrantSocialite
	case highTask:
		return QuadrantAuthoritarian
	default:
		return QuadrantImpoverished
	}
}

// WithAttributes adds an NA entry for every bank attribute that received no responses.
func WithAttributes(scores map[string]AttributeScore, attributeNames []string) map[string]AttributeScore {
	if scores == nil {
		scores = make(map[string]AttributeScore, len(attributeNames))
	}
	for _, name := range attributeNames {
		if _, ok := scores[name]; ok {
			continue
		}
		scores[name] = AttributeScore{AttributeName: name, Category: CategoryOf(name), Percentage: NA()}
	}
	return scores
}
