package evaluation

import "sort"

// MergeResponses overlays final answers on draft answers by statement. The result is sorted by
// statement id.
func MergeResponses(draft, final []Answer) []Answer {
	byStatement := make(map[string]string, len(draft)+len(final))
	for _, a := range draft {
		byStatement[a.StatementID] = a.OptionID
	}
	for _, a := range final {
		byStatement[a.StatementID] = a.OptionID
	}

	out := make([]Answer, 0, len(byStatement))
	for statementID, optionID := range byStatement {
		out = append(out, Answer{StatementID: statementID, OptionID: optionID})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StatementID < out[j].StatementID
	})
	return out
}
