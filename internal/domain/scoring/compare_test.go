package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCumulativeExcludesNA(t *testing.T) {
	got := Cumulative([]Score{Of(80), Of(60), NA()})
	require.True(t, got.Valid)
	assert.Equal(t, 70.0, got.Value)

	assert.False(t, Cumulative([]Score{NA(), NA()}).Valid)
	assert.False(t, Cumulative(nil).Valid)
}

func TestCompareDisjointBanks(t *testing.T) {
	rows := Compare(map[string]Score{"A": Of(50)}, map[string]Score{"B": Of(70)})

	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].AttributeName)
	assert.Equal(t, Of(50), rows[0].Before)
	require.NotNil(t, rows[0].After)
	assert.False(t, rows[0].After.Valid)

	assert.Equal(t, "B", rows[1].AttributeName)
	assert.False(t, rows[1].Before.Valid)
	require.NotNil(t, rows[1].After)
	assert.Equal(t, Of(70), *rows[1].After)
}

func TestCompareWithoutAfterBankOmitsAfter(t *testing.T) {
	rows := Compare(map[string]Score{"A": Of(50)}, nil)

	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].After)

	payload, err := json.Marshal(rows[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"attributeName":"A","category":"other","beforeScore":50.0}`, string(payload))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryTask, CategoryOf("  Planning "))
	assert.Equal(t, CategoryPeople, CategoryOf("COMMUNICATION"))
	assert.Equal(t, CategoryOther, CategoryOf("Punctuality"))
	assert.Equal(t, CategoryOther, CategoryOf(""))
}

func TestCategoryRollupExcludesOtherAndNA(t *testing.T) {
	after := func(s Score) *Score { return &s }
	rows := []Comparison{
		{AttributeName: "Planning", Category: CategoryTask, Before: Of(80), After: after(Of(90))},
		{AttributeName: "Execution", Category: CategoryTask, Before: Of(60), After: after(NA())},
		{AttributeName: "Communication", Category: CategoryPeople, Before: NA(), After: after(Of(40))},
		{AttributeName: "Punctuality", Category: CategoryOther, Before: Of(10), After: after(Of(10))},
	}

	rollup := CategoryRollup(rows)

	assert.Equal(t, Of(70), rollup.Task.Before)
	assert.Equal(t, Of(90), rollup.Task.After)
	assert.False(t, rollup.People.Before.Valid)
	assert.Equal(t, Of(40), rollup.People.After)
}

func TestCategoryRollupWithoutAfterBank(t *testing.T) {
	rollup := CategoryRollup(Compare(map[string]Score{"Teamwork": Of(55)}, nil))

	assert.Equal(t, Of(55), rollup.People.Before)
	assert.False(t, rollup.People.After.Valid)
	assert.False(t, rollup.Task.Before.Valid)
}

func TestCategoriesOverrideDefaults(t *testing.T) {
	categories := Categories{}
	categories.Set(CategoryPeople, " planning ")
	categories.Set(CategoryTask, "Punctuality", "")

	assert.Equal(t, CategoryPeople, categories.Of("Planning"))
	assert.Equal(t, CategoryTask, categories.Of("PUNCTUALITY"))
	assert.Equal(t, CategoryPeople, categories.Of("Empathy"))
	assert.Len(t, categories, 2)

	var none Categories
	assert.Equal(t, CategoryTask, none.Of("Planning"))
	_, ok := none.Chosen("Planning")
	assert.False(t, ok)
}

func TestRecategorizeDrivesRollup(t *testing.T) {
	rows := Compare(map[string]Score{"Planning": Of(80), "Punctuality": Of(20)}, nil)
	assert.Equal(t, Of(80), CategoryRollup(rows).Task.Before)

	categories := Categories{}
	categories.Set(CategoryPeople, "Planning")
	categories.Set(CategoryTask, "Punctuality")
	categories.Recategorize(rows)

	rollup := CategoryRollup(rows)
	assert.Equal(t, Of(20), rollup.Task.Before)
	assert.Equal(t, Of(80), rollup.People.Before)
	assert.Equal(t, QuadrantSocialite, Quadrant(rollup.Task.Before, rollup.People.Before))
}

func TestQuadrant(t *testing.T) {
	tests := []struct {
		name   string
		task   Score
		people Score
		want   string
	}{
		{name: "both high", task: Of(50), people: Of(75), want: QuadrantTeamLeadership},
		{name: "people only", task: Of(49.9), people: Of(60), want: QuadrantSocialite},
		{name: "task only", task: Of(90), people: Of(10), want: QuadrantAuthoritarian},
		{name: "both low", task: Of(20), people: Of(30), want: QuadrantImpoverished},
		{name: "missing task", task: NA(), people: Of(60), want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Quadrant(tc.task, tc.people))
		})
	}
}

func TestScoreJSON(t *testing.T) {
	payload, err := json.Marshal(map[string]Score{"a": Of(66.666), "b": NA()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":66.7,"b":"NA"}`, string(payload))

	var decoded map[string]Score
	require.NoError(t, json.Unmarshal([]byte(`{"a":42.5,"b":"NA","c":null,"d":"12.5"}`), &decoded))
	assert.Equal(t, Of(42.5), decoded["a"])
	assert.False(t, decoded["b"].Valid)
	assert.False(t, decoded["c"].Valid)
	assert.Equal(t, Of(12.5), decoded["d"])
}

func TestScoreFormatting(t *testing.T) {
	assert.Equal(t, "07.5", Of(7.46).Padded())
	assert.Equal(t, "NA", NA().Padded())
	assert.Equal(t, 66.7, Of(66.66).Rounded())
	assert.True(t, Of(0).Valid, "zero is a real score")
}
