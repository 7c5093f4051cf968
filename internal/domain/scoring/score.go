package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

const naLiteral = "NA"

// Score is a percentage that may be missing. A missing score is never zero: it is excluded
// from every mean and renders as "NA".
type Score struct {
	Value float64
	Valid bool
}

func NA() Score {
	return Score{}
}

func Of(value float64) Score {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NA()
	}
	return Score{Value: value, Valid: true}
}

// Round1 rounds half away from zero to one decimal place.
func Round1(value float64) float64 {
	return math.Round(value*10) / 10
}

// Rounded returns the display value. Full precision stays in Value.
func (s Score) Rounded() float64 {
	if !s.Valid {
		return 0
	}
	return Round1(s.Value)
}

func (s Score) String() string {
	if !s.Valid {
		return naLiteral
	}
	return strconv.FormatFloat(Round1(s.Value), 'f', 1, 64)
}

// Padded renders as 00.0 for fixed-width tables.
func (s Score) Padded() string {
	if !s.Valid {
		return naLiteral
	}
	return fmt.Sprintf("%04.1f", Round1(s.Value))
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte(`"` + naLiteral + `"`), nil
	}
	return []byte(strconv.FormatFloat(Round1(s.Value), 'f', 1, 64)), nil
}

func (s *Score) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = NA()
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		if raw == naLiteral || raw == "" || raw == "-" {
			*s = NA()
			return nil
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", raw, err)
		}
		*s = Of(value)
		return nil
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	*s = Of(value)
	return nil
}

// Cumulative is the arithmetic mean of the valid scores, NA when none are valid.
func Cumulative(scores []Score) Score {
	var sum float64
	var count int
	for _, score := range scores {
		if !score.Valid {
			continue
		}
		sum += score.Value
		count++
	}
	if count == 0 {
		return NA()
	}
	return Of(sum / float64(count))
}
