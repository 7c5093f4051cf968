package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"threesixty/internal/domain/banks"
	"threesixty/internal/domain/evaluation"
	"threesixty/internal/domain/scoring"
)

const (
	fileBank   = "file"
	beforeBank = "before"
	afterBank  = "after"
)

func loadRows(path string) ([]scoring.Row, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rows file %s: %w", path, err)
	}
	var rows []scoring.Row
	if err := json.Unmarshal(content, &rows); err != nil {
		return nil, fmt.Errorf("parse rows file %s: %w", path, err)
	}
	return rows, nil
}

func splitNames(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// fileSource serves rows loaded from files as if they were stored banks.
type fileSource struct {
	rows       map[string][]scoring.Row
	attributes map[string][]string
	ideal      *float64
}

func (f *fileSource) ScoreRows(_ context.Context, filter evaluation.Filter) ([]scoring.Row, error) {
	return f.rows[filter.BankID], nil
}

func (f *fileSource) StatusRows(context.Context, evaluation.Filter) ([]evaluation.StatusRow, error) {
	return nil, nil
}

func (f *fileSource) OverallStatusRows(context.Context, string, string) ([]evaluation.OverallStatusRow, error) {
	return nil, nil
}

func (f *fileSource) Summary(_ context.Context, _, bankID string) (banks.Summary, error) {
	if _, ok := f.rows[bankID]; !ok {
		return banks.Summary{}, banks.ErrBankNotFound
	}
	return banks.Summary{AttributeNames: f.attributes[bankID], IdealScore: f.ideal}, nil
}
