package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"threesixty/internal/domain/reports"
	"threesixty/internal/domain/scoring"
)

type quotientOptions struct {
	before string
	after  string
	task   string
	people string
}

func newQuotientCmd() *cobra.Command {
	opts := &quotientOptions{}
	cmd := &cobra.Command{
		Use:   "quotient",
		Short: "Compare a user's scores under two attribute banks",
		Long:  "Builds the before/after comparison per relationship with task and people rollups and the leadership quadrant.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuotient(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.before, "before", "b", "", "Path to the rows of the first bank (required)")
	cmd.Flags().StringVarP(&opts.after, "after", "a", "", "Path to the rows of the second bank")
	cmd.Flags().StringVar(&opts.task, "task", "", "Comma separated attributes to count as task oriented")
	cmd.Flags().StringVar(&opts.people, "people", "", "Comma separated attributes to count as people oriented")
	if err := cmd.MarkFlagRequired("before"); err != nil {
		panic(fmt.Sprintf("failed to mark before flag as required: %v", err))
	}
	return cmd
}

func runQuotient(ctx context.Context, out io.Writer, opts *quotientOptions) error {
	categories, err := reports.CategoryOverrides(splitNames(opts.task), splitNames(opts.people))
	if err != nil {
		return err
	}
	before, err := loadRows(opts.before)
	if err != nil {
		return err
	}
	source := &fileSource{rows: map[string][]scoring.Row{beforeBank: before}}

	afterID := ""
	if opts.after != "" {
		after, err := loadRows(opts.after)
		if err != nil {
			return err
		}
		source.rows[afterBank] = after
		afterID = afterBank
	}

	svc := reports.NewService(source, source, nil, 0)
	report, err := svc.QuotientReport(ctx, reports.Filter{CompanyID: fileBank, UserID: fileBank, BankID: beforeBank}, afterID, categories)
	if err != nil {
		return err
	}
	return writeJSON(out, report)
}
