package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"threesixty/internal/domain/reports"
	"threesixty/internal/domain/scoring"
)

type scoreOptions struct {
	rows       string
	partition  string
	attributes string
	format     string
	compare    bool
	ideal      float64
}

func newScoreCmd() *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score attributes for one evaluator partition",
		Long: "Aggregates response rows into per-attribute scores. The partition is total (all non-self evaluators), " +
			"self, all, or a single relationship such as peer or top_boss.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd.Context(), cmd.OutOrStdout(), opts, cmd.Flags().Changed("ideal"))
		},
	}
	cmd.Flags().StringVarP(&opts.rows, "rows", "r", "", "Path to a JSON array of response rows (required)")
	cmd.Flags().StringVarP(&opts.partition, "partition", "p", "total", "Evaluator partition: total, self, all or a relationship")
	cmd.Flags().StringVarP(&opts.attributes, "attributes", "a", "", "Comma separated bank attributes; unanswered ones are reported as NA")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json, csv or pdf")
	cmd.Flags().BoolVar(&opts.compare, "compare-self", false, "Emit a self comparison report instead of bare attribute scores")
	cmd.Flags().Float64Var(&opts.ideal, "ideal", 0, "Ideal score shown alongside a self comparison report")
	if err := cmd.MarkFlagRequired("rows"); err != nil {
		panic(fmt.Sprintf("failed to mark rows flag as required: %v", err))
	}
	return cmd
}

func runScore(ctx context.Context, out io.Writer, opts *scoreOptions, hasIdeal bool) error {
	include, ok := scoring.PartitionFor(opts.partition)
	if !ok {
		return fmt.Errorf("unknown partition %q", opts.partition)
	}
	rows, err := loadRows(opts.rows)
	if err != nil {
		return err
	}
	attributes := splitNames(opts.attributes)

	if opts.compare || opts.format == "pdf" {
		return writeReport(ctx, out, rows, attributes, opts, hasIdeal)
	}

	scores := scoring.Ordered(scoring.WithAttributes(scoring.Aggregate(rows, include), attributes))
	switch opts.format {
	case "json":
		return writeJSON(out, scores)
	case "csv":
		return writeScoresCSV(out, scores)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

// writeReport runs the file rows through the report service so offline output matches the API.
// The self partition renders the self report; total and single relationships are compared with self.
func writeReport(ctx context.Context, out io.Writer, rows []scoring.Row, attributes []string, opts *scoreOptions, hasIdeal bool) error {
	source := &fileSource{
		rows:       map[string][]scoring.Row{fileBank: rows},
		attributes: map[string][]string{fileBank: attributes},
	}
	if hasIdeal {
		ideal := opts.ideal
		source.ideal = &ideal
	}
	svc := reports.NewService(source, source, nil, 0)
	filter := reports.Filter{CompanyID: fileBank, UserID: fileBank, BankID: fileBank}

	var report reports.RelationReport
	var err error
	switch partition := strings.ToLower(strings.TrimSpace(opts.partition)); partition {
	case "all":
		return fmt.Errorf("partition all has no report view; use --format json or csv without --compare-self")
	case string(scoring.RelationshipSelf):
		self, err := svc.SelfReport(ctx, filter)
		if err != nil {
			return err
		}
		switch opts.format {
		case "json":
			return writeJSON(out, self)
		case "csv":
			return reports.WriteSelfCSV(out, self)
		case "pdf":
			return reports.WriteSelfPDF(out, "Self report", self)
		default:
			return fmt.Errorf("unknown format %q", opts.format)
		}
	case "total":
		report, err = svc.TotalReport(ctx, filter)
	default:
		report, err = svc.RelationReport(ctx, filter, partition)
	}
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		return writeJSON(out, report)
	case "csv":
		return reports.WriteCSV(out, report)
	case "pdf":
		return reports.WritePDF(out, report.Label+" report", report)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeScoresCSV(out io.Writer, scores []scoring.AttributeScore) error {
	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"attribute", "category", "statements", "responses", "evaluators_per_statement", "percentage"}); err != nil {
		return err
	}
	for _, score := range scores {
		record := []string{
			score.AttributeName,
			string(score.Category),
			strconv.Itoa(score.NumStatements),
			strconv.Itoa(score.Responses),
			strconv.FormatFloat(score.EvaluatorsPerStatement, 'f', 2, 64),
			score.Percentage.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
