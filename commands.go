package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"chit-fund-analyzer/domain"
	"chit-fund-analyzer/report"
	"chit-fund-analyzer/service"
)

var errBatchFailed = errors.New("one or more inputs failed")

func init() {
	for _, c := range []*cobra.Command{analyzeCmd, sweepCmd, optimalCmd, frequenciesCmd, compareCmd} {
		c.Flags().String("input", "", "JSON input path (default: stdin)")
		c.Flags().String("format", "json", "output format: json or text")
		rootCmd.AddCommand(c)
	}
	sweepCmd.Flags().String("csv", "", "also write the scenario table as CSV to this path")
	sweepCmd.Flags().String("chart", "", "also write a PNG chart of annual IRR by bid to this path")
	historyCmd.Flags().Int("limit", 20, "number of records to list")
	rootCmd.AddCommand(historyCmd)
}

// --- analyze ---

type analyzeOutput struct {
	Result *domain.ChitFundAnalysisResult `json:"result,omitempty"`
	Error  string                         `json:"error,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one chit configuration or a JSON array of them",
	Example: `  chit-fund-analyzer analyze < input.json
  chit-fund-analyzer analyze --input input.json --format text`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		inputs, isArray, err := readBatch[domain.ChitFundInput](cmd)
		if err != nil {
			return err
		}

		hadError := false
		outputs := make([]analyzeOutput, 0, len(inputs))
		for _, in := range inputs {
			res, err := a.chit.Analyze(in)
			if err != nil {
				hadError = true
				outputs = append(outputs, analyzeOutput{Error: err.Error()})
				continue
			}
			outputs = append(outputs, analyzeOutput{Result: &res})
		}

		if textFormat(cmd) {
			for i, o := range outputs {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if o.Error != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", o.Error)
					continue
				}
				fmt.Fprint(cmd.OutOrStdout(), report.Summary(*o.Result))
			}
		} else if err := writeBatch(cmd.OutOrStdout(), outputs, isArray); err != nil {
			return err
		}

		if hadError {
			return errBatchFailed
		}
		return nil
	},
}

// --- sweep / optimal ---

type sweepInput struct {
	Config    domain.ChitFundInput `json:"config"`
	Bids      domain.BidSpec       `json:"bids"`
	Objective domain.Objective     `json:"objective"`
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Analyze a configuration across a range of bids",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		in, err := readOne[sweepInput](cmd)
		if err != nil {
			return err
		}
		outcomes, err := runSweep(cmd.Context(), a, in)
		if err != nil {
			return err
		}
		summary := service.SummarizeOutcomes(outcomes)
		table := service.OutcomeTable(outcomes)

		if path, _ := cmd.Flags().GetString("csv"); path != "" {
			var buf bytes.Buffer
			if err := report.WriteCSV(&buf, table); err != nil {
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		if path, _ := cmd.Flags().GetString("chart"); path != "" {
			img, err := report.RenderIRRChart("", outcomes)
			if err != nil {
				return fmt.Errorf("render chart: %w", err)
			}
			if err := os.WriteFile(path, img, 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
		}

		if textFormat(cmd) {
			fmt.Fprint(cmd.OutOrStdout(), report.SweepSummary(summary))
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"outcomes": outcomes,
			"summary":  summary,
			"table":    table,
		})
	},
}

var optimalCmd = &cobra.Command{
	Use:   "optimal",
	Short: "Find the bid that best meets an objective (default: lowest annual IRR)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		in, err := readOne[sweepInput](cmd)
		if err != nil {
			return err
		}
		if err := service.ValidateObjective(in.Objective); err != nil {
			return err
		}
		outcomes, err := runSweep(cmd.Context(), a, in)
		if err != nil {
			return err
		}
		best, err := service.SelectOptimal(outcomes, in.Objective)
		if err != nil {
			return err
		}
		summary := service.SummarizeOutcomes(outcomes)
		explanation := a.advisor.ExplainOptimal(cmd.Context(), best, summary, in.Objective)

		if textFormat(cmd) {
			fmt.Fprint(cmd.OutOrStdout(), report.Summary(best))
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", explanation)
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"optimal":     best,
			"summary":     summary,
			"explanation": explanation,
		})
	},
}

func runSweep(ctx context.Context, a *app, in sweepInput) ([]domain.ScenarioOutcome, error) {
	template, err := domain.NewChitFundConfig(in.Config)
	if err != nil {
		return nil, err
	}
	return a.engine.Sweep(ctx, template, in.Bids)
}

// --- frequencies ---

type frequencyInput struct {
	Config      domain.ChitFundInput `json:"config"`
	BidAmount   *decimal.Decimal     `json:"bid_amount,omitempty"`
	Frequencies []int                `json:"frequencies,omitempty"`
}

var frequenciesCmd = &cobra.Command{
	Use:   "frequencies",
	Short: "Compare one bid across installment frequencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		in, err := readOne[frequencyInput](cmd)
		if err != nil {
			return err
		}
		template, err := domain.NewChitFundConfig(in.Config)
		if err != nil {
			return err
		}
		bid := template.BidAmount()
		if in.BidAmount != nil {
			bid = *in.BidAmount
		}
		results, err := a.engine.CompareFrequencies(cmd.Context(), template, bid, in.Frequencies)
		if err != nil {
			return err
		}

		table := service.FrequencyTable(results)
		if textFormat(cmd) {
			for _, row := range table.Rows {
				f, _ := row[domain.ColFrequency].(int)
				r := results[f]
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s annual IRR %s, net cost %s\n",
					service.FrequencyLabel(f), report.FormatRate(r.AnnualIRR), report.FormatINR(r.NetInterestCost))
			}
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), table)
	},
}

// --- compare ---

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare early win, late win and a SIP alternative",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		in, err := readOne[domain.ComparisonInput](cmd)
		if err != nil {
			return err
		}
		result, err := a.comparative.Compare(in)
		if err != nil {
			return err
		}
		if textFormat(cmd) {
			fmt.Fprint(cmd.OutOrStdout(), report.ComparisonSummary(result))
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), result)
	},
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored analyses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := a.chit.History(limit)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), records)
	},
}

// --- input / output helpers ---

func textFormat(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("format")
	return strings.EqualFold(format, "text")
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	if path, _ := cmd.Flags().GetString("input"); strings.TrimSpace(path) != "" {
		return os.ReadFile(strings.TrimSpace(path))
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		if stat, err := f.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			return nil, errors.New("no input: pass --input or pipe JSON on stdin")
		}
	}
	return io.ReadAll(cmd.InOrStdin())
}

// readBatch accepts a single JSON object or an array of them.
func readBatch[T any](cmd *cobra.Command) ([]T, bool, error) {
	raw, err := readInput(cmd)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read input: %w", err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, errors.New("empty input")
	}

	if trimmed[0] == '[' {
		var inputs []T
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, fmt.Errorf("failed to parse JSON input: %w", err)
		}
		if len(inputs) == 0 {
			return nil, true, errors.New("empty input array")
		}
		return inputs, true, nil
	}

	var input T
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, fmt.Errorf("failed to parse JSON input: %w", err)
	}
	return []T{input}, false, nil
}

func readOne[T any](cmd *cobra.Command) (T, error) {
	var zero T
	inputs, isArray, err := readBatch[T](cmd)
	if err != nil {
		return zero, err
	}
	if isArray {
		return zero, errors.New("expected a single JSON object")
	}
	return inputs[0], nil
}

func writeBatch[T any](w io.Writer, outputs []T, isArray bool) error {
	if isArray {
		return writeJSON(w, outputs)
	}
	return writeJSON(w, outputs[0])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
