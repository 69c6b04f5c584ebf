package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/freshapply/internal/engine"
	"github.com/jonathan/freshapply/internal/observability"
	"github.com/jonathan/freshapply/internal/schemas"
)

var (
	evaluateInput    string
	evaluateOutput   string
	evaluateValidate bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score postings read from a JSON file or stdin",
	Long: `Evaluate one posting object or an array of postings and print the
evaluations as JSON. Nothing is fetched or stored.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateInput, "in", "i", "-", "Path to posting JSON, or - for stdin")
	evaluateCmd.Flags().StringVarP(&evaluateOutput, "out", "o", "", "Write evaluation JSON to this file instead of stdout")
	evaluateCmd.Flags().BoolVar(&evaluateValidate, "validate", false, "Validate each evaluation against the evaluation schema")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	data, err := readInput(cmd.InOrStdin(), evaluateInput)
	if err != nil {
		return err
	}
	postings, single, err := decodePostings(data)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	evals, err := a.evaluator.EvaluateAll(cmd.Context(), postings, clock(), a.cfg.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to evaluate postings: %w", err)
	}

	if evaluateValidate {
		for i := range evals {
			if err := schemas.ValidateEvaluation(evals[i]); err != nil {
				return fmt.Errorf("evaluation %d: %w", i, err)
			}
		}
	}

	if verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		for i := range evals {
			printer.PrintEvaluation(&evals[i])
			printer.PrintSuggestions(&evals[i])
		}
	}

	var result any = evals
	if single {
		result = evals[0]
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal evaluations: %w", err)
	}
	out = append(out, '\n')

	if evaluateOutput != "" {
		if err := os.WriteFile(evaluateOutput, out, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d evaluations to %s\n", len(evals), evaluateOutput)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

// decodePostings accepts a single posting object or an array of postings.
func decodePostings(data []byte) ([]engine.Posting, bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("no posting JSON provided")
	}
	if trimmed[0] == '[' {
		var postings []engine.Posting
		if err := json.Unmarshal(trimmed, &postings); err != nil {
			return nil, false, fmt.Errorf("failed to parse postings JSON: %w", err)
		}
		if len(postings) == 0 {
			return nil, false, fmt.Errorf("no postings in input")
		}
		return postings, false, nil
	}
	var p engine.Posting
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, false, fmt.Errorf("failed to parse posting JSON: %w", err)
	}
	return []engine.Posting{p}, true, nil
}
