package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/swzro/builders/internal/combine"
	"github.com/swzro/builders/internal/llm"
	"github.com/swzro/builders/internal/types"
)

var combineOffline bool

var combineCmd = &cobra.Command{
	Use:   "combine A.json B.json",
	Short: "Combine two draft files into one",
	Long:  "Merge two draft JSON files with the model, falling back to a field-by-field merge when that fails.",
	Args:  cobra.ExactArgs(2),
	RunE:  runCombine,
}

func init() {
	combineCmd.Flags().BoolVar(&combineOffline, "offline", false, "Skip the model and merge field by field")
	rootCmd.AddCommand(combineCmd)
}

func runCombine(cmd *cobra.Command, args []string) error {
	a, err := readDraft(args[0])
	if err != nil {
		return err
	}
	b, err := readDraft(args[1])
	if err != nil {
		return err
	}

	var client llm.Client
	if !combineOffline {
		client, err = llm.NewClient(cmd.Context(), cfg.LLMConfig(), cfg.APIKey())
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
	}

	outcome, err := combine.New(client).Combine(cmd.Context(), a, b)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), outcome)
}

// readDraft loads a draft file. Both a bare draft and a pipeline outcome
// ({"draft": ...}) are accepted, so analyze output can be combined directly.
func readDraft(path string) (*types.DraftRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var outcome types.PipelineOutcome
	if err := json.Unmarshal(content, &outcome); err == nil && outcome.Draft != nil {
		return outcome.Draft, nil
	}

	var draft types.DraftRecord
	if err := json.Unmarshal(content, &draft); err != nil {
		return nil, fmt.Errorf("failed to parse draft %s: %w", path, err)
	}
	return &draft, nil
}
