package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/swzro/builders/internal/fetch"
	"github.com/swzro/builders/internal/ingestion"
	"github.com/swzro/builders/internal/llm"
	"github.com/swzro/builders/internal/observability"
	"github.com/swzro/builders/internal/pipeline"
	"github.com/swzro/builders/internal/types"
)

var (
	analyzeLinks   []string
	analyzeFiles   []string
	analyzeVerbose bool
	analyzeOffline bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Turn links and text files into a draft",
	Long: `Run the analysis pipeline locally and print the outcome as JSON.

With --offline no model is called and the deterministic fallback draft is returned.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringArrayVar(&analyzeLinks, "link", nil, "URL to analyze (repeatable)")
	analyzeCmd.Flags().StringArrayVar(&analyzeFiles, "file", nil, "Text or markdown file to analyze (repeatable)")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print progress and a summary to stderr")
	analyzeCmd.Flags().BoolVar(&analyzeOffline, "offline", false, "Skip the model and use the fallback draft")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	files, err := readFileInputs(analyzeFiles)
	if err != nil {
		return err
	}

	var client llm.Client
	if !analyzeOffline {
		client, err = llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey())
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = cfg.FetchTimeout
	var renderer fetch.Renderer
	if cfg.FetchUseBrowser {
		renderer = fetch.NewBrowserRenderer(cfg.FetchTimeout)
	}
	p := pipeline.New(client, ingestion.NewLinkExtractor(fetchOpts, renderer))

	return analyze(ctx, p, pipeline.Input{Links: analyzeLinks, Files: files}, analyzeVerbose,
		cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// analyze runs p and writes the outcome JSON to stdout. In verbose mode the
// sources, progress and a summary go to stderr.
func analyze(ctx context.Context, p *pipeline.Pipeline, in pipeline.Input, verbose bool, stdout, stderr io.Writer) error {
	printer := observability.NewPrinter(stderr)
	if verbose {
		if items, err := ingestion.ExtractFiles(in.Files); err == nil {
			printer.PrintSources(items)
		}
		in.OnProgress = printer.PrintProgress
	}

	outcome, err := p.Run(ctx, in)
	if err != nil {
		return err
	}
	if outcome.Advisory != "" {
		log.Warn().Str("advisory", outcome.Advisory).Msg("draft needs review")
	}
	if verbose {
		printer.PrintOutcome(outcome)
	}
	return writeJSON(stdout, outcome)
}

// readFileInputs loads local files as uploads. The declared type comes from the extension.
func readFileInputs(paths []string) ([]types.FileInput, error) {
	files := make([]types.FileInput, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, types.FileInput{
			Name:         filepath.Base(path),
			Content:      string(content),
			DeclaredType: mime.TypeByExtension(filepath.Ext(path)),
		})
	}
	return files, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
