// Package parsing asks the model to turn extracted sources into a structured draft.
package parsing

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swzro/builders/internal/fallback"
	"github.com/swzro/builders/internal/ingestion"
	"github.com/swzro/builders/internal/llm"
	"github.com/swzro/builders/internal/prompts"
	"github.com/swzro/builders/internal/types"
)

const promptFile = "builds.json"

// Options controls a single analysis.
type Options struct {
	// Tier selects the model; empty means llm.TierStandard.
	Tier llm.ModelTier
	// Now is the clock used for today's date and date defaults; nil means time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// BuildAnalysisPrompt renders the analysis prompt for items.
func BuildAnalysisPrompt(items []types.SourceItem, today time.Time) string {
	template := prompts.MustGet(promptFile, "analyze-sources")
	return prompts.Format(template, map[string]string{
		"Today":      types.FormatDate(today),
		"Sources":    ingestion.CombineForPrompt(items),
		"Fields":     DraftSchema().RenderFields(),
		"Categories": CategoryList(),
	})
}

// AnalyzeSources sends items to the model in one JSON-mode request and decodes the reply
// into a draft. Fields the model leaves out are taken from the fallback draft for the
// same items. Every error returned matches ErrAnalysisFailed.
func AnalyzeSources(ctx context.Context, client llm.Client, items []types.SourceItem, opts Options) (*types.DraftRecord, error) {
	now := opts.now()
	tier := opts.Tier
	if tier == "" {
		tier = llm.TierStandard
	}

	responseText, err := client.Complete(ctx, llm.Request{
		System: prompts.MustGet(promptFile, "system"),
		Prompt: BuildAnalysisPrompt(items, now),
		JSON:   true,
		Tier:   tier,
	})
	if err != nil {
		log.Warn().Err(err).Str("model", client.GetModel(tier)).Int("sources", len(items)).Msg("model request failed")
		return nil, &AnalysisError{Cause: &APICallError{Message: "failed to generate content from LLM", Cause: err}}
	}

	draft, err := DecodeDraft(responseText, fallback.Synthesize(items, now))
	if err != nil {
		log.Warn().Err(err).Int("response_len", len(responseText)).Msg("model response could not be decoded")
		return nil, &AnalysisError{Cause: err}
	}

	draft.SourceURLs = fallback.LinkURLs(items)
	draft.IsPublic = true
	draft.AIGenerated = true
	return draft, nil
}
