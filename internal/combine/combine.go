// Package combine merges two drafts of the same activity into one.
package combine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/swzro/builders/internal/llm"
	"github.com/swzro/builders/internal/parsing"
	"github.com/swzro/builders/internal/prompts"
	"github.com/swzro/builders/internal/types"
)

// ErrNoDrafts is returned when neither draft is supplied.
var ErrNoDrafts = errors.New("at least one draft is required")

// DefaultTitle is used when no title survives a merge.
const DefaultTitle = "Combined build"

// AdvisoryMergeFallback is attached when the model merge failed and Merge was used instead.
const AdvisoryMergeFallback = "AI merge failed; the drafts were combined automatically. Please review and edit the result."

// Combiner merges drafts with the model, falling back to Merge.
type Combiner struct {
	Client llm.Client
	Tier   llm.ModelTier
	Now    func() time.Time
}

// New returns a Combiner backed by client. A nil client always uses Merge.
func New(client llm.Client) *Combiner {
	return &Combiner{Client: client, Tier: llm.TierLite}
}

func (c *Combiner) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Combine merges a and b. When only one is present it is returned as is.
func (c *Combiner) Combine(ctx context.Context, a, b *types.DraftRecord) (*types.PipelineOutcome, error) {
	switch {
	case a == nil && b == nil:
		return nil, ErrNoDrafts
	case b == nil:
		return &types.PipelineOutcome{Draft: a}, nil
	case a == nil:
		return &types.PipelineOutcome{Draft: b}, nil
	}

	now := c.now()
	merged, err := c.mergeWithModel(ctx, a, b, now)
	if err != nil {
		log.Warn().Err(err).Msg("model merge failed, merging drafts deterministically")
		return &types.PipelineOutcome{Draft: Merge(a, b, now), Advisory: AdvisoryMergeFallback}, nil
	}
	return &types.PipelineOutcome{Draft: merged}, nil
}

func (c *Combiner) mergeWithModel(ctx context.Context, a, b *types.DraftRecord, now time.Time) (*types.DraftRecord, error) {
	if c.Client == nil {
		return nil, errors.New("no model client configured")
	}

	prompt, err := BuildCombinePrompt(a, b)
	if err != nil {
		return nil, err
	}

	tier := c.Tier
	if tier == "" {
		tier = llm.TierLite
	}
	responseText, err := c.Client.Complete(ctx, llm.Request{
		System: prompts.MustGet("builds.json", "system"),
		Prompt: prompt,
		JSON:   true,
		Tier:   tier,
	})
	if err != nil {
		return nil, &parsing.APICallError{Message: "failed to merge drafts", Cause: err}
	}

	// Fields the model drops or garbles keep their deterministic merge value.
	merged, err := parsing.DecodeDraft(responseText, Merge(a, b, now))
	if err != nil {
		return nil, err
	}

	merged.SourceURLs = a.SourceURLs
	if merged.SourceURLs == nil {
		merged.SourceURLs = []string{}
	}
	merged.IsPublic = true
	merged.AIGenerated = true
	return merged, nil
}

// BuildCombinePrompt renders the merge prompt for two drafts.
func BuildCombinePrompt(a, b *types.DraftRecord) (string, error) {
	draftA, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode draft A: %w", err)
	}
	draftB, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode draft B: %w", err)
	}

	return prompts.Render("builds.json", "combine-drafts", map[string]string{
		"DraftA":     string(draftA),
		"DraftB":     string(draftB),
		"Categories": parsing.CategoryList(),
		"Fields":     parsing.DraftSchema().RenderFields(),
	})
}
