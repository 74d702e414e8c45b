// Package pipeline orchestrates extraction, analysis, fallback and combination into a
// single draft for a set of links and files.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/swzro/builders/internal/combine"
	"github.com/swzro/builders/internal/fallback"
	"github.com/swzro/builders/internal/ingestion"
	"github.com/swzro/builders/internal/llm"
	"github.com/swzro/builders/internal/parsing"
	"github.com/swzro/builders/internal/types"
)

// ErrNoSources is returned when a run has neither links nor files.
var ErrNoSources = errors.New("at least one link or file is required")

// Advisories attached to outcomes that were not fully produced by the model.
const (
	AdvisoryFallback    = "AI analysis failed; a default draft was generated. Please review and edit it."
	AdvisoryLinksFailed = "Link analysis failed; the draft is based on your files only."
	AdvisoryFilesFailed = "File analysis failed; the draft is based on your links only."
	AdvisoryAllFailed   = "AI analysis failed for all sources; a default draft was generated. Please review and edit it."
)

// RecommendedMaxSources is the number of sources above which a run still proceeds
// but a warning is logged.
const RecommendedMaxSources = 3

// Progress steps.
const (
	StepExtract  = "extract"
	StepAnalyze  = "analyze"
	StepCombine  = "combine"
	StepFallback = "fallback"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// LinkSource turns URLs into source items. It must not fail; unreachable links
// become placeholder items.
type LinkSource interface {
	ExtractLinks(ctx context.Context, urls []string) []types.SourceItem
}

// Input is one request to the pipeline.
type Input struct {
	Links []string
	Files []types.FileInput
	// OnProgress, when set, is called from the run's goroutines; calls are serialized.
	OnProgress ProgressCallback
}

// Pipeline holds the collaborators shared by every run.
type Pipeline struct {
	Client   llm.Client
	Links    LinkSource
	// Combiner merges the two branch drafts; nil builds one from Client and Now.
	Combiner *combine.Combiner
	Tier     llm.ModelTier
	Now      func() time.Time
}

// New returns a pipeline that analyzes with client and extracts links with links.
// A nil client makes every analysis fall back.
func New(client llm.Client, links LinkSource) *Pipeline {
	return &Pipeline{
		Client: client,
		Links:  links,
		Tier:   llm.TierStandard,
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

type progress struct {
	mu sync.Mutex
	cb ProgressCallback
}

func (pr *progress) emit(step, source, message string) {
	if pr.cb == nil {
		return
	}
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.cb(ProgressEvent{Step: step, Source: source, Message: message})
}

// Run produces one draft from the input's links and files. Analysis failures never
// surface as errors: they degrade to fallback drafts with an advisory. Only a missing
// input (ErrNoSources) or a rejected file (*ingestion.ValidationError) is returned.
func (p *Pipeline) Run(ctx context.Context, in Input) (*types.PipelineOutcome, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	links := cleanLinks(in.Links)

	pr := &progress{cb: in.OnProgress}

	fileItems, err := ingestion.ExtractFiles(in.Files)
	if err != nil {
		return nil, err
	}

	if total := len(links) + len(in.Files); total > RecommendedMaxSources {
		log.Warn().Int("sources", total).Int("recommended_max", RecommendedMaxSources).Msg("more sources than recommended; processing all of them")
	}

	switch {
	case len(links) == 0:
		pr.emit(StepExtract, "files", "Read uploaded files")
		return p.single(ctx, fileItems, "files", pr), nil
	case len(fileItems) == 0:
		pr.emit(StepExtract, "links", "Fetching links")
		return p.single(ctx, p.extractLinks(ctx, links), "links", pr), nil
	}

	return p.both(ctx, links, fileItems, pr)
}

// Validate reports the errors Run would return for in without doing any work:
// ErrNoSources, or a *ingestion.ValidationError for the first unsupported file.
func Validate(in Input) error {
	if len(cleanLinks(in.Links)) == 0 && len(in.Files) == 0 {
		return ErrNoSources
	}
	for _, f := range in.Files {
		if err := ingestion.ValidateFile(f); err != nil {
			return err
		}
	}
	return nil
}

// CombineDrafts merges two existing drafts.
func (p *Pipeline) CombineDrafts(ctx context.Context, a, b *types.DraftRecord) (*types.PipelineOutcome, error) {
	return p.combiner().Combine(ctx, a, b)
}

func (p *Pipeline) single(ctx context.Context, items []types.SourceItem, source string, pr *progress) *types.PipelineOutcome {
	pr.emit(StepAnalyze, source, "Analyzing "+source)
	draft, err := p.analyze(ctx, items)
	if err == nil {
		return &types.PipelineOutcome{Draft: draft}
	}

	log.Warn().Err(err).Str("source", source).Msg("analysis failed, using fallback draft")
	pr.emit(StepFallback, source, "Generating a default draft")
	return &types.PipelineOutcome{
		Draft:    fallback.Synthesize(items, p.now()),
		Advisory: AdvisoryFallback,
	}
}

func (p *Pipeline) both(ctx context.Context, links []string, fileItems []types.SourceItem, pr *progress) (*types.PipelineOutcome, error) {
	var (
		linkItems            []types.SourceItem
		linkDraft, fileDraft *types.DraftRecord
		linkErr, fileErr     error
	)

	// Branch errors are kept, not returned, so one failing branch never cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		pr.emit(StepExtract, "links", "Fetching links")
		linkItems = p.extractLinks(ctx, links)
		pr.emit(StepAnalyze, "links", "Analyzing links")
		linkDraft, linkErr = p.analyze(ctx, linkItems)
		return nil
	})
	g.Go(func() error {
		pr.emit(StepAnalyze, "files", "Analyzing files")
		fileDraft, fileErr = p.analyze(ctx, fileItems)
		return nil
	})
	_ = g.Wait()

	switch {
	case linkErr == nil && fileErr == nil:
		pr.emit(StepCombine, "", "Combining drafts")
		return p.combiner().Combine(ctx, linkDraft, fileDraft)
	case fileErr == nil:
		log.Warn().Err(linkErr).Msg("link analysis failed, using file draft only")
		return &types.PipelineOutcome{Draft: fileDraft, Advisory: AdvisoryLinksFailed}, nil
	case linkErr == nil:
		log.Warn().Err(fileErr).Msg("file analysis failed, using link draft only")
		return &types.PipelineOutcome{Draft: linkDraft, Advisory: AdvisoryFilesFailed}, nil
	}

	log.Warn().AnErr("links", linkErr).AnErr("files", fileErr).Msg("all analyses failed, using fallback drafts")
	pr.emit(StepFallback, "", "Generating a default draft")
	now := p.now()
	return &types.PipelineOutcome{
		Draft:    combine.Merge(fallback.ForLinks(linkItems, now), fallback.ForFiles(fileItems, now), now),
		Advisory: AdvisoryAllFailed,
	}, nil
}

func (p *Pipeline) analyze(ctx context.Context, items []types.SourceItem) (*types.DraftRecord, error) {
	if p.Client == nil {
		return nil, &parsing.AnalysisError{Cause: &parsing.APICallError{Message: "no model client configured"}}
	}
	return parsing.AnalyzeSources(ctx, p.Client, items, parsing.Options{Tier: p.Tier, Now: p.Now})
}

func (p *Pipeline) extractLinks(ctx context.Context, links []string) []types.SourceItem {
	source := p.Links
	if source == nil {
		source = ingestion.NewLinkExtractor(nil, nil)
	}
	return source.ExtractLinks(ctx, links)
}

func (p *Pipeline) combiner() *combine.Combiner {
	if p.Combiner != nil {
		return p.Combiner
	}
	c := combine.New(p.Client)
	c.Now = p.Now
	return c
}

func cleanLinks(links []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
