package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swzro/builders/internal/ingestion"
	"github.com/swzro/builders/internal/llm"
	"github.com/swzro/builders/internal/types"
)

var fixedNow = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

// routingClient answers link, file and merge prompts differently.
type routingClient struct {
	mu      sync.Mutex
	links   string
	files   string
	merge   string
	linkErr error
	fileErr error
	prompts []string
}

func (c *routingClient) Complete(_ context.Context, req llm.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, req.Prompt)

	switch {
	case strings.Contains(req.Prompt, "Draft A:"):
		return c.merge, nil
	case strings.Contains(req.Prompt, "[Link 1]"):
		return c.links, c.linkErr
	default:
		return c.files, c.fileErr
	}
}

func (c *routingClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (c *routingClient) Close() error { return nil }

func (c *routingClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

type staticLinks struct{}

func (staticLinks) ExtractLinks(_ context.Context, urls []string) []types.SourceItem {
	items := make([]types.SourceItem, len(urls))
	for i, u := range urls {
		items[i] = types.SourceItem{
			Kind:         types.SourceLink,
			Provenance:   u,
			DetectedType: ingestion.ClassifyLink(u),
			Text:         "page text for " + u,
		}
	}
	return items
}

const (
	linkJSON  = `{"title": "Todo API", "description": "From links.", "category": "project", "durationStart": "2024-01-01", "tags": ["go"]}`
	fileJSON  = `{"title": "Todo notes", "description": "From files.", "category": "other", "durationStart": "2023-12-01", "tags": ["notes"]}`
	mergeJSON = `{"title": "Todo platform", "description": "Merged.", "category": "project", "durationStart": "2023-12-01", "tags": ["go", "notes"]}`
)

var (
	repoLink  = "https://github.com/acme/todo-api"
	notesFile = types.FileInput{Name: "design_notes.md", Content: "# Notes\n\nWe chose Postgres.", DeclaredType: "text/markdown"}
)

func newPipeline(client llm.Client) *Pipeline {
	p := New(client, staticLinks{})
	p.Now = func() time.Time { return fixedNow }
	return p
}

func TestRun_Preconditions(t *testing.T) {
	client := &routingClient{}
	p := newPipeline(client)

	_, err := p.Run(context.Background(), Input{Links: []string{"  "}})
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = p.Run(context.Background(), Input{
		Links: []string{repoLink},
		Files: []types.FileInput{{Name: "photo.png", Content: "x", DeclaredType: "image/png"}},
	})
	var validationErr *ingestion.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "photo.png", validationErr.File)

	assert.Equal(t, 0, client.calls())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		in       Input
		wantErr  error
		wantFile string
	}{
		{name: "empty", in: Input{}, wantErr: ErrNoSources},
		{name: "blank links", in: Input{Links: []string{"", "  "}}, wantErr: ErrNoSources},
		{name: "link", in: Input{Links: []string{repoLink}}},
		{name: "text file", in: Input{Files: []types.FileInput{notesFile}}},
		{
			name:     "unsupported file after a valid one",
			in:       Input{Files: []types.FileInput{notesFile, {Name: "report.pdf", Content: "%PDF", DeclaredType: "application/pdf"}}},
			wantFile: "report.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantFile != "":
				var validationErr *ingestion.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.wantFile, validationErr.File)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestRun_SingleBatch(t *testing.T) {
	t.Run("files only", func(t *testing.T) {
		out, err := newPipeline(&routingClient{files: fileJSON}).Run(context.Background(), Input{Files: []types.FileInput{notesFile}})
		require.NoError(t, err)

		assert.Empty(t, out.Advisory)
		assert.Equal(t, "Todo notes", out.Draft.Title)
		assert.Equal(t, []string{}, out.Draft.SourceURLs)
	})

	t.Run("links only", func(t *testing.T) {
		out, err := newPipeline(&routingClient{links: linkJSON}).Run(context.Background(), Input{Links: []string{repoLink}})
		require.NoError(t, err)

		assert.Empty(t, out.Advisory)
		assert.Equal(t, "Todo API", out.Draft.Title)
		assert.Equal(t, []string{repoLink}, out.Draft.SourceURLs)
	})

	t.Run("analysis failure falls back", func(t *testing.T) {
		client := &routingClient{linkErr: errors.New("timeout")}
		out, err := newPipeline(client).Run(context.Background(), Input{Links: []string{repoLink}})
		require.NoError(t, err)

		assert.Equal(t, AdvisoryFallback, out.Advisory)
		assert.Equal(t, "Todo Api", out.Draft.Title)
		assert.Equal(t, types.CategoryProject, out.Draft.Category)
		assert.Equal(t, "2024-03-10", out.Draft.DurationStart)
		assert.Equal(t, 1, client.calls())
	})

	t.Run("service down with text files", func(t *testing.T) {
		client := &routingClient{fileErr: errors.New("service unavailable")}
		out, err := newPipeline(client).Run(context.Background(), Input{Files: []types.FileInput{
			{Name: "retro.txt", Content: "What went well.", DeclaredType: "text/plain"},
			{Name: "metrics.txt", Content: "Latency halved.", DeclaredType: "text/plain"},
		}})
		require.NoError(t, err)

		assert.Equal(t, AdvisoryFallback, out.Advisory)
		assert.Equal(t, types.CategoryProject, out.Draft.Category)
		assert.Equal(t, []string{"document", "text", "record", "project"}, out.Draft.Tags)
		assert.Equal(t, "2024-03-10", out.Draft.DurationStart)
		assert.Equal(t, 1, client.calls())
	})

	t.Run("no client falls back", func(t *testing.T) {
		out, err := newPipeline(nil).Run(context.Background(), Input{Files: []types.FileInput{notesFile}})
		require.NoError(t, err)

		assert.Equal(t, AdvisoryFallback, out.Advisory)
		assert.Equal(t, "Design Notes", out.Draft.Title)
	})
}

func TestRun_BothBatches(t *testing.T) {
	tests := []struct {
		name      string
		client    *routingClient
		title     string
		advisory  string
		wantCalls int
	}{
		{
			name:      "both succeed",
			client:    &routingClient{links: linkJSON, files: fileJSON, merge: mergeJSON},
			title:     "Todo platform",
			wantCalls: 3,
		},
		{
			name:      "links fail",
			client:    &routingClient{linkErr: errors.New("boom"), files: fileJSON},
			title:     "Todo notes",
			advisory:  AdvisoryLinksFailed,
			wantCalls: 2,
		},
		{
			name:      "files fail",
			client:    &routingClient{links: linkJSON, files: "not json"},
			title:     "Todo API",
			advisory:  AdvisoryFilesFailed,
			wantCalls: 2,
		},
		{
			name:      "both fail",
			client:    &routingClient{linkErr: errors.New("boom"), fileErr: errors.New("boom")},
			title:     "Todo Api",
			advisory:  AdvisoryAllFailed,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newPipeline(tt.client).Run(context.Background(), Input{
				Links: []string{repoLink},
				Files: []types.FileInput{notesFile},
			})
			require.NoError(t, err)

			assert.Equal(t, tt.title, out.Draft.Title)
			assert.Equal(t, tt.advisory, out.Advisory)
			assert.Equal(t, tt.wantCalls, tt.client.calls())
			assert.True(t, out.Draft.AIGenerated)
		})
	}
}

func TestRun_BothFailMergesFallbacks(t *testing.T) {
	client := &routingClient{linkErr: errors.New("boom"), fileErr: errors.New("boom")}
	out, err := newPipeline(client).Run(context.Background(), Input{
		Links: []string{repoLink},
		Files: []types.FileInput{notesFile},
	})
	require.NoError(t, err)

	d := out.Draft
	assert.Equal(t, types.CategoryProject, d.Category)
	assert.Equal(t, []string{repoLink}, d.SourceURLs)
	assert.Equal(t, []string{"development", "GitHub", "coding", "programming", "document"}, d.Tags)
	assert.Equal(t, "2024-03-10", d.DurationStart)
}

func TestRun_MergeResponseMissingRequiredFields(t *testing.T) {
	client := &routingClient{links: linkJSON, files: fileJSON, merge: `{"title": "Merged", "category": "project"}`}
	out, err := newPipeline(client).Run(context.Background(), Input{
		Links: []string{repoLink},
		Files: []types.FileInput{notesFile},
	})
	require.NoError(t, err)

	assert.Empty(t, out.Advisory)
	d := out.Draft
	assert.Equal(t, "Merged", d.Title)
	assert.Equal(t, "From links.\n\nFrom files.", d.Description)
	assert.Equal(t, types.CategoryProject, d.Category)
	assert.Equal(t, "2023-12-01", d.DurationStart)
	assert.Equal(t, []string{repoLink}, d.SourceURLs)
}

func TestRun_ProcessesMoreThanRecommendedSources(t *testing.T) {
	client := &routingClient{links: linkJSON}
	links := []string{repoLink, "https://example.com/a", "https://example.com/b", "https://example.com/c"}

	out, err := newPipeline(client).Run(context.Background(), Input{Links: links})
	require.NoError(t, err)

	assert.Equal(t, links, out.Draft.SourceURLs)
	assert.Contains(t, client.prompts[0], "[Link 4] https://example.com/c")
}

func TestRun_Progress(t *testing.T) {
	var steps []string
	client := &routingClient{links: linkJSON, files: fileJSON, merge: mergeJSON}

	_, err := newPipeline(client).Run(context.Background(), Input{
		Links:      []string{repoLink},
		Files:      []types.FileInput{notesFile},
		OnProgress: func(e ProgressEvent) { steps = append(steps, e.Step) },
	})
	require.NoError(t, err)

	assert.Contains(t, steps, StepExtract)
	assert.Contains(t, steps, StepAnalyze)
	assert.Equal(t, StepCombine, steps[len(steps)-1])
}

func TestCombineDrafts(t *testing.T) {
	a := &types.DraftRecord{Title: "A"}

	out, err := newPipeline(&routingClient{}).CombineDrafts(context.Background(), a, nil)
	require.NoError(t, err)
	assert.Same(t, a, out.Draft)

	_, err = newPipeline(&routingClient{}).CombineDrafts(context.Background(), nil, nil)
	assert.Error(t, err)
}
