package parsing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swzro/builders/internal/llm"
	"github.com/swzro/builders/internal/types"
)

type fakeClient struct {
	response string
	err      error
	got      llm.Request
	calls    int
}

func (f *fakeClient) Complete(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	f.got = req
	return f.response, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }

var fixedNow = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

var sampleItems = []types.SourceItem{
	{Kind: types.SourceLink, Provenance: "https://github.com/acme/todo-api", DetectedType: types.TypeCodeHost, Text: "A REST API for todos written in Go."},
	{Kind: types.SourceLink, Provenance: "https://example.com/demo", DetectedType: types.TypeGenericWebsite, Text: "Live demo."},
}

func TestBuildAnalysisPrompt(t *testing.T) {
	prompt := BuildAnalysisPrompt(sampleItems, fixedNow)

	assert.Contains(t, prompt, "2024-06-10")
	assert.Contains(t, prompt, "[Link 1] https://github.com/acme/todo-api (type: code-host)")
	assert.Contains(t, prompt, "A REST API for todos written in Go.")
	assert.Contains(t, prompt, "[Link 2] https://example.com/demo (type: generic-website)")
	assert.Contains(t, prompt, "Respond with JSON only")
	assert.Contains(t, prompt, "external-activity, internship, award, project, club, certificate, education, other")
	for _, field := range DraftSchema().FieldNames() {
		assert.Contains(t, prompt, `"`+field+`"`)
	}
	assert.NotContains(t, prompt, "{{.")
}

func TestDraftSchema_NineFields(t *testing.T) {
	assert.Equal(t, []string{
		"title", "description", "role", "durationStart", "durationEnd",
		"lesson", "outcomes", "category", "tags",
	}, DraftSchema().FieldNames())
}

func TestAnalyzeSources_Success(t *testing.T) {
	client := &fakeClient{response: "Here you go:\n```json\n" + `{
		"title": "Todo API",
		"description": "A REST API for managing todos.",
		"role": "Sole developer",
		"durationStart": "2024-01-05",
		"durationEnd": "",
		"lesson": "Learned {braces} in strings",
		"outcomes": "Deployed",
		"category": "Projects",
		"tags": ["go", " api ", "go", "rest", "docker", "postgres", "ci"]
	}` + "\n```"}

	draft, err := AnalyzeSources(context.Background(), client, sampleItems, Options{Now: clock})
	require.NoError(t, err)

	assert.Equal(t, "Todo API", draft.Title)
	assert.Equal(t, "Sole developer", draft.Role)
	assert.Equal(t, "Learned {braces} in strings", draft.Lesson)
	assert.Equal(t, types.CategoryProject, draft.Category)
	assert.Equal(t, "2024-01-05", draft.DurationStart)
	assert.Nil(t, draft.DurationEnd)
	assert.Equal(t, []string{"go", "api", "rest", "docker", "postgres"}, draft.Tags)
	assert.Equal(t, []string{"https://github.com/acme/todo-api", "https://example.com/demo"}, draft.SourceURLs)
	assert.True(t, draft.AIGenerated)
	assert.True(t, draft.IsPublic)

	assert.True(t, client.got.JSON)
	assert.NotEmpty(t, client.got.System)
	assert.Equal(t, llm.TierStandard, client.got.Tier)
	assert.Equal(t, 1, client.calls)
}

func TestAnalyzeSources_DefaultsMissingFields(t *testing.T) {
	client := &fakeClient{response: `{"description": "", "category": "hobby", "durationStart": "last spring", "durationEnd": "2024-05-01", "tags": "go"}`}

	draft, err := AnalyzeSources(context.Background(), client, sampleItems, Options{Now: clock})
	require.NoError(t, err)

	assert.Equal(t, "Todo Api", draft.Title)
	assert.NotEmpty(t, draft.Description)
	assert.Equal(t, types.CategoryProject, draft.Category)
	assert.Equal(t, "2024-03-10", draft.DurationStart)
	require.NotNil(t, draft.DurationEnd)
	assert.Equal(t, "2024-05-01", *draft.DurationEnd)
	assert.Equal(t, []string{}, draft.Tags)
}

func TestAnalyzeSources_Failures(t *testing.T) {
	tests := []struct {
		name      string
		client    *fakeClient
		wantParse bool
		wantAPI   bool
	}{
		{
			name:    "provider error",
			client:  &fakeClient{err: errors.New("quota exceeded for key sk-secret")},
			wantAPI: true,
		},
		{
			name:      "no JSON object",
			client:    &fakeClient{response: "I could not analyze these sources."},
			wantParse: true,
		},
		{
			name:      "malformed JSON object",
			client:    &fakeClient{response: `{"title": }`},
			wantParse: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := AnalyzeSources(context.Background(), tt.client, sampleItems, Options{Now: clock})
			require.Error(t, err)
			assert.Nil(t, draft)

			assert.ErrorIs(t, err, ErrAnalysisFailed)
			assert.Equal(t, "analysis failed", err.Error())
			assert.False(t, strings.Contains(err.Error(), "sk-secret"))

			var parseErr *ParseError
			assert.Equal(t, tt.wantParse, errors.As(err, &parseErr))
			var apiErr *APICallError
			assert.Equal(t, tt.wantAPI, errors.As(err, &apiErr))
		})
	}
}

func TestDecodeDraft_NilDefaults(t *testing.T) {
	draft, err := DecodeDraft(`{"title": "T"}`, nil)
	require.NoError(t, err)

	assert.Equal(t, "T", draft.Title)
	assert.Equal(t, types.CategoryOther, draft.Category)
}

func TestDecodeDraft_KeepsDefaultsForMissingFields(t *testing.T) {
	defaults := &types.DraftRecord{
		Title:         "Fallback title",
		Description:   "Fallback description.",
		Category:      types.CategoryAward,
		DurationStart: "2024-01-01",
	}

	draft, err := DecodeDraft(`{"title": "Merged", "category": "project", "durationStart": "soon"}`, defaults)
	require.NoError(t, err)

	assert.Equal(t, "Merged", draft.Title)
	assert.Equal(t, "Fallback description.", draft.Description)
	assert.Equal(t, types.CategoryProject, draft.Category)
	assert.Equal(t, "2024-01-01", draft.DurationStart)
}

func TestMissingFields(t *testing.T) {
	missing := missingFields(map[string]any{"title": "T", "description": "D", "tags": []any{}})

	assert.Equal(t, []string{"role", "durationStart", "durationEnd", "lesson", "outcomes", "category"}, missing)
	assert.Empty(t, missingFields(map[string]any{
		"title": "", "description": "", "role": nil, "durationStart": "", "durationEnd": nil,
		"lesson": nil, "outcomes": nil, "category": "", "tags": nil,
	}))
}
