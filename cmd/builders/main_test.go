package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swzro/builders/internal/pipeline"
	"github.com/swzro/builders/internal/types"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFileInputs(t *testing.T) {
	md := writeTemp(t, "launch_plan.md", "# Launch\n\nShip it.")
	txt := writeTemp(t, "notes.txt", "plain notes")

	files, err := readFileInputs([]string{md, txt})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "launch_plan.md", files[0].Name)
	assert.Equal(t, "# Launch\n\nShip it.", files[0].Content)
	assert.Equal(t, "notes.txt", files[1].Name)
	assert.Contains(t, files[1].DeclaredType, "text/plain")

	_, err = readFileInputs([]string{filepath.Join(t.TempDir(), "missing.md")})
	assert.Error(t, err)
}

func TestAnalyze_Offline(t *testing.T) {
	files, err := readFileInputs([]string{writeTemp(t, "launch_plan.md", "# Launch\n\nShip it.")})
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	err = analyze(context.Background(), pipeline.New(nil, nil), pipeline.Input{Files: files}, true, &stdout, &stderr)
	require.NoError(t, err)

	var outcome types.PipelineOutcome
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &outcome))
	assert.Equal(t, "Launch Plan", outcome.Draft.Title)
	assert.Equal(t, pipeline.AdvisoryFallback, outcome.Advisory)

	assert.Contains(t, stderr.String(), "SOURCES")
	assert.Contains(t, stderr.String(), "[fallback/files]")
	assert.Contains(t, stderr.String(), "DRAFT")
}

func TestAnalyze_NoSources(t *testing.T) {
	var stdout bytes.Buffer
	err := analyze(context.Background(), pipeline.New(nil, nil), pipeline.Input{}, false, &stdout, &stdout)

	assert.ErrorIs(t, err, pipeline.ErrNoSources)
	assert.Empty(t, stdout.String())
}

func TestReadDraft(t *testing.T) {
	bare := writeTemp(t, "a.json", `{"title": "A", "category": "project", "durationStart": "2024-01-01", "tags": ["go"]}`)
	wrapped := writeTemp(t, "b.json", `{"draft": {"title": "B", "category": "other", "durationStart": "2024-02-01"}, "advisory": "x"}`)
	broken := writeTemp(t, "c.json", `{"title": `)

	a, err := readDraft(bare)
	require.NoError(t, err)
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, []string{"go"}, a.Tags)

	b, err := readDraft(wrapped)
	require.NoError(t, err)
	assert.Equal(t, "B", b.Title)

	_, err = readDraft(broken)
	assert.Error(t, err)
}
