package service_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/briefer/application/service"
)

func writePrompts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPrompts_EmptyPathUsesDefaults(t *testing.T) {
	prompts, err := service.LoadPrompts("")
	require.NoError(t, err)

	assert.Equal(t, 500, prompts.Summarize.MaxTokens())
	assert.InDelta(t, 0.7, prompts.Summarize.Temperature(), 1e-9)
	assert.Equal(t, 300, prompts.Icebreaker.MaxTokens())
	assert.InDelta(t, 0.8, prompts.Icebreaker.Temperature(), 1e-9)
}

func TestLoadPrompts_OverrideKeepsMissingKeys(t *testing.T) {
	path := writePrompts(t, `
summarize:
  user: "Summarise in bullet points:\n{{ .Text }}"
`)

	prompts, err := service.LoadPrompts(path)
	require.NoError(t, err)

	req, err := prompts.Summarize.Request(struct{ Text string }{Text: "notes"})
	require.NoError(t, err)

	msgs := req.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "You are an AI assistant that summarizes transcripts.", msgs[0].Content())
	assert.Equal(t, "Summarise in bullet points:\nnotes", msgs[1].Content())
	assert.Equal(t, 500, req.MaxTokens())
	assert.Equal(t, 300, prompts.Icebreaker.MaxTokens())
}

func TestLoadPrompts_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "summarize: [unclosed"},
		{"bad template", "icebreaker:\n  user: \"{{ .LinkedInBio \"\n"},
		{"blank template", "summarize:\n  user: \"  \"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.LoadPrompts(writePrompts(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	_, err := service.LoadPrompts(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
