package service

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/helixml/briefer/infrastructure/provider"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// PromptSpec is one prompt as written in YAML.
type PromptSpec struct {
	System      string  `yaml:"system"`
	User        string  `yaml:"user"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type promptFile struct {
	Summarize  PromptSpec `yaml:"summarize"`
	Icebreaker PromptSpec `yaml:"icebreaker"`
}

// Prompt is a compiled prompt template with its generation parameters.
type Prompt struct {
	name        string
	system      string
	user        *template.Template
	maxTokens   int
	temperature float64
}

// Request renders the user template with data.
func (p Prompt) Request(data any) (provider.ChatCompletionRequest, error) {
	var b strings.Builder
	if err := p.user.Execute(&b, data); err != nil {
		return provider.ChatCompletionRequest{}, fmt.Errorf("render %s prompt: %w", p.name, err)
	}

	messages := make([]provider.Message, 0, 2)
	if p.system != "" {
		messages = append(messages, provider.SystemMessage(p.system))
	}
	messages = append(messages, provider.UserMessage(b.String()))

	return provider.NewChatCompletionRequest(messages...).
		WithMaxTokens(p.maxTokens).
		WithTemperature(p.temperature), nil
}

// MaxTokens returns the output token bound.
func (p Prompt) MaxTokens() int { return p.maxTokens }

// Temperature returns the sampling temperature.
func (p Prompt) Temperature() float64 { return p.temperature }

// Prompts holds the compiled templates the Generator uses.
type Prompts struct {
	Summarize  Prompt
	Icebreaker Prompt
}

// DefaultPrompts returns the embedded prompt set.
func DefaultPrompts() Prompts {
	p, err := parsePrompts(nil)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts: %v", err))
	}
	return p
}

// LoadPrompts reads path over the embedded defaults. Keys missing from the
// file keep their default values. An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	if path == "" {
		return DefaultPrompts(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return Prompts{}, fmt.Errorf("read prompts: %w", err)
	}
	return parsePrompts(data)
}

func parsePrompts(override []byte) (Prompts, error) {
	var file promptFile
	if err := yaml.Unmarshal(defaultPrompts, &file); err != nil {
		return Prompts{}, fmt.Errorf("parse default prompts: %w", err)
	}
	if len(override) > 0 {
		if err := yaml.Unmarshal(override, &file); err != nil {
			return Prompts{}, fmt.Errorf("parse prompts: %w", err)
		}
	}

	summarize, err := compile("summarize", file.Summarize)
	if err != nil {
		return Prompts{}, err
	}
	icebreaker, err := compile("icebreaker", file.Icebreaker)
	if err != nil {
		return Prompts{}, err
	}
	return Prompts{Summarize: summarize, Icebreaker: icebreaker}, nil
}

func compile(name string, spec PromptSpec) (Prompt, error) {
	if strings.TrimSpace(spec.User) == "" {
		return Prompt{}, fmt.Errorf("%s prompt: user template is empty", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(spec.User)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s prompt: %w", name, err)
	}
	return Prompt{
		name:        name,
		system:      spec.System,
		user:        tmpl,
		maxTokens:   spec.MaxTokens,
		temperature: spec.Temperature,
	}, nil
}
