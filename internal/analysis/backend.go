// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultModel is the model requested when none is configured.
const DefaultModel = "openchat"

// NewModel constructs the configured text-generation backend. apiKey is
// only used by the openai provider.
func NewModel(cfg types.ModelConfig, apiKey string) (llms.Model, error) {
	name := cfg.Name
	if name == "" {
		name = DefaultModel
	}

	switch cfg.Provider {
	case types.ProviderOllama, "":
		opts := []ollama.Option{ollama.WithModel(name)}
		if cfg.ServerURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("creating ollama client: %w", err)
		}
		return llm, nil

	case types.ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key in .secrets/openai-api-key")
		}
		opts := []openai.Option{openai.WithModel(name), openai.WithToken(apiKey)}
		if cfg.ServerURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.ServerURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("creating openai client: %w", err)
		}
		return llm, nil

	default:
		return nil, fmt.Errorf("unknown model provider %q (want ollama or openai)", cfg.Provider)
	}
}
