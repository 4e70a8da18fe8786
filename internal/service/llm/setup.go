package llm

import (
	"fmt"
	"log/slog"

	"codeforge/internal/config"
)

// SetupProviders initializes the provider factory and registry for routing.
func SetupProviders(cfg *config.Config, logger *slog.Logger) (*ProviderRegistry, error) {
	registry := NewProviderRegistry(NewProviderFactory(cfg), NewDefaultAdapterFactory())

	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("provider registry validation failed: %w", err)
	}

	if cfg.AnthropicAPIKey != "" {
		logger.Info("provider available", "name", "anthropic", "models", "claude-*")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set - Anthropic provider not available")
	}
	if cfg.OpenRouterAPIKey != "" {
		logger.Info("provider available", "name", "openrouter", "models", "openrouter/*")
	}
	logger.Info("provider available", "name", "lorem", "models", "lorem-*")

	for _, model := range []string{cfg.DefaultModel, cfg.ClassifyModel} {
		if _, err := ParseModel(model); err != nil {
			return nil, fmt.Errorf("invalid model %q: %w", model, err)
		}
	}

	logger.Info("provider registry initialized",
		"default_model", cfg.DefaultModel,
		"classify_model", cfg.ClassifyModel,
	)

	return registry, nil
}

// SetupGenerator builds the generator used by the builder services.
func SetupGenerator(cfg *config.Config, logger *slog.Logger) (*Generator, error) {
	registry, err := SetupProviders(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewGenerator(registry, cfg.DefaultModel, logger), nil
}
