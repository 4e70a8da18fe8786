package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codeforge/internal/domain"
	domainllm "codeforge/internal/domain/services/llm"
	"codeforge/internal/metrics"
)

// ProviderResolver returns the adapter for a provider name. *ProviderRegistry implements it.
type ProviderResolver interface {
	GetProvider(provider string) (domainllm.LLMProvider, error)
}

// Generator routes completion requests to the provider named by the model string.
type Generator struct {
	providers    ProviderResolver
	defaultModel string
	logger       *slog.Logger
}

// NewGenerator creates a generator. defaultModel is used when a request names no model.
func NewGenerator(providers ProviderResolver, defaultModel string, logger *slog.Logger) *Generator {
	return &Generator{
		providers:    providers,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// Generate runs one completion. Provider failures wrap domain.ErrUpstream.
func (g *Generator) Generate(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	modelStr := req.Model
	if modelStr == "" {
		modelStr = g.defaultModel
	}

	info, err := ParseModel(modelStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	provider, err := g.providers.GetProvider(info.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	routed := *req
	routed.Model = info.Model

	start := time.Now()
	resp, err := provider.GenerateResponse(ctx, &routed)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordLLMRequest(info.Provider, elapsed, 0, 0, false)
		g.logger.Error("completion failed",
			"provider", info.Provider,
			"model", info.Model,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, info.Provider, err)
	}

	metrics.RecordLLMRequest(info.Provider, elapsed, resp.InputTokens, resp.OutputTokens, true)
	g.logger.Debug("completion finished",
		"provider", info.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"stop_reason", resp.StopReason,
		"duration_ms", elapsed.Milliseconds(),
	)

	if resp.Provider == "" {
		resp.Provider = info.Provider
	}
	return resp, nil
}
