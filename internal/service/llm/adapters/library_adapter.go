package adapters

import (
	"context"

	llmprovider "github.com/haowjy/meridian-llm-go"

	domainllm "codeforge/internal/domain/services/llm"
)

// LibraryAdapter wraps a provider from the LLM library and implements the
// backend's LLMProvider interface. It handles conversion between the
// text-only backend types and the library's block types.
type LibraryAdapter struct {
	provider llmprovider.Provider
}

// NewLibraryAdapter creates an adapter from an existing provider.
func NewLibraryAdapter(provider llmprovider.Provider) *LibraryAdapter {
	return &LibraryAdapter{
		provider: provider,
	}
}

// Name returns the provider name.
func (a *LibraryAdapter) Name() string {
	return a.provider.Name().String()
}

// SupportsModel returns true if this provider supports the given model.
func (a *LibraryAdapter) SupportsModel(model string) bool {
	return a.provider.SupportsModel(model)
}

// GenerateResponse runs one completion through the library provider.
func (a *LibraryAdapter) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	libResp, err := a.provider.GenerateResponse(ctx, toLibraryRequest(req))
	if err != nil {
		return nil, err
	}

	resp := fromLibraryResponse(libResp)
	resp.Provider = a.Name()
	return resp, nil
}
