package llm

import (
	"fmt"
	"sync"

	llmprovider "github.com/haowjy/meridian-llm-go"

	domainllm "codeforge/internal/domain/services/llm"
)

// LibraryProviderSource creates library providers by name. *ProviderFactory implements it.
type LibraryProviderSource interface {
	GetProvider(providerName string) (llmprovider.Provider, error)
}

// ProviderRegistry creates provider adapters on first use and caches them.
type ProviderRegistry struct {
	factory        LibraryProviderSource
	adapterFactory AdapterFactory
	cache          map[string]domainllm.LLMProvider
	mu             sync.RWMutex
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry(factory LibraryProviderSource, adapterFactory AdapterFactory) *ProviderRegistry {
	return &ProviderRegistry{
		factory:        factory,
		adapterFactory: adapterFactory,
		cache:          make(map[string]domainllm.LLMProvider),
	}
}

// GetProvider returns the provider adapter for the given provider name.
func (r *ProviderRegistry) GetProvider(provider string) (domainllm.LLMProvider, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}

	// Fast path: cache hit under read lock
	r.mu.RLock()
	if cached, exists := r.cache[provider]; exists {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have created the provider while we waited for the lock
	if cached, exists := r.cache[provider]; exists {
		return cached, nil
	}

	libraryProvider, err := r.factory.GetProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider '%s': %w", provider, err)
	}

	adapter, err := r.adapterFactory.CreateAdapter(provider, libraryProvider)
	if err != nil {
		return nil, err
	}

	r.cache[provider] = adapter
	return adapter, nil
}

// Validate checks if the factories are configured.
// Should be called at startup to fail fast if misconfigured.
func (r *ProviderRegistry) Validate() error {
	if r.factory == nil {
		return fmt.Errorf("provider factory is not configured")
	}
	if r.adapterFactory == nil {
		return fmt.Errorf("adapter factory is not configured")
	}
	return nil
}
