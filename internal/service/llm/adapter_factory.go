package llm

import (
	"fmt"

	llmprovider "github.com/haowjy/meridian-llm-go"

	domainllm "codeforge/internal/domain/services/llm"
	"codeforge/internal/service/llm/adapters"
)

// AdapterFactory creates provider adapters by name.
type AdapterFactory interface {
	CreateAdapter(providerName string, libraryProvider llmprovider.Provider) (domainllm.LLMProvider, error)
}

// AdapterCreatorFunc is a function type that creates an adapter from a library provider.
type AdapterCreatorFunc func(llmprovider.Provider) domainllm.LLMProvider

// DefaultAdapterFactory implements AdapterFactory with a registry of adapter creators.
type DefaultAdapterFactory struct {
	creators map[string]AdapterCreatorFunc
}

// NewDefaultAdapterFactory creates a new adapter factory with the supported providers registered.
func NewDefaultAdapterFactory() *DefaultAdapterFactory {
	factory := &DefaultAdapterFactory{
		creators: make(map[string]AdapterCreatorFunc),
	}

	wrap := func(p llmprovider.Provider) domainllm.LLMProvider {
		return adapters.NewLibraryAdapter(p)
	}
	factory.Register("anthropic", wrap)
	factory.Register("openrouter", wrap)
	factory.Register("lorem", wrap)

	return factory
}

// Register adds a new adapter creator for a provider.
func (f *DefaultAdapterFactory) Register(providerName string, creator AdapterCreatorFunc) {
	f.creators[providerName] = creator
}

// CreateAdapter creates an adapter for the given provider.
func (f *DefaultAdapterFactory) CreateAdapter(providerName string, libraryProvider llmprovider.Provider) (domainllm.LLMProvider, error) {
	creator, exists := f.creators[providerName]
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s (supported: anthropic, openrouter, lorem)", providerName)
	}

	return creator(libraryProvider), nil
}
