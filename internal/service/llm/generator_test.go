package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/lorem"

	"codeforge/internal/domain"
	domainllm "codeforge/internal/domain/services/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider records the last request it served
type fakeProvider struct {
	name string
	resp *domainllm.GenerateResponse
	err  error

	mu   sync.Mutex
	last *domainllm.GenerateRequest
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) SupportsModel(_ string) bool { return true }

func (p *fakeProvider) GenerateResponse(_ context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	p.mu.Lock()
	p.last = req
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	out := *p.resp
	return &out, nil
}

type fakeResolver map[string]domainllm.LLMProvider

func (r fakeResolver) GetProvider(name string) (domainllm.LLMProvider, error) {
	p, ok := r[name]
	if !ok {
		return nil, errors.New("no such provider")
	}
	return p, nil
}

func TestGenerator_RoutesByModel(t *testing.T) {
	anthropicFake := &fakeProvider{name: "anthropic", resp: &domainllm.GenerateResponse{Text: "react"}}
	loremFake := &fakeProvider{name: "lorem", resp: &domainllm.GenerateResponse{Text: "lorem"}}
	g := NewGenerator(fakeResolver{"anthropic": anthropicFake, "lorem": loremFake}, "claude-3-5-sonnet-20241022", discardLogger())

	tests := []struct {
		name      string
		model     string
		wantText  string
		wantModel string
		provider  *fakeProvider
	}{
		{name: "default model", model: "", wantText: "react", wantModel: "claude-3-5-sonnet-20241022", provider: anthropicFake},
		{name: "inferred lorem", model: "lorem-fast", wantText: "lorem", wantModel: "lorem-fast", provider: loremFake},
		{name: "explicit provider", model: "anthropic/claude-haiku-4-5", wantText: "react", wantModel: "claude-haiku-4-5", provider: anthropicFake},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := g.Generate(context.Background(), &domainllm.GenerateRequest{
				Model:    tt.model,
				Messages: []domainllm.Message{domainllm.UserMessage("hi")},
			})
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if resp.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", resp.Text, tt.wantText)
			}
			if tt.provider.last.Model != tt.wantModel {
				t.Errorf("provider saw model %q, want %q", tt.provider.last.Model, tt.wantModel)
			}
			if resp.Provider != tt.provider.name {
				t.Errorf("Provider = %q, want %q", resp.Provider, tt.provider.name)
			}
		})
	}
}

func TestGenerator_Errors(t *testing.T) {
	failing := &fakeProvider{name: "anthropic", err: errors.New("overloaded")}
	g := NewGenerator(fakeResolver{"anthropic": failing}, "claude-3-5-sonnet-20241022", discardLogger())

	tests := []struct {
		name    string
		model   string
		wantErr error
	}{
		{name: "unparseable model", model: "mystery-1", wantErr: domain.ErrValidation},
		{name: "unknown provider", model: "openai/gpt-4", wantErr: domain.ErrUpstream},
		{name: "provider failure", model: "claude-3-5-sonnet-20241022", wantErr: domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(context.Background(), &domainllm.GenerateRequest{Model: tt.model})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// countingSource counts provider creations
type countingSource struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSource) GetProvider(name string) (llmprovider.Provider, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if name != "lorem" {
		return nil, errors.New("unsupported")
	}
	return lorem.NewProvider(), nil
}

func TestProviderRegistry_CachesAdapters(t *testing.T) {
	source := &countingSource{}
	registry := NewProviderRegistry(source, NewDefaultAdapterFactory())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := registry.GetProvider("lorem"); err != nil {
				t.Errorf("GetProvider() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if source.calls != 1 {
		t.Errorf("provider created %d times, want 1", source.calls)
	}

	if _, err := registry.GetProvider(""); err == nil {
		t.Error("expected error for empty provider")
	}
	if _, err := registry.GetProvider("bedrock"); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
