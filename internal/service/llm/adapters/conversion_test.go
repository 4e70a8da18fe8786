package adapters

import (
	"testing"

	llmprovider "github.com/haowjy/meridian-llm-go"

	domainllm "codeforge/internal/domain/services/llm"
)

func TestToLibraryRequest(t *testing.T) {
	req := &domainllm.GenerateRequest{
		Model: "claude-3-5-sonnet-20241022",
		Messages: []domainllm.Message{
			domainllm.UserMessage("first"),
			{Role: "assistant", Text: "second"},
		},
		Params: &domainllm.RequestParams{
			MaxTokens:   domainllm.Int(200),
			Temperature: domainllm.Float(0.7),
			System:      domainllm.String("be terse"),
		},
	}

	got := toLibraryRequest(req)

	if got.Model != req.Model {
		t.Errorf("Model = %s, want %s", got.Model, req.Model)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	for i, want := range []struct{ role, text string }{{"user", "first"}, {"assistant", "second"}} {
		msg := got.Messages[i]
		if msg.Role != want.role {
			t.Errorf("message %d role = %s, want %s", i, msg.Role, want.role)
		}
		if len(msg.Blocks) != 1 || msg.Blocks[0].BlockType != "text" || *msg.Blocks[0].TextContent != want.text {
			t.Errorf("message %d blocks = %+v, want one text block %q", i, msg.Blocks, want.text)
		}
	}
	if *got.Params.MaxTokens != 200 || *got.Params.Temperature != 0.7 || *got.Params.System != "be terse" {
		t.Errorf("params not carried over: %+v", got.Params)
	}
}

func TestToLibraryRequest_NilParams(t *testing.T) {
	got := toLibraryRequest(&domainllm.GenerateRequest{Model: "lorem-fast"})
	if got.Params != nil {
		t.Errorf("Params = %+v, want nil", got.Params)
	}
}

func TestFromLibraryResponse(t *testing.T) {
	hello, world := "Hello, ", "world"
	resp := &llmprovider.GenerateResponse{
		Blocks: []*llmprovider.Block{
			{BlockType: "text", Sequence: 0, TextContent: &hello},
			{BlockType: "thinking", Sequence: 1, TextContent: &world},
			nil,
			{BlockType: "text", Sequence: 2, TextContent: &world},
		},
		Model:        "claude-3-5-sonnet-20241022",
		InputTokens:  12,
		OutputTokens: 3,
		StopReason:   "end_turn",
	}

	got := fromLibraryResponse(resp)

	if got.Text != "Hello, world" {
		t.Errorf("Text = %q, want %q", got.Text, "Hello, world")
	}
	if got.InputTokens != 12 || got.OutputTokens != 3 || got.StopReason != "end_turn" {
		t.Errorf("usage not carried over: %+v", got)
	}
}
