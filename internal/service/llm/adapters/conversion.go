package adapters

import (
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"

	domainllm "codeforge/internal/domain/services/llm"
)

const blockTypeText = "text"

// toLibraryRequest converts a text-only request to the library's block form
func toLibraryRequest(req *domainllm.GenerateRequest) *llmprovider.GenerateRequest {
	messages := make([]llmprovider.Message, len(req.Messages))
	for i, msg := range req.Messages {
		text := msg.Text
		messages[i] = llmprovider.Message{
			Role: msg.Role,
			Blocks: []*llmprovider.Block{
				{
					BlockType:   blockTypeText,
					Sequence:    0,
					TextContent: &text,
				},
			},
		}
	}

	return &llmprovider.GenerateRequest{
		Messages: messages,
		Model:    req.Model,
		Params:   toLibraryParams(req.Params),
	}
}

// toLibraryParams converts request params; nil stays nil so the library applies its defaults
func toLibraryParams(params *domainllm.RequestParams) *llmprovider.RequestParams {
	if params == nil {
		return nil
	}

	return &llmprovider.RequestParams{
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		System:      params.System,
	}
}

// fromLibraryResponse joins the text blocks of a library response in sequence order
func fromLibraryResponse(resp *llmprovider.GenerateResponse) *domainllm.GenerateResponse {
	var sb strings.Builder
	for _, block := range resp.Blocks {
		if block == nil || block.BlockType != blockTypeText || block.TextContent == nil {
			continue
		}
		sb.WriteString(*block.TextContent)
	}

	return &domainllm.GenerateResponse{
		Text:         sb.String(),
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		StopReason:   resp.StopReason,
	}
}
