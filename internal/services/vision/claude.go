package vision

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type claudeProvider struct {
	client      anthropic.Client
	model       string
	temperature float32
	maxTokens   int
}

func newClaudeProvider(apiKey, model string, temperature float32, maxTokens int) *claudeProvider {
	return &claudeProvider{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (p *claudeProvider) generate(ctx context.Context, req *imageRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(req.MimeType, base64.StdEncoding.EncodeToString(req.Data)),
				anthropic.NewTextBlock(req.Prompt),
			),
		},
	}
	if p.temperature > 0 {
		params.Temperature = anthropic.Float(float64(p.temperature))
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	// First text block only
	for _, block := range resp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", nil
}

func (p *claudeProvider) name() string {
	return "claude/" + p.model
}

func (p *claudeProvider) close() error {
	return nil
}
