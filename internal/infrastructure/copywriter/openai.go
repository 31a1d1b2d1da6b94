// Package copywriter generates AI-written email copy. It is strictly
// optional: draft generation falls back to template composition when the
// copywriter is disabled or errors.
package copywriter

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pickpost/backend/internal/domain"
)

// Compile-time interface guard.
var _ domain.CopyWriter = (*OpenAIWriter)(nil)

const systemPrompt = `You write short, friendly outbound emails recommending products to a customer.
Rules:
- Plain text only, no markdown, no subject line.
- Open with a greeting using the customer's first name.
- Mention each recommended product once, with its price when given.
- Do not invent products, prices, or discounts.
- Close with the sender's name.
- Keep it under 120 words.`

// OpenAIWriter produces email bodies with an OpenAI chat completion.
type OpenAIWriter struct {
	client *openai.Client
	model  string
}

// NewOpenAIWriter creates a writer with the given API key and model.
// An empty model falls back to gpt-4o-mini.
func NewOpenAIWriter(apiKey, model string) *OpenAIWriter {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIWriter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// WriteBody asks the model for a personalized plain-text body for one
// customer and their recommendations.
func (w *OpenAIWriter) WriteBody(ctx context.Context, customer domain.Customer, recs []domain.Recommendation, senderName string) (string, error) {
	resp, err := w.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: w.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(customer, recs, senderName)},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildUserPrompt lays out the customer and their recommendations as the
// model's only source of facts.
func buildUserPrompt(customer domain.Customer, recs []domain.Recommendation, senderName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Customer: %s\n", customer.Name)
	if customer.PreferredCategory != "" {
		fmt.Fprintf(&sb, "Stated interest: %s\n", customer.PreferredCategory)
	}
	fmt.Fprintf(&sb, "Sender: %s\n", senderName)

	if len(recs) == 0 {
		sb.WriteString("Recommended products: none this time; apologize briefly and promise better picks soon.\n")
		return sb.String()
	}

	sb.WriteString("Recommended products:\n")
	for _, r := range recs {
		fmt.Fprintf(&sb, "- %s", r.Name)
		if r.Price != nil {
			fmt.Fprintf(&sb, " (£%.2f)", *r.Price)
		}
		if r.URL != "" {
			fmt.Fprintf(&sb, " %s", r.URL)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
