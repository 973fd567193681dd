package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clausehub/clausehub/internal/domain"
	"github.com/clausehub/clausehub/internal/domain/clause"
)

const summarySystemPrompt = "You are a legal research assistant. Summarize the retrieved " +
	"contract clauses as they relate to the user's question. Ground every statement in the " +
	"provided excerpts, cite clauses by their heading, and say so explicitly when the " +
	"excerpts do not answer the question."

// Summarizer generates a grounded summary of the final result set via
// an OpenAI-compatible chat completion API.
type Summarizer struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// SummarizerConfig holds the summary provider settings.
type SummarizerConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// NewSummarizer creates a chat-completion summarizer.
func NewSummarizer(cfg *SummarizerConfig) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Summarizer{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Summarize produces a short answer grounded in the given hits.
func (s *Summarizer) Summarize(ctx context.Context, query string, hits []*clause.Hit) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0, // deterministic for a fixed model version
		MaxTokens:   s.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildSummaryPrompt(query, hits)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSummaryFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion response", domain.ErrSummaryFailure)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildSummaryPrompt(query string, hits []*clause.Hit) string {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nRetrieved clauses:\n")
	for i, h := range hits {
		fmt.Fprintf(&sb, "[%d] %s (%s / %s)\n%s\n\n", i+1, h.Heading, h.ContractID, h.ClauseID, h.TextSnippet)
	}
	return sb.String()
}
