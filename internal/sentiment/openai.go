package sentiment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIScorer scores sentiment through the Chat Completions API. The model
// is asked for a bare number in [-1, 1]; anything unparseable is an error
// for that call only.
type OpenAIScorer struct {
	client *openai.Client
	model  string
}

const scorePrompt = `Rate the sentiment of the following text on a scale from -1.0 (very negative) to 1.0 (very positive). Respond with only the number.

Text: %s`

// NewOpenAIScorer creates an OpenAI-backed scorer.
func NewOpenAIScorer(model, apiKey, baseURL string) (*OpenAIScorer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIScorer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

func (s *OpenAIScorer) Name() string { return "openai" }

func (s *OpenAIScorer) ModelVersion() string { return "openai/" + s.model }

// Score asks the model for a single number and clamps it into [-1, 1].
func (s *OpenAIScorer) Score(ctx context.Context, text string) (float64, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You rate sentiment. Respond with a single number between -1.0 and 1.0, nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(scorePrompt, text),
			},
		},
		MaxTokens:   8,
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("no response from OpenAI")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", raw, err)
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score, nil
}
