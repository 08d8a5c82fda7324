package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/devboard-api/internal/constants"
	"github.com/yukikurage/devboard-api/internal/models"
)

// TaskSuggestion is a task proposed from free text, not yet persisted.
type TaskSuggestion struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
}

// TaskSuggester extracts task suggestions from text.
type TaskSuggester interface {
	SuggestTasks(ctx context.Context, text string) ([]TaskSuggestion, error)
}

// AIService suggests tasks through the OpenAI chat completion API.
type AIService struct {
	client *openai.Client
	model  string
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// NewAIServiceWithConfig is used to point the client at another endpoint.
func NewAIServiceWithConfig(cfg openai.ClientConfig, model string) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

const suggestPrompt = `You extract actionable software tasks from text.

Return a JSON object of the form:
{"tasks": [{"title": "short imperative title", "description": "details", "priority": "LOW|MEDIUM|HIGH"}]}

Rules:
- At most %d tasks.
- Titles are at most %d characters.
- Use HIGH only for blocking or urgent work.
- Return {"tasks": []} when the text contains no tasks.
- Return JSON only.

Text:
%s`

// SuggestTasks asks the model for task suggestions in the text
func (s *AIService) SuggestTasks(ctx context.Context, text string) ([]TaskSuggestion, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(suggestPrompt, constants.MaxAISuggestedTasks, constants.MaxTitleLength, text),
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

func parseSuggestions(content string) ([]TaskSuggestion, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")

	var out struct {
		Tasks []TaskSuggestion `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return out.Tasks, nil
}
