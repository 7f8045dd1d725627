package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"voicebrowser/internal/application/port/output"
	"voicebrowser/internal/domain/entity"
)

var _ output.IntentPort = (*IntentAdapter)(nil)

const systemPrompt = `You are an expert intent parser that converts natural language voice commands into structured JSON instructions for browser automation.

Your task is to analyze voice transcriptions and convert them into precise, actionable browser commands.

Available command types:
1. NAVIGATE - Navigate to a URL
2. SEARCH - Search for something on a website
3. CLICK - Click on an element (button, link, etc.)
4. TYPE - Type text into an input field
5. EXTRACT - Extract data from the page
6. SCROLL - Scroll up/down on the page
7. PRESS - Press a keyboard key
8. WAIT - Wait for a specific condition
9. SCREENSHOT - Take a screenshot
10. DOWNLOAD - Download a file
11. UPLOAD - Upload a file

Response format (JSON):
{
    "intent": "COMMAND_TYPE",
    "confidence": 0.95,
    "parameters": {
        "target": "specific element or URL",
        "text": "text to type or search for",
        "selector": "CSS selector or description",
        "scope": "region of the page such as sidebar or header",
        "data_type": "type of data to extract",
        "key": "keyboard key name",
        "amount": 800
    },
    "context": "additional context or clarification needed",
    "follow_up": ["potential next steps or related commands"]
}

Examples:
- "Go to Google" -> {"intent": "NAVIGATE", "parameters": {"target": "https://google.com"}}
- "Search for Python tutorials" -> {"intent": "SEARCH", "parameters": {"text": "Python tutorials"}}
- "Click the login button" -> {"intent": "CLICK", "parameters": {"selector": "login button"}}
- "Type my email address" -> {"intent": "TYPE", "parameters": {"text": "user@example.com", "selector": "email input"}}
- "Extract all the links" -> {"intent": "EXTRACT", "parameters": {"data_type": "links"}}
- "Scroll down to see more results" -> {"intent": "SCROLL", "parameters": {"direction": "down"}}

Always respond with valid JSON only. If the command is unclear or ambiguous, set confidence low and provide context about what clarification is needed.`

// IntentAdapter turns voice transcripts into structured intents via a chat
// completion model. Calls are serialized through a weighted semaphore so
// concurrent commands cannot race the provider's rate limits.
type IntentAdapter struct {
	client *openai.Client
	model  string
	gate   *semaphore.Weighted
	log    *zap.Logger
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  *zap.Logger
}

func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey: apiKey,
		Model:  openai.GPT4TurboPreview,
	}
}

func NewIntentAdapter(cfg Config) *IntentAdapter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4TurboPreview
	}
	return &IntentAdapter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		gate:   semaphore.NewWeighted(1),
		log:    log.Named("intent"),
	}
}

// ParseIntent converts a single transcript into an intent. It never returns
// a transport error as a hard failure: anything that goes wrong becomes an
// ERROR intent with zero confidence, so the caller can narrate it.
func (a *IntentAdapter) ParseIntent(ctx context.Context, transcript string, extra map[string]any) (entity.Intent, error) {
	if err := a.gate.Acquire(ctx, 1); err != nil {
		return errorIntent(err), nil
	}
	defer a.gate.Release(1)

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Voice command: '%s'", transcript)},
	}
	messages = appendContext(messages, extra)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		a.log.Error("intent completion failed", zap.Error(err))
		return errorIntent(err), nil
	}
	if len(resp.Choices) == 0 {
		return errorIntent(fmt.Errorf("no choices in response")), nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	intent, err := decodeIntent(content)
	if err != nil {
		a.log.Error("intent response was not valid JSON", zap.String("content", content), zap.Error(err))
		return errorIntent(err), nil
	}
	a.log.Info("parsed intent", zap.String("kind", intent.Kind), zap.Float64("confidence", intent.Confidence))
	return intent, nil
}

// ParseMultiStep breaks a compound transcript into an ordered intent
// sequence. If the model does not return an array, the transcript is
// re-parsed as a single intent.
func (a *IntentAdapter) ParseMultiStep(ctx context.Context, transcript string, extra map[string]any) ([]entity.Intent, error) {
	prompt := fmt.Sprintf(`Parse this complex voice command into a sequence of individual browser actions:

Voice command: "%s"

Return a JSON array of intents, where each intent follows the same format as single intents.
Break down complex workflows into logical steps.`, transcript)

	if err := a.gate.Acquire(ctx, 1); err != nil {
		return []entity.Intent{errorIntent(err)}, nil
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	messages = appendContext(messages, extra)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	a.gate.Release(1)
	if err != nil {
		a.log.Error("multi-step completion failed", zap.Error(err))
		return []entity.Intent{errorIntent(err)}, nil
	}
	if len(resp.Choices) == 0 {
		return []entity.Intent{errorIntent(fmt.Errorf("no choices in response"))}, nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	intents, err := decodeIntentList(content)
	if err != nil {
		a.log.Warn("no intent array in response, falling back to single intent", zap.Error(err))
		single, err := a.ParseIntent(ctx, transcript, extra)
		if err != nil {
			return nil, err
		}
		return []entity.Intent{single}, nil
	}
	a.log.Info("parsed multi-step intents", zap.Int("steps", len(intents)))
	return intents, nil
}

func appendContext(messages []openai.ChatCompletionMessage, extra map[string]any) []openai.ChatCompletionMessage {
	if len(extra) == 0 {
		return messages
	}
	encoded, err := json.MarshalIndent(extra, "", "  ")
	if err != nil {
		return messages
	}
	return append(messages,
		openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: "Current context: " + string(encoded),
		},
		openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: "Please consider this context when parsing the intent.",
		},
	)
}

func errorIntent(err error) entity.Intent {
	return entity.Intent{
		Kind:       "ERROR",
		Confidence: 0,
		Parameters: map[string]any{},
		Context:    "Failed to parse intent: " + err.Error(),
	}
}
