package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"voicebrowser/internal/domain/entity"
)

// wireIntent is the JSON shape the model is asked to produce.
type wireIntent struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Parameters map[string]any `json:"parameters"`
	Context    string         `json:"context"`
	FollowUp   []string       `json:"follow_up"`
}

func (w wireIntent) toEntity() entity.Intent {
	params := w.Parameters
	if params == nil {
		params = map[string]any{}
	}
	return entity.Intent{
		Kind:       strings.ToUpper(strings.TrimSpace(w.Intent)),
		Confidence: w.Confidence,
		Parameters: params,
		Context:    w.Context,
		FollowUp:   w.FollowUp,
	}
}

// decodeIntent parses an intent object from model output. Models sometimes
// wrap the JSON in prose or code fences, so after a direct parse fails the
// outermost brace span is retried.
func decodeIntent(content string) (entity.Intent, error) {
	var wire wireIntent
	if err := json.Unmarshal([]byte(content), &wire); err == nil {
		return wire.toEntity(), nil
	}

	span, ok := spanBetween(content, '{', '}')
	if !ok {
		return entity.Intent{}, fmt.Errorf("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(span), &wire); err != nil {
		return entity.Intent{}, fmt.Errorf("decode intent: %w", err)
	}
	return wire.toEntity(), nil
}

// decodeIntentList parses an intent array from model output using the
// outermost bracket span.
func decodeIntentList(content string) ([]entity.Intent, error) {
	span, ok := spanBetween(content, '[', ']')
	if !ok {
		return nil, fmt.Errorf("no JSON array in model output")
	}
	var wires []wireIntent
	if err := json.Unmarshal([]byte(span), &wires); err != nil {
		return nil, fmt.Errorf("decode intent list: %w", err)
	}
	intents := make([]entity.Intent, 0, len(wires))
	for _, w := range wires {
		intents = append(intents, w.toEntity())
	}
	return intents, nil
}

func spanBetween(content string, open, closing byte) (string, bool) {
	start := strings.IndexByte(content, open)
	end := strings.LastIndexByte(content, closing)
	if start == -1 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}
