package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIntent_Clean(t *testing.T) {
	intent, err := decodeIntent(`{"intent":"navigate","confidence":0.9,"parameters":{"target":"https://example.com"},"context":"","follow_up":["search for something"]}`)
	require.NoError(t, err)
	assert.Equal(t, "NAVIGATE", intent.Kind)
	assert.Equal(t, 0.9, intent.Confidence)
	assert.Equal(t, "https://example.com", intent.Parameters["target"])
	assert.Equal(t, []string{"search for something"}, intent.FollowUp)
}

func TestDecodeIntent_WrappedInProse(t *testing.T) {
	content := "Sure! Here is the parsed command:\n```json\n{\"intent\":\"CLICK\",\"confidence\":0.8,\"parameters\":{\"selector\":\"login button\"}}\n```\nLet me know if you need anything else."
	intent, err := decodeIntent(content)
	require.NoError(t, err)
	assert.Equal(t, "CLICK", intent.Kind)
	assert.Equal(t, "login button", intent.Parameters["selector"])
}

func TestDecodeIntent_NilParameters(t *testing.T) {
	intent, err := decodeIntent(`{"intent":"SCREENSHOT","confidence":1}`)
	require.NoError(t, err)
	assert.NotNil(t, intent.Parameters, "parameters map is always usable")
}

func TestDecodeIntent_NoJSON(t *testing.T) {
	_, err := decodeIntent("I cannot parse that command.")
	assert.Error(t, err)
}

func TestDecodeIntentList(t *testing.T) {
	content := `Here are the steps:
[
  {"intent":"NAVIGATE","parameters":{"target":"https://amazon.com"}},
  {"intent":"SEARCH","parameters":{"text":"laptops"}}
]`
	intents, err := decodeIntentList(content)
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, "NAVIGATE", intents[0].Kind)
	assert.Equal(t, "laptops", intents[1].Parameters["text"])
}

func TestDecodeIntentList_NoArray(t *testing.T) {
	_, err := decodeIntentList(`{"intent":"NAVIGATE"}`)
	assert.Error(t, err)
}
