package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	settings := Load()

	assert.Equal(t, "gpt-4-turbo-preview", settings.OpenAIModel)
	assert.Equal(t, "https://api.browserbase.com/v1", settings.BrowserbaseBaseURL)
	assert.Equal(t, 30*time.Second, settings.BrowserTimeout)
	assert.Equal(t, "screenshots", settings.ScreenshotDir)
	assert.Equal(t, 90, settings.ScreenshotQuality)
	assert.Equal(t, ".bb_session.json", settings.SessionStateFile)
	assert.Equal(t, []string{"and then", "after that", "next", "then", "also", "also do"}, settings.WorkflowKeywords)
	assert.Equal(t, "info", settings.Logger.Level)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("BROWSER_TIMEOUT", "45s")
	t.Setenv("SCREENSHOT_QUALITY", "70")
	t.Setenv("WORKFLOW_KEYWORDS", "first, second ,third")
	t.Setenv("LOG_LEVEL", "debug")

	settings := Load()
	assert.Equal(t, "gpt-4o", settings.OpenAIModel)
	assert.Equal(t, 45*time.Second, settings.BrowserTimeout)
	assert.Equal(t, 70, settings.ScreenshotQuality)
	assert.Equal(t, []string{"first", "second", "third"}, settings.WorkflowKeywords)
	assert.Equal(t, "debug", settings.Logger.Level)
}

func TestLoad_DurationAsMilliseconds(t *testing.T) {
	t.Setenv("BROWSER_TIMEOUT", "1500")
	settings := Load()
	assert.Equal(t, 1500*time.Millisecond, settings.BrowserTimeout)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("SCREENSHOT_QUALITY", "very high")
	t.Setenv("BROWSER_TIMEOUT", "soon")
	t.Setenv("WORKFLOW_KEYWORDS", " , ,")

	settings := Load()
	assert.Equal(t, 90, settings.ScreenshotQuality)
	assert.Equal(t, 30*time.Second, settings.BrowserTimeout)
	assert.NotEmpty(t, settings.WorkflowKeywords)
}
