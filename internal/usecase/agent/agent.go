// Package agent orchestrates one voice command end to end: context
// building, intent parsing, single-vs-workflow classification, execution,
// and persistence of what happened.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voicebrowser/internal/application/port/output"
	"voicebrowser/internal/domain/entity"
	"voicebrowser/internal/infrastructure/speech"
	"voicebrowser/internal/usecase/normalizer"
	"voicebrowser/internal/usecase/workflow"
)

// Agent drives the transcript → narration pipeline. It owns a turn counter
// and the workflow keyword list; everything stateful lives behind ports.
type Agent struct {
	intents  output.IntentPort
	browser  output.BrowserPort
	cache    output.CachePort
	memory   output.MemoryPort
	narrator *speech.Narrator
	runner   *workflow.Runner
	keywords []string
	log      *zap.Logger

	turn int
}

type Config struct {
	Intents  output.IntentPort
	Browser  output.BrowserPort
	Cache    output.CachePort
	Memory   output.MemoryPort
	Keywords []string
	Logger   *zap.Logger
}

func New(cfg Config) *Agent {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Agent{
		intents:  cfg.Intents,
		browser:  cfg.Browser,
		cache:    cfg.Cache,
		memory:   cfg.Memory,
		narrator: speech.NewNarrator(),
		runner:   workflow.NewRunner(cfg.Browser, log),
		keywords: cfg.Keywords,
		log:      log.Named("agent"),
	}
}

// ProcessTranscript handles one voice command and returns the spoken-style
// response. Persistence failures are logged, never fatal: the user still
// gets an answer about what the browser did.
func (a *Agent) ProcessTranscript(ctx context.Context, transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", fmt.Errorf("empty transcript")
	}

	a.turn++
	a.log.Info("processing transcript", zap.Int("turn", a.turn), zap.String("transcript", transcript))

	a.cache.StoreTurn(entity.ConversationTurn{
		ID:         fmt.Sprintf("turn_%d", a.turn),
		Transcript: transcript,
		Timestamp:  time.Now(),
	})

	extra := a.buildContext(ctx)

	intent, err := a.intents.ParseIntent(ctx, transcript, extra)
	if err != nil {
		return "", fmt.Errorf("parse intent: %w", err)
	}

	if a.isWorkflow(intent) {
		return a.runWorkflow(ctx, transcript, extra)
	}
	return a.runSingle(ctx, transcript, intent)
}

// Shutdown releases the browser session.
func (a *Agent) Shutdown(ctx context.Context) error {
	return a.browser.Shutdown(ctx)
}

func (a *Agent) runSingle(ctx context.Context, transcript string, intent entity.Intent) (string, error) {
	action := normalizer.Normalize(intent)
	result := a.browser.Execute(ctx, action)

	if result.Success && result.ScreenshotPath == "" && action.Kind != entity.KindScreenshot {
		result.ScreenshotPath = a.captureAfterSuccess(ctx)
	}

	a.cache.StoreTurn(entity.ConversationTurn{
		ID:         fmt.Sprintf("turn_%d_result", a.turn),
		Transcript: transcript,
		Response:   result.Detail,
		Timestamp:  time.Now(),
	})
	if err := a.memory.StoreConversation(ctx, transcript, action, result.Success); err != nil {
		a.log.Warn("conversation memory write failed", zap.Error(err))
	}

	if action.Kind == entity.KindExtract && result.Success {
		dataType := action.Target
		if dataType == "" {
			dataType = "text"
		}
		a.cache.StoreExtracted(dataType, result.Data)
		url, _ := result.Data["url"].(string)
		title, _ := result.Data["title"].(string)
		if err := a.memory.StoreBrowserContext(ctx, url, title, result.Data); err != nil {
			a.log.Warn("browser context memory write failed", zap.Error(err))
		}
		return a.narrator.ExtractionResponse(dataType, result.Data), nil
	}

	a.rememberPage(ctx)
	return a.narrator.CommandResponse(result), nil
}

func (a *Agent) runWorkflow(ctx context.Context, transcript string, extra map[string]any) (string, error) {
	intents, err := a.intents.ParseMultiStep(ctx, transcript, extra)
	if err != nil {
		return "", fmt.Errorf("parse workflow: %w", err)
	}
	if len(intents) == 0 {
		return "Could not parse workflow steps.", nil
	}

	actions := make([]entity.Action, 0, len(intents))
	for _, it := range intents {
		actions = append(actions, normalizer.Normalize(it))
	}

	workflowID := uuid.NewString()
	a.cache.StoreWorkflowState(workflowID, map[string]any{
		"status": "running",
		"steps":  len(actions),
	})

	result := a.runner.Run(ctx, actions)

	a.cache.StoreWorkflowState(workflowID, map[string]any{
		"status":    "completed",
		"steps":     len(result.Steps),
		"succeeded": result.Succeeded,
	})
	if err := a.memory.StoreWorkflow(ctx, workflowID, len(result.Steps), result.Succeeded); err != nil {
		a.log.Warn("workflow memory write failed", zap.Error(err))
	}

	if result.Succeeded > 0 {
		a.captureAfterSuccess(ctx)
	}

	a.rememberPage(ctx)
	return a.narrator.WorkflowResponse(result), nil
}

// captureAfterSuccess grabs a screenshot so every successful command leaves
// a visual artifact. Best-effort: a failed capture only logs.
func (a *Agent) captureAfterSuccess(ctx context.Context) string {
	shot := a.browser.Execute(ctx, entity.Action{Kind: entity.KindScreenshot})
	if !shot.Success {
		a.log.Warn("post-command screenshot failed", zap.String("error", shot.Error))
		return ""
	}
	return shot.ScreenshotPath
}

// isWorkflow checks the parser's context field for sequencing phrases like
// "and then".
func (a *Agent) isWorkflow(intent entity.Intent) bool {
	haystack := strings.ToLower(intent.Context)
	for _, keyword := range a.keywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// buildContext gathers conversational and page state for the parser. Each
// source is best-effort.
func (a *Agent) buildContext(ctx context.Context) map[string]any {
	extra := map[string]any{}

	if history := a.cache.History(5); len(history) > 0 {
		turns := make([]map[string]any, 0, len(history))
		for _, t := range history {
			turns = append(turns, map[string]any{
				"transcript": t.Transcript,
				"response":   t.Response,
			})
		}
		extra["conversation_history"] = turns
	}

	if state := a.cache.BrowserState(); state != nil {
		extra["browser_state"] = state
	}

	if hits, err := a.memory.Search(ctx, "recent browsing activity", 3); err == nil && len(hits) > 0 {
		memories := make([]string, 0, len(hits))
		for _, h := range hits {
			memories = append(memories, h.Content)
		}
		extra["memory_context"] = memories
	}

	if page, err := a.browser.PageContent(ctx); err == nil {
		extra["current_page"] = map[string]any{
			"url":   page.URL,
			"title": page.Title,
		}
	}

	return extra
}

// rememberPage caches where the browser ended up so the next command can be
// parsed with that context.
func (a *Agent) rememberPage(ctx context.Context) {
	page, err := a.browser.PageContent(ctx)
	if err != nil {
		return
	}
	a.cache.StoreBrowserState(map[string]any{
		"url":   page.URL,
		"title": page.Title,
	})
}
