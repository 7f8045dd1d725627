package di

import (
	"fmt"

	"go.uber.org/zap"

	"voicebrowser/internal/application/port/output"
	"voicebrowser/internal/config"
	"voicebrowser/internal/infrastructure/browser/rod"
	"voicebrowser/internal/infrastructure/browserbase"
	"voicebrowser/internal/infrastructure/llm/openai"
	"voicebrowser/internal/infrastructure/memory"
	"voicebrowser/internal/observability"
	"voicebrowser/internal/usecase/agent"
)

// Container wires the infrastructure adapters behind the ports and hands
// out the fully built agent.
type Container struct {
	Settings *config.Settings
	Logger   *zap.Logger

	Provider output.SessionProviderPort
	Browser  output.BrowserPort
	Intents  output.IntentPort
	Cache    output.CachePort
	Memory   output.MemoryPort

	Agent *agent.Agent
}

func NewContainer(settings *config.Settings) (*Container, error) {
	if settings.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if settings.BrowserbaseAPIKey == "" || settings.BrowserbaseProjectID == "" {
		return nil, fmt.Errorf("BROWSERBASE_API_KEY and BROWSERBASE_PROJECT_ID are required")
	}

	log := observability.NewLogger(settings.Logger)

	provider := browserbase.NewClient(browserbase.Config{
		BaseURL: settings.BrowserbaseBaseURL,
		APIKey:  settings.BrowserbaseAPIKey,
		Logger:  log,
	})
	state := browserbase.NewStateFile(settings.SessionStateFile)
	sessions := rod.NewSessionManager(provider, state, settings.BrowserbaseProjectID, log)

	browser := rod.NewExecutor(sessions, rod.ExecutorConfig{
		Timeout:           settings.BrowserTimeout,
		ScreenshotDir:     settings.ScreenshotDir,
		ScreenshotQuality: settings.ScreenshotQuality,
		DownloadDir:       settings.DownloadDir,
	}, log)

	intents := openai.NewIntentAdapter(openai.Config{
		APIKey: settings.OpenAIAPIKey,
		Model:  settings.OpenAIModel,
		Logger: log,
	})

	cache := memory.NewSessionCache()

	vectors, err := memory.NewVectorStore(memory.VectorStoreConfig{
		Path:         settings.MemoryPath,
		OpenAIAPIKey: settings.OpenAIAPIKey,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("build memory store: %w", err)
	}

	ag := agent.New(agent.Config{
		Intents:  intents,
		Browser:  browser,
		Cache:    cache,
		Memory:   vectors,
		Keywords: settings.WorkflowKeywords,
		Logger:   log,
	})

	return &Container{
		Settings: settings,
		Logger:   log,
		Provider: provider,
		Browser:  browser,
		Intents:  intents,
		Cache:    cache,
		Memory:   vectors,
		Agent:    ag,
	}, nil
}

// Close flushes logs. Browser shutdown is the agent's job so the CLI can
// decide whether to keep the remote session alive.
func (c *Container) Close() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
