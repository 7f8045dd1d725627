package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"voicebrowser/internal/application/port/output"
	"voicebrowser/internal/domain/entity"
)

var _ output.MemoryPort = (*VectorStore)(nil)

const memoryCollection = "voice_browser_memories"

// VectorStore is the long-term semantic memory: every conversation turn,
// page visit and workflow run becomes an embedded document that later
// commands can recall by similarity.
type VectorStore struct {
	collection *chromem.Collection
	log        *zap.Logger
}

type VectorStoreConfig struct {
	// Path enables on-disk persistence; empty keeps everything in memory.
	Path string
	// Embed overrides the embedding function; when nil the OpenAI embedding
	// API is used with the given key.
	Embed        chromem.EmbeddingFunc
	OpenAIAPIKey string
	Logger       *zap.Logger
}

func NewVectorStore(cfg VectorStoreConfig) (*VectorStore, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var db *chromem.DB
	var err error
	if cfg.Path != "" {
		db, err = chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("open memory db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	embed := cfg.Embed
	if embed == nil {
		embed = chromem.NewEmbeddingFuncOpenAI(cfg.OpenAIAPIKey, chromem.EmbeddingModelOpenAI3Small)
	}

	collection, err := db.GetOrCreateCollection(memoryCollection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open memory collection: %w", err)
	}
	return &VectorStore{collection: collection, log: log.Named("memory")}, nil
}

func (s *VectorStore) StoreConversation(ctx context.Context, transcript string, action entity.Action, success bool) error {
	content := fmt.Sprintf("User said: %s. Action: %s on %s. Success: %t",
		transcript, action.Kind, action.Target, success)
	return s.add(ctx, content, map[string]string{
		"type":       "conversation",
		"transcript": transcript,
		"action":     string(action.Kind),
		"success":    fmt.Sprintf("%t", success),
	})
}

func (s *VectorStore) StoreBrowserContext(ctx context.Context, url, title string, extracted map[string]any) error {
	content := fmt.Sprintf("Visited page: %s (%s)", title, url)
	if len(extracted) > 0 {
		content += fmt.Sprintf(". Extracted %d data fields", len(extracted))
	}
	return s.add(ctx, content, map[string]string{
		"type":  "browser_context",
		"url":   url,
		"title": title,
	})
}

func (s *VectorStore) StoreWorkflow(ctx context.Context, name string, steps, succeeded int) error {
	content := fmt.Sprintf("Workflow %q ran %d steps, %d succeeded", name, steps, succeeded)
	return s.add(ctx, content, map[string]string{
		"type":      "workflow",
		"name":      name,
		"steps":     fmt.Sprintf("%d", steps),
		"succeeded": fmt.Sprintf("%d", succeeded),
	})
}

// Search recalls the most similar memories. The result count is clamped to
// the collection size; an empty store yields no hits rather than an error.
func (s *VectorStore) Search(ctx context.Context, query string, limit int) ([]entity.MemoryHit, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}

	hits := make([]entity.MemoryHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, entity.MemoryHit{
			ID:         r.ID,
			Content:    r.Content,
			Similarity: r.Similarity,
			Metadata:   r.Metadata,
		})
	}
	return hits, nil
}

func (s *VectorStore) add(ctx context.Context, content string, metadata map[string]string) error {
	metadata["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:       uuid.NewString(),
		Content:  content,
		Metadata: metadata,
	})
	if err != nil {
		s.log.Warn("memory write failed", zap.Error(err))
		return fmt.Errorf("memory write: %w", err)
	}
	return nil
}
