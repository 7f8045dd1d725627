package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"voicebrowser/internal/application/port/output"
	"voicebrowser/internal/domain/entity"
	"voicebrowser/internal/infrastructure/browserbase"
)

var (
	ErrNoSession = errors.New("no active browser session")
)

const (
	connectAttempts = 3
	connectBackoff  = 1500 * time.Millisecond
)

// Session is one live remote browser connection. It exclusively owns the
// current page; all action execution serializes on actionMu.
type Session struct {
	Info        entity.SessionInfo
	DebuggerURL string

	browser *rod.Browser
	page    *rod.Page

	// actionMu guards the live document. Exactly one action may be in
	// flight per session; overlapping voice commands queue here.
	actionMu sync.Mutex
}

// Page returns the live document handle. Only valid while the session is
// held under its action lock.
func (s *Session) Page() *rod.Page { return s.page }

// SessionManager owns acquisition, reuse and release of the remote session.
// Acquisition has its own lock, distinct from the per-action lock, because
// creating a session is itself a multi-step sequence that must not be
// entered twice.
type SessionManager struct {
	provider  output.SessionProviderPort
	state     *browserbase.StateFile
	projectID string
	log       *zap.Logger

	mu      sync.Mutex
	current *Session
	// reclaimed is set once the stale session recorded on disk from a
	// previous run has been dealt with.
	reclaimed bool
}

func NewSessionManager(provider output.SessionProviderPort, state *browserbase.StateFile, projectID string, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{
		provider:  provider,
		state:     state,
		projectID: projectID,
		log:       log.Named("session"),
	}
}

// Acquire returns the live session, allocating one if needed. With
// forceNew=false and an existing handle, no remote call is made and the
// identical handle comes back.
func (m *SessionManager) Acquire(ctx context.Context, forceNew bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && !forceNew {
		return m.current, nil
	}
	if m.current != nil {
		// Release the old allocation first so we do not exceed the
		// provider's concurrent-session quota. Failures tolerated.
		m.releaseLocked(ctx)
	}

	m.reclaimStale(ctx)

	info, err := m.provider.CreateSession(ctx, m.projectID)
	if err != nil {
		return nil, fmt.Errorf("acquire session: %w", err)
	}

	browser, page, err := m.connect(ctx, info)
	if err != nil {
		// The allocation is useless if we cannot reach it.
		if derr := m.provider.DeleteSession(ctx, info.ID); derr != nil {
			m.log.Warn("could not release unreachable session", zap.String("session_id", info.ID), zap.Error(derr))
		}
		return nil, fmt.Errorf("acquire session: %w", err)
	}

	sess := &Session{Info: info, browser: browser, page: page}

	if url, err := m.provider.DebugURL(ctx, info.ID); err != nil {
		m.log.Warn("debug url unavailable", zap.String("session_id", info.ID), zap.Error(err))
	} else {
		sess.DebuggerURL = url
	}

	if m.state != nil {
		info.DebuggerURL = sess.DebuggerURL
		if err := m.state.Save(info); err != nil {
			m.log.Warn("could not persist session metadata", zap.Error(err))
		}
	}

	m.current = sess
	m.log.Info("session acquired",
		zap.String("session_id", info.ID),
		zap.String("debugger_url", sess.DebuggerURL))
	return sess, nil
}

// Current returns the live session without allocating. Nil when absent.
func (m *SessionManager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Release tears down page, connection and remote allocation in that order.
// Each layer's failure is logged and swallowed so the next layer still runs;
// local state is always cleared.
func (m *SessionManager) Release(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	m.releaseLocked(ctx)
	return nil
}

func (m *SessionManager) releaseLocked(ctx context.Context) {
	sess := m.current
	m.current = nil

	if sess.page != nil {
		if err := sess.page.Close(); err != nil {
			m.log.Warn("page close failed", zap.Error(err))
		}
	}
	if sess.browser != nil {
		if err := sess.browser.Close(); err != nil {
			m.log.Warn("browser disconnect failed", zap.Error(err))
		}
	}
	if err := m.provider.DeleteSession(ctx, sess.Info.ID); err != nil {
		m.log.Warn("remote session release failed", zap.String("session_id", sess.Info.ID), zap.Error(err))
	}
	if m.state != nil {
		if err := m.state.Clear(); err != nil {
			m.log.Warn("could not clear session metadata", zap.Error(err))
		}
	}
}

// reclaimStale releases the allocation a previous process run left behind,
// once per manager lifetime.
func (m *SessionManager) reclaimStale(ctx context.Context) {
	if m.reclaimed || m.state == nil {
		return
	}
	m.reclaimed = true

	info, ok, err := m.state.Load()
	if err != nil {
		m.log.Warn("could not read session metadata", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	m.log.Info("reclaiming stale session from previous run", zap.String("session_id", info.ID))
	if err := m.provider.DeleteSession(ctx, info.ID); err != nil {
		m.log.Warn("stale session release failed", zap.String("session_id", info.ID), zap.Error(err))
	}
	if err := m.state.Clear(); err != nil {
		m.log.Warn("could not clear stale session metadata", zap.Error(err))
	}
}

// connect establishes the CDP connection with bounded retries and linearly
// increasing backoff, then attaches to (or creates) the active page.
func (m *SessionManager) connect(ctx context.Context, info entity.SessionInfo) (*rod.Browser, *rod.Page, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		browser := rod.New().ControlURL(info.ConnectURL).Context(ctx)
		if err := browser.Connect(); err != nil {
			lastErr = err
			m.log.Warn("connect attempt failed",
				zap.Int("attempt", attempt),
				zap.String("session_id", info.ID),
				zap.Error(err))
			if attempt == connectAttempts {
				break
			}
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(connectBackoff * time.Duration(attempt)):
			}
			continue
		}

		page, err := activePage(browser)
		if err != nil {
			lastErr = err
			_ = browser.Close()
			continue
		}
		return browser, page, nil
	}
	return nil, nil, fmt.Errorf("connect to session %s after %d attempts: %w", info.ID, connectAttempts, lastErr)
}

func activePage(browser *rod.Browser) (*rod.Page, error) {
	pages, err := browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(pages) > 0 {
		return pages[0], nil
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return page, nil
}
