package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"voicebrowser/internal/application/port/output"
	"voicebrowser/internal/domain/entity"
)

var _ output.BrowserPort = (*Executor)(nil)

var (
	ErrInvalidURL = errors.New("invalid navigation url")
)

const (
	idleWait          = 5 * time.Second
	postActionIdle    = 2 * time.Second
	screenshotMaxW    = 1280
	selectorProbeWait = 2 * time.Second
)

// Executor performs one canonical Action at a time against the session's
// live document. Failures of any kind become failed Results; nothing
// escapes as an error or panic.
type Executor struct {
	sessions *SessionManager
	locator  *Locator
	log      *zap.Logger

	timeout       time.Duration
	screenshotDir string
	quality       int
	downloadDir   string
}

type ExecutorConfig struct {
	Timeout           time.Duration
	ScreenshotDir     string
	ScreenshotQuality int
	DownloadDir       string
}

func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Timeout:           10 * time.Second,
		ScreenshotDir:     "screenshots",
		ScreenshotQuality: 90,
		DownloadDir:       "downloads",
	}
}

func NewExecutor(sessions *SessionManager, cfg ExecutorConfig, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ScreenshotQuality <= 0 || cfg.ScreenshotQuality > 100 {
		cfg.ScreenshotQuality = 90
	}
	return &Executor{
		sessions:      sessions,
		locator:       NewLocator(log),
		log:           log.Named("executor"),
		timeout:       cfg.Timeout,
		screenshotDir: cfg.ScreenshotDir,
		quality:       cfg.ScreenshotQuality,
		downloadDir:   cfg.DownloadDir,
	}
}

// Execute dispatches on the action kind, lazily acquiring the session and
// taking its action lock for the kinds that drive the page. Together the
// switches cover every ActionKind; the normalizer guarantees no other value
// can be constructed.
func (e *Executor) Execute(ctx context.Context, action entity.Action) (result entity.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("action panicked", zap.String("kind", string(action.Kind)), zap.Any("panic", r))
			result = entity.Failure(action, fmt.Sprintf("internal error: %v", r))
		}
	}()

	// Noop and wait touch no page state; they must not allocate a remote
	// session as a side effect.
	switch action.Kind {
	case entity.KindNoop:
		return entity.Failure(action, "no actionable intent; nothing was executed")
	case entity.KindWait:
		return e.wait(ctx, action)
	}

	sess, err := e.sessions.Acquire(ctx, false)
	if err != nil {
		return entity.Failure(action, "session unavailable: "+err.Error())
	}

	sess.actionMu.Lock()
	defer sess.actionMu.Unlock()

	start := time.Now()
	switch action.Kind {
	case entity.KindNavigate:
		result = e.navigate(sess, action)
	case entity.KindSearch:
		result = e.search(sess, action)
	case entity.KindClick:
		result = e.click(sess, action)
	case entity.KindType:
		result = e.typeText(sess, action)
	case entity.KindScroll:
		result = e.scroll(sess, action)
	case entity.KindPress:
		result = e.press(sess, action)
	case entity.KindExtract:
		result = e.extract(sess, action)
	case entity.KindScreenshot:
		result = e.screenshot(sess, action)
	case entity.KindUpload:
		result = e.upload(sess, action)
	case entity.KindDownload:
		result = e.download(sess, action)
	default:
		result = entity.Failure(action, "unknown action kind: "+string(action.Kind))
	}

	e.log.Info("action executed",
		zap.String("kind", string(action.Kind)),
		zap.Bool("success", result.Success),
		zap.Duration("took", time.Since(start)))
	return result
}

// PageContent snapshots title, URL, visible text and raw HTML.
func (e *Executor) PageContent(ctx context.Context) (*entity.PageContent, error) {
	sess, err := e.sessions.Acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	sess.actionMu.Lock()
	defer sess.actionMu.Unlock()
	return pageSnapshot(sess.Page(), e.timeout)
}

// Shutdown releases the remote session.
func (e *Executor) Shutdown(ctx context.Context) error {
	return e.sessions.Release(ctx)
}

func (e *Executor) navigate(sess *Session, action entity.Action) entity.Result {
	target := action.Target
	if err := validateURL(target); err != nil {
		return entity.Failure(action, err.Error())
	}

	page := sess.Page()
	if err := page.Navigate(target); err != nil {
		return entity.Failure(action, "navigation failed: "+err.Error())
	}
	if err := page.WaitLoad(); err != nil {
		return entity.Failure(action, "page did not finish loading: "+err.Error())
	}
	// Network quiescence is best-effort; slow beacons should not fail the
	// navigation.
	_ = page.Timeout(idleWait).WaitIdle(idleWait)

	result := entity.Result{Success: true, Action: action, Detail: "navigated to " + target}
	if path, err := e.capture(page); err != nil {
		e.log.Warn("auto-screenshot failed", zap.Error(err))
	} else {
		result.ScreenshotPath = path
	}
	return result
}

func (e *Executor) search(sess *Session, action entity.Action) entity.Result {
	query := strings.TrimSpace(action.Text)
	if query == "" {
		return entity.Failure(action, "search requires a query")
	}

	page := sess.Page()
	currentURL := ""
	if info, err := page.Info(); err == nil {
		currentURL = info.URL
	}
	selectors, marker := searchPlan(currentURL)

	box, boxSelector := firstElement(page, selectors, selectorProbeWait)
	if box == nil {
		// No search box anywhere: run the query through a web search
		// engine instead.
		fallback := action
		fallback.Target = webSearchURL(query)
		result := e.navigate(sess, fallback)
		result.Action = action
		if result.Success {
			result.Detail = "no search box found; used web search for " + query
		}
		return result
	}

	if err := clearAndType(box, query); err != nil {
		return entity.Failure(action, "could not type query: "+err.Error())
	}
	if err := box.Type(input.Enter); err != nil {
		return entity.Failure(action, "could not submit query: "+err.Error())
	}

	if marker != "" {
		if _, err := page.Timeout(e.timeout).Element(marker); err != nil {
			e.log.Debug("results marker did not appear", zap.String("marker", marker), zap.Error(err))
		}
	} else {
		_ = page.Timeout(idleWait).WaitIdle(idleWait)
	}

	result := entity.Result{Success: true, Action: action, Detail: "searched via " + boxSelector}
	if path, err := e.capture(page); err != nil {
		e.log.Warn("auto-screenshot failed", zap.Error(err))
	} else {
		result.ScreenshotPath = path
	}
	return result
}

func (e *Executor) click(sess *Session, action entity.Action) entity.Result {
	target := strings.TrimSpace(action.Target)
	if target == "" {
		return entity.Failure(action, "click requires a target")
	}

	page := sess.Page()
	if looksLikeSelector(target) {
		if err := clickSelector(page, target, e.timeout); err == nil {
			_ = page.Timeout(postActionIdle).WaitIdle(postActionIdle)
			return entity.Result{Success: true, Action: action, Detail: "clicked selector " + target}
		} else {
			e.log.Debug("selector click failed, resolving as phrase",
				zap.String("target", target), zap.Error(err))
		}
	}

	resolved := e.locator.Resolve(page, target, action.Scope, true, e.timeout)
	if !resolved.Found {
		return entity.Result{
			Action: action,
			Error:  fmt.Sprintf("could not locate %q on the page", target),
			Trail:  resolved.Trail(),
		}
	}
	_ = page.Timeout(postActionIdle).WaitIdle(postActionIdle)
	return entity.Result{
		Success: true,
		Action:  action,
		Detail:  "clicked via strategy " + resolved.Strategy,
		Trail:   resolved.Trail(),
	}
}

func (e *Executor) typeText(sess *Session, action entity.Action) entity.Result {
	if action.Text == "" {
		return entity.Failure(action, "type requires text")
	}
	page := sess.Page()

	if target := strings.TrimSpace(action.Target); target != "" {
		if el, err := page.Timeout(e.timeout).Element(target); err == nil {
			if err := clearAndType(el, action.Text); err != nil {
				return entity.Failure(action, "could not type into "+target+": "+err.Error())
			}
			return entity.Result{Success: true, Action: action, Detail: "typed into " + target}
		}

		// Not a workable selector: treat the target as a phrase, focus it
		// by clicking, then type at the keyboard level.
		resolved := e.locator.Resolve(page, target, action.Scope, false, e.timeout)
		if !resolved.Found {
			return entity.Result{
				Action: action,
				Error:  fmt.Sprintf("could not find a field matching %q", target),
				Trail:  resolved.Trail(),
			}
		}
		if err := page.InsertText(action.Text); err != nil {
			return entity.Failure(action, "keyboard input failed: "+err.Error())
		}
		return entity.Result{
			Success: true,
			Action:  action,
			Detail:  "focused via strategy " + resolved.Strategy + " and typed",
			Trail:   resolved.Trail(),
		}
	}

	// No target: assume something already has focus.
	if err := page.InsertText(action.Text); err != nil {
		return entity.Failure(action, "keyboard input failed: "+err.Error())
	}
	return entity.Result{Success: true, Action: action, Detail: "typed at keyboard"}
}

func (e *Executor) scroll(sess *Session, action entity.Action) entity.Result {
	amount := action.Numeric
	if amount == 0 {
		amount = 800
	}
	page := sess.Page()
	if _, err := page.Eval(`(y) => window.scrollBy(0, y)`, amount); err != nil {
		return entity.Failure(action, "scroll failed: "+err.Error())
	}
	_ = page.Timeout(time.Second).WaitIdle(time.Second)
	return entity.Result{Success: true, Action: action, Detail: fmt.Sprintf("scrolled by %d", amount)}
}

func (e *Executor) press(sess *Session, action entity.Action) entity.Result {
	name := action.Target
	if name == "" {
		name = "Enter"
	}
	key, ok := lookupKey(name)
	if !ok {
		return entity.Failure(action, "unknown key: "+name)
	}
	if err := sess.Page().KeyActions().Press(key).Do(); err != nil {
		return entity.Failure(action, "key press failed: "+err.Error())
	}
	return entity.Result{Success: true, Action: action, Detail: "pressed " + name}
}

func (e *Executor) extract(sess *Session, action entity.Action) entity.Result {
	page := sess.Page()
	dataType := strings.ToLower(strings.TrimSpace(action.Target))

	var js string
	switch dataType {
	case "links":
		js = `() => Array.from(document.querySelectorAll('a')).map(a => ({url: a.href || '', text: (a.textContent || '').trim()}))`
	case "images":
		js = `() => Array.from(document.querySelectorAll('img')).map(img => ({src: img.src || '', alt: img.alt || ''}))`
	case "forms":
		js = `() => Array.from(document.querySelectorAll('form')).map(form => ({
			action: form.getAttribute('action') || '',
			method: (form.getAttribute('method') || 'GET').toUpperCase(),
			fields: Array.from(form.querySelectorAll('input, select, textarea')).map(f => ({
				type: (f.getAttribute('type') || f.tagName || '').toLowerCase(),
				name: f.getAttribute('name') || '',
				placeholder: f.getAttribute('placeholder') || ''
			}))
		}))`
	}

	if js != "" {
		obj, err := page.Eval(js)
		if err != nil {
			return entity.Failure(action, "extraction failed: "+err.Error())
		}
		items, _ := obj.Value.Val().([]any)
		return entity.Result{
			Success: true,
			Action:  action,
			Detail:  fmt.Sprintf("extracted %d %s", len(items), dataType),
			Data:    map[string]any{dataType: items, "count": len(items)},
		}
	}

	snapshot, err := pageSnapshot(page, e.timeout)
	if err != nil {
		return entity.Failure(action, "extraction failed: "+err.Error())
	}
	return entity.Result{
		Success: true,
		Action:  action,
		Detail:  "extracted page text",
		Data: map[string]any{
			"title": snapshot.Title,
			"url":   snapshot.URL,
			"text":  snapshot.Text,
		},
	}
}

func (e *Executor) wait(ctx context.Context, action entity.Action) entity.Result {
	millis := action.Numeric
	if millis <= 0 {
		millis = 1000
	}
	select {
	case <-ctx.Done():
		return entity.Failure(action, "wait interrupted: "+ctx.Err().Error())
	case <-time.After(time.Duration(millis) * time.Millisecond):
	}
	return entity.Result{Success: true, Action: action, Detail: fmt.Sprintf("waited %dms", millis)}
}

func (e *Executor) screenshot(sess *Session, action entity.Action) entity.Result {
	path, err := e.capture(sess.Page())
	if err != nil {
		return entity.Failure(action, "screenshot failed: "+err.Error())
	}
	return entity.Result{Success: true, Action: action, Detail: "captured " + path, ScreenshotPath: path}
}

func (e *Executor) upload(sess *Session, action entity.Action) entity.Result {
	// Structurally required parameters: fail before touching the document.
	if strings.TrimSpace(action.Target) == "" {
		return entity.Failure(action, "upload requires a target selector")
	}
	if strings.TrimSpace(action.FilePath) == "" {
		return entity.Failure(action, "upload requires a file path")
	}

	el, err := sess.Page().Timeout(e.timeout).Element(action.Target)
	if err != nil {
		return entity.Failure(action, "upload target not found: "+err.Error())
	}
	if err := el.SetFiles([]string{action.FilePath}); err != nil {
		return entity.Failure(action, "could not attach file: "+err.Error())
	}
	return entity.Result{Success: true, Action: action, Detail: "attached " + action.FilePath}
}

func (e *Executor) download(sess *Session, action entity.Action) entity.Result {
	if strings.TrimSpace(action.Target) == "" {
		return entity.Failure(action, "download requires a target selector")
	}
	if err := os.MkdirAll(e.downloadDir, 0o755); err != nil {
		return entity.Failure(action, "could not create download dir: "+err.Error())
	}

	waitDownload := sess.browser.WaitDownload(e.downloadDir)

	if err := clickSelector(sess.Page(), action.Target, e.timeout); err != nil {
		return entity.Failure(action, "download trigger failed: "+err.Error())
	}

	info := waitDownload()
	if info == nil {
		return entity.Failure(action, "no download event observed")
	}
	path := filepath.Join(e.downloadDir, info.GUID)
	return entity.Result{
		Success:      true,
		Action:       action,
		Detail:       "downloaded " + info.SuggestedFilename,
		DownloadPath: path,
	}
}

// capture writes the current document to a timestamped artifact, downscaled
// to a reviewable width, and returns its path.
func (e *Executor) capture(page *rod.Page) (string, error) {
	raw, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(e.quality),
	})
	if err != nil {
		return "", fmt.Errorf("capture failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode screenshot: %w", err)
	}
	if img.Bounds().Dx() > screenshotMaxW {
		img = imaging.Resize(img, screenshotMaxW, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(e.screenshotDir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	path := filepath.Join(e.screenshotDir, time.Now().Format("20060102_150405.000")+".jpg")

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("encode screenshot: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

func pageSnapshot(page *rod.Page, timeout time.Duration) (*entity.PageContent, error) {
	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info: %w", err)
	}
	body, err := page.Timeout(timeout).Element("body")
	if err != nil {
		return nil, fmt.Errorf("body not found: %w", err)
	}
	html, err := body.HTML()
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	return &entity.PageContent{
		URL:   info.URL,
		Title: info.Title,
		HTML:  html,
		Text:  visibleText(html),
	}, nil
}

func clickSelector(page *rod.Page, selector string, timeout time.Duration) error {
	var el *rod.Element
	var err error
	if strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(") {
		el, err = page.Timeout(timeout).ElementX(selector)
	} else {
		el, err = page.Timeout(timeout).Element(selector)
	}
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	if err := el.Timeout(timeout).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func clearAndType(el *rod.Element, text string) error {
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	return el.Input(text)
}

// firstElement probes selectors in priority order and returns the first one
// present, with a short per-probe wait.
func firstElement(page *rod.Page, selectors []string, probeWait time.Duration) (*rod.Element, string) {
	for _, sel := range selectors {
		if el, err := page.Timeout(probeWait).Element(sel); err == nil {
			return el, sel
		}
	}
	return nil, ""
}

// looksLikeSelector guesses whether a click target is structural (CSS or
// XPath) rather than a human phrase.
func looksLikeSelector(target string) bool {
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "#") ||
		strings.HasPrefix(target, ".") || strings.HasPrefix(target, "(") {
		return true
	}
	if strings.ContainsAny(target, "[]>=") {
		return true
	}
	// "div.menu" style: dotted token without spaces.
	if strings.Contains(target, ".") && !strings.Contains(target, " ") {
		return true
	}
	return false
}

func validateURL(target string) error {
	if target == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if target == "about:blank" {
		return nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidURL, target)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	return nil
}
