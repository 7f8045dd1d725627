// Package normalizer turns loosely-typed parsed intents into canonical,
// immutable actions. Normalization is pure: no I/O, no errors, unknown
// intents become NOOP.
package normalizer

import (
	"strings"

	"voicebrowser/internal/domain/entity"
)

const (
	defaultScrollAmount = 800
	defaultWaitMillis   = 1000
)

// Normalize maps an intent onto exactly one action. Intents that already
// carry an explicit action shape pass through unchanged, so re-normalizing
// is idempotent.
func Normalize(intent entity.Intent) entity.Action {
	if intent.Raw != nil {
		return *intent.Raw
	}

	kind := strings.ToUpper(strings.TrimSpace(intent.Kind))

	switch kind {
	case "NAVIGATE", "GOTO", "OPEN":
		target := firstParam(intent, "target", "url")
		if target == "" {
			target = "about:blank"
		}
		return entity.Action{Kind: entity.KindNavigate, Target: target}

	case "SEARCH":
		return entity.Action{
			Kind: entity.KindSearch,
			Text: firstParam(intent, "text", "query"),
		}

	case "CLICK":
		return entity.Action{
			Kind:   entity.KindClick,
			Target: firstParam(intent, "selector", "target"),
			Scope:  intent.Param("scope"),
		}

	case "TYPE":
		return entity.Action{
			Kind:   entity.KindType,
			Target: firstParam(intent, "selector", "target"),
			Text:   intent.Param("text"),
			Scope:  intent.Param("scope"),
		}

	case "SCROLL":
		amount := defaultScrollAmount
		if n, ok := intent.ParamInt("amount"); ok && n != 0 {
			amount = n
			if amount < 0 {
				amount = -amount
			}
		}
		if strings.EqualFold(intent.Param("direction"), "up") {
			amount = -amount
		}
		return entity.Action{Kind: entity.KindScroll, Numeric: amount}

	case "PRESS":
		return entity.Action{
			Kind:   entity.KindPress,
			Target: firstParam(intent, "key", "target"),
		}

	case "EXTRACT":
		return entity.Action{
			Kind:   entity.KindExtract,
			Target: firstParam(intent, "data_type", "target"),
		}

	case "WAIT":
		millis := defaultWaitMillis
		if n, ok := intent.ParamInt("duration"); ok && n > 0 {
			millis = n
		} else if n, ok := intent.ParamInt("amount"); ok && n > 0 {
			millis = n
		}
		return entity.Action{Kind: entity.KindWait, Numeric: millis}

	case "SCREENSHOT":
		return entity.Action{Kind: entity.KindScreenshot}

	case "UPLOAD":
		return entity.Action{
			Kind:     entity.KindUpload,
			Target:   firstParam(intent, "selector", "target"),
			FilePath: firstParam(intent, "file_path", "path"),
		}

	case "DOWNLOAD":
		return entity.Action{
			Kind:   entity.KindDownload,
			Target: firstParam(intent, "selector", "target"),
		}
	}

	// ERROR, FILTER, FILL_FORM and anything else the parser may invent.
	return entity.Action{Kind: entity.KindNoop}
}

func firstParam(intent entity.Intent, keys ...string) string {
	for _, key := range keys {
		if v := intent.Param(key); v != "" {
			return v
		}
	}
	return ""
}
