package rod

import (
	"strings"

	"github.com/go-rod/rod/lib/input"
)

var namedKeys = map[string]input.Key{
	"enter":      input.Enter,
	"return":     input.Enter,
	"tab":        input.Tab,
	"escape":     input.Escape,
	"esc":        input.Escape,
	"backspace":  input.Backspace,
	"space":      input.Space,
	"delete":     input.Delete,
	"home":       input.Home,
	"end":        input.End,
	"pageup":     input.PageUp,
	"pagedown":   input.PageDown,
	"arrowup":    input.ArrowUp,
	"arrowdown":  input.ArrowDown,
	"arrowleft":  input.ArrowLeft,
	"arrowright": input.ArrowRight,
	"up":         input.ArrowUp,
	"down":       input.ArrowDown,
	"left":       input.ArrowLeft,
	"right":      input.ArrowRight,
}

// lookupKey maps a spoken key name ("Enter", "page down") onto a device
// key. Single characters map onto themselves.
func lookupKey(name string) (input.Key, bool) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	if key, ok := namedKeys[normalized]; ok {
		return key, true
	}
	runes := []rune(strings.TrimSpace(name))
	if len(runes) == 1 {
		return input.Key(runes[0]), true
	}
	return 0, false
}
