package rod

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// ResolvedTarget is the outcome of a phrase resolution. When Found is true
// the element was visible and has already received the terminal click; the
// handle is invalidated by the next navigation.
type ResolvedTarget struct {
	Found    bool
	Strategy string
	Element  *rod.Element
	Attempts []Attempt
}

// Attempt records one cascade stage for diagnostics.
type Attempt struct {
	Strategy string
	Matches  int
	Reason   string
}

// Trail renders the attempts as human-readable lines for Result reporting.
func (r ResolvedTarget) Trail() []string {
	out := make([]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		out = append(out, fmt.Sprintf("%s: matches=%d %s", a.Strategy, a.Matches, a.Reason))
	}
	return out
}

// queryRoot is the search scope for one resolution: the whole page or a
// landmark container chosen from the scope hint. Both *rod.Page and
// *rod.Element satisfy it.
type queryRoot interface {
	Elements(selector string) (rod.Elements, error)
	ElementsX(xpath string) (rod.Elements, error)
}

// strategy is one stage of the cascade: a named way of turning a phrase
// into candidate elements. Stages are tried in a fixed order and the first
// one that yields an actionable element wins.
type strategy struct {
	name string
	find func(root queryRoot, phrase string) (rod.Elements, error)
}

// Locator resolves human phrases against the live document.
type Locator struct {
	strategies []strategy
	log        *zap.Logger
}

func NewLocator(log *zap.Logger) *Locator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Locator{
		strategies: cascade(),
		log:        log.Named("locator"),
	}
}

const (
	linkSelector   = `a, [role="link"]`
	buttonSelector = `button, [role="button"], input[type="submit"], input[type="button"]`
)

// cascade builds the fixed-priority strategy list. Semantic accessibility
// matches come first; text and attribute heuristics are the fallback for
// markup that exposes nothing better.
func cascade() []strategy {
	return []strategy{
		{name: "link-role-exact", find: func(root queryRoot, phrase string) (rod.Elements, error) {
			return byRoleName(root, linkSelector, phrase, true)
		}},
		{name: "button-role-exact", find: func(root queryRoot, phrase string) (rod.Elements, error) {
			return byRoleName(root, buttonSelector, phrase, true)
		}},
		{name: "link-role-fuzzy", find: func(root queryRoot, phrase string) (rod.Elements, error) {
			return byRoleName(root, linkSelector, phrase, false)
		}},
		{name: "button-role-fuzzy", find: func(root queryRoot, phrase string) (rod.Elements, error) {
			return byRoleName(root, buttonSelector, phrase, false)
		}},
		{name: "text-exact", find: func(root queryRoot, phrase string) (rod.Elements, error) {
			return root.ElementsX(fmt.Sprintf(`.//*[normalize-space(text())=%s]`, xpathLiteral(phrase)))
		}},
		{name: "text-fuzzy", find: func(root queryRoot, phrase string) (rod.Elements, error) {
			return root.ElementsX(fmt.Sprintf(
				`.//*[contains(translate(normalize-space(text()), %s, %s), %s)]`,
				xpathLiteral(upperAlpha), xpathLiteral(lowerAlpha), xpathLiteral(strings.ToLower(phrase))))
		}},
		{name: "attribute-probes", find: findByAttributes},
	}
}

// Resolve narrows the page to the hinted region (whole document when the
// hint is empty or unrecognized) and runs the cascade there. An empty
// phrase fails immediately with zero strategies attempted.
func (l *Locator) Resolve(page *rod.Page, phrase, scope string, hoverFirst bool, timeout time.Duration) ResolvedTarget {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return ResolvedTarget{}
	}

	root, hinted := scopeRoot(page, scope)
	if scope != "" && !hinted {
		l.log.Warn("unrecognized scope hint, searching whole document", zap.String("scope", scope))
	}
	return l.resolveIn(root, phrase, hoverFirst, timeout)
}

// resolveIn runs the cascade against an explicit root. When a stage matches
// but its element cannot be made visible or clicked within the timeout, the
// failure is recorded and the next stage is tried; the cascade is resilient
// per stage, not only per call.
func (l *Locator) resolveIn(root queryRoot, phrase string, hoverFirst bool, timeout time.Duration) ResolvedTarget {
	result := ResolvedTarget{}
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return result
	}

	for _, st := range l.strategies {
		attempt := Attempt{Strategy: st.name}

		els, err := st.find(root, phrase)
		if err != nil {
			attempt.Reason = "query failed: " + err.Error()
			result.Attempts = append(result.Attempts, attempt)
			continue
		}
		attempt.Matches = len(els)
		if len(els) == 0 {
			attempt.Reason = "no match"
			result.Attempts = append(result.Attempts, attempt)
			continue
		}

		el := els[0]
		if err := el.Timeout(timeout).WaitVisible(); err != nil {
			attempt.Reason = "not visible within timeout: " + err.Error()
			result.Attempts = append(result.Attempts, attempt)
			continue
		}

		if hoverFirst {
			// Some click targets only appear on hover. Failing to hover
			// is not a reason to discard the match.
			if err := el.Hover(); err != nil {
				l.log.Debug("hover failed", zap.String("strategy", st.name), zap.Error(err))
			}
		}

		if err := el.Timeout(timeout).Click(proto.InputMouseButtonLeft, 1); err != nil {
			attempt.Reason = "click failed: " + err.Error()
			result.Attempts = append(result.Attempts, attempt)
			continue
		}

		attempt.Reason = "clicked"
		result.Attempts = append(result.Attempts, attempt)
		result.Found = true
		result.Strategy = st.name
		result.Element = el
		l.log.Debug("phrase resolved",
			zap.String("phrase", phrase),
			zap.String("strategy", st.name))
		return result
	}

	return result
}

const (
	upperAlpha = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerAlpha = "abcdefghijklmnopqrstuvwxyz"
)

// byRoleName filters role-bearing elements by accessible name: aria-label
// when present, rendered text otherwise.
func byRoleName(root queryRoot, selector, phrase string, exact bool) (rod.Elements, error) {
	els, err := root.Elements(selector)
	if err != nil {
		return nil, err
	}
	var matched rod.Elements
	want := strings.TrimSpace(phrase)
	for _, el := range els {
		name, err := accessibleName(el)
		if err != nil {
			continue
		}
		if exact {
			if name == want {
				matched = append(matched, el)
			}
		} else if strings.Contains(strings.ToLower(name), strings.ToLower(want)) {
			matched = append(matched, el)
		}
	}
	return matched, nil
}

func accessibleName(el *rod.Element) (string, error) {
	if aria, err := el.Attribute("aria-label"); err == nil && aria != nil && strings.TrimSpace(*aria) != "" {
		return strings.TrimSpace(*aria), nil
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// findByAttributes is the last-resort probe list: label-like attributes,
// test ids, then interactive elements whose rendered text contains the
// phrase.
func findByAttributes(root queryRoot, phrase string) (rod.Elements, error) {
	probes := []string{
		fmt.Sprintf(`[aria-label*=%q i]`, phrase),
		fmt.Sprintf(`[data-testid*=%q i], [data-test*=%q i]`, phrase, phrase),
		fmt.Sprintf(`[title*=%q i], [placeholder*=%q i]`, phrase, phrase),
	}
	for _, probe := range probes {
		els, err := root.Elements(probe)
		if err == nil && len(els) > 0 {
			return els, nil
		}
	}
	// Anchor/button/label rendered-text probe.
	lower := strings.ToLower(phrase)
	xpath := fmt.Sprintf(
		`.//a[contains(translate(., %[1]s, %[2]s), %[3]s)] | .//button[contains(translate(., %[1]s, %[2]s), %[3]s)] | .//label[contains(translate(., %[1]s, %[2]s), %[3]s)]`,
		xpathLiteral(upperAlpha), xpathLiteral(lowerAlpha), xpathLiteral(lower))
	return root.ElementsX(xpath)
}

// xpathLiteral quotes s as an XPath string literal, handling embedded
// quotes via concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	var parts []string
	for _, chunk := range strings.SplitAfter(s, `'`) {
		if strings.HasSuffix(chunk, `'`) {
			if trimmed := strings.TrimSuffix(chunk, `'`); trimmed != "" {
				parts = append(parts, `'`+trimmed+`'`)
			}
			parts = append(parts, `"'"`)
		} else if chunk != "" {
			parts = append(parts, `'`+chunk+`'`)
		}
	}
	return "concat(" + strings.Join(parts, ", ") + ")"
}
