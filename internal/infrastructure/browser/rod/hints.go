package rod

import (
	"strings"

	"github.com/go-rod/rod"
)

// hintFamily maps a set of scope-hint keywords onto candidate landmark
// selectors, tried in order. The table is a small hardcoded heuristic;
// unrecognized hints deliberately fall back to the whole document.
type hintFamily struct {
	keywords  []string
	selectors []string
}

var hintFamilies = []hintFamily{
	{
		keywords: []string{"left", "side", "sidebar"},
		selectors: []string{
			`aside`,
			`[role="complementary"]`,
			`nav[aria-label*="side" i]`,
			`[class*="sidebar" i]`,
			`[id*="sidebar" i]`,
		},
	},
	{
		keywords: []string{"top", "header", "nav"},
		selectors: []string{
			`header`,
			`[role="banner"]`,
			`[role="navigation"]`,
			`nav`,
		},
	},
	{
		keywords: []string{"footer", "bottom"},
		selectors: []string{
			`footer`,
			`[role="contentinfo"]`,
		},
	},
	{
		keywords: []string{"filter", "refine"},
		selectors: []string{
			`[class*="filter" i]`,
			`[id*="filter" i]`,
			`[data-testid*="filter" i]`,
			`[class*="refine" i]`,
			`[aria-label*="filter" i]`,
		},
	},
}

// matchHintSelectors returns the selector list for a hint, or nil when the
// hint belongs to no known family. Matching is case-insensitive substring
// over the keyword families.
func matchHintSelectors(scope string) []string {
	scope = strings.ToLower(strings.TrimSpace(scope))
	if scope == "" {
		return nil
	}
	for _, family := range hintFamilies {
		for _, kw := range family.keywords {
			if strings.Contains(scope, kw) {
				return family.selectors
			}
		}
	}
	return nil
}

// scopeRoot picks the search root for a hint: the first present landmark
// from the hint's family, else the whole page. The second return reports
// whether the hint narrowed anything.
func scopeRoot(page *rod.Page, scope string) (queryRoot, bool) {
	selectors := matchHintSelectors(scope)
	if selectors == nil {
		return page, false
	}
	for _, sel := range selectors {
		els, err := page.Elements(sel)
		if err != nil || len(els) == 0 {
			continue
		}
		return els[0], true
	}
	return page, false
}
