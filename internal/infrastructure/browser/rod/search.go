package rod

import (
	"net/url"
	"strings"
)

// searchSite is one row of the search-box priority table: a domain
// fragment, the input selectors known to work there, and the marker that
// signals results have rendered.
type searchSite struct {
	domain        string
	boxSelectors  []string
	resultsMarker string
}

// searchSites is keyed by the current page's hostname; order matters only
// within a row's selector list. Unknown domains use genericSearchSelectors.
var searchSites = []searchSite{
	{
		domain:        "youtube.",
		boxSelectors:  []string{`input#search`, `input[name="search_query"]`},
		resultsMarker: `ytd-search, #contents ytd-video-renderer`,
	},
	{
		domain:        "google.",
		boxSelectors:  []string{`textarea[name="q"]`, `input[name="q"]`},
		resultsMarker: `#search`,
	},
	{
		domain:        "amazon.",
		boxSelectors:  []string{`input#twotabsearchtextbox`, `input[name="field-keywords"]`},
		resultsMarker: `[data-component-type="s-search-result"]`,
	},
	{
		domain:        "bing.",
		boxSelectors:  []string{`input[name="q"]`, `textarea[name="q"]`},
		resultsMarker: `#b_results`,
	},
	{
		domain:        "duckduckgo.",
		boxSelectors:  []string{`input[name="q"]`},
		resultsMarker: `[data-testid="result"]`,
	},
}

// genericSearchSelectors approximate a search box on arbitrary sites.
var genericSearchSelectors = []string{
	`[role="searchbox"]`,
	`input[type="search"]`,
	`input[name*="search" i]`,
	`input[placeholder*="search" i]`,
	`input[aria-label*="search" i]`,
}

const webSearchFallback = "https://www.google.com/search?q="

// searchPlan returns the selector list and results marker for the page at
// pageURL. The marker is empty for unknown domains; callers fall back to
// network quiescence.
func searchPlan(pageURL string) (selectors []string, resultsMarker string) {
	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}
	for _, site := range searchSites {
		if strings.Contains(host, site.domain) {
			return site.boxSelectors, site.resultsMarker
		}
	}
	return genericSearchSelectors, ""
}

// webSearchURL builds the fallback search-engine URL for a query.
func webSearchURL(query string) string {
	return webSearchFallback + url.QueryEscape(query)
}
