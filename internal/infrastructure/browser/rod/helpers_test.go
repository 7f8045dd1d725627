package rod

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-rod/rod/lib/input"
	"github.com/stretchr/testify/assert"
)

func TestLookupKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    input.Key
		wantOK  bool
	}{
		{"Enter", "Enter", input.Enter, true},
		{"Return alias", "return", input.Enter, true},
		{"Escape short form", "esc", input.Escape, true},
		{"Page down with space", "page down", input.PageDown, true},
		{"Arrow direction shorthand", "down", input.ArrowDown, true},
		{"Mixed case", "TAB", input.Tab, true},
		{"Single character", "a", input.Key('a'), true},
		{"Unknown multi-char", "megakey", 0, false},
		{"Empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := lookupKey(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, key)
			}
		})
	}
}

func TestSearchPlan_KnownDomains(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantFirst  string
		wantMarker string
	}{
		{"YouTube", "https://www.youtube.com/", `input#search`, `ytd-search, #contents ytd-video-renderer`},
		{"Google", "https://www.google.com/", `textarea[name="q"]`, `#search`},
		{"Amazon", "https://www.amazon.com/deals", `input#twotabsearchtextbox`, `[data-component-type="s-search-result"]`},
		{"Bing", "https://bing.com", `input[name="q"]`, `#b_results`},
		{"DuckDuckGo", "https://duckduckgo.com", `input[name="q"]`, `[data-testid="result"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selectors, marker := searchPlan(tt.url)
			assert.NotEmpty(t, selectors)
			assert.Equal(t, tt.wantFirst, selectors[0])
			assert.Equal(t, tt.wantMarker, marker)
		})
	}
}

func TestSearchPlan_UnknownDomain(t *testing.T) {
	selectors, marker := searchPlan("https://example.org/shop")
	assert.Equal(t, genericSearchSelectors, selectors)
	assert.Empty(t, marker)
}

func TestSearchPlan_UnparsableURL(t *testing.T) {
	selectors, marker := searchPlan("::::")
	assert.Equal(t, genericSearchSelectors, selectors)
	assert.Empty(t, marker)
}

func TestWebSearchURL(t *testing.T) {
	assert.Equal(t, "https://www.google.com/search?q=go+rod+tutorial", webSearchURL("go rod tutorial"))
}

func TestMatchHintSelectors(t *testing.T) {
	tests := []struct {
		name  string
		scope string
		want  string // first selector, "" means no family
	}{
		{"Sidebar", "sidebar", "aside"},
		{"Left hand side", "the left menu", "aside"},
		{"Header", "top of the page", "header"},
		{"Nav", "navigation", "header"},
		{"Footer", "footer", "footer"},
		{"Bottom", "bottom area", "footer"},
		{"Filter", "filter panel", `[class*="filter" i]`},
		{"Refine", "refine results", `[class*="filter" i]`},
		{"Unknown", "somewhere weird", ""},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selectors := matchHintSelectors(tt.scope)
			if tt.want == "" {
				assert.Nil(t, selectors)
				return
			}
			if assert.NotEmpty(t, selectors) {
				assert.Equal(t, tt.want, selectors[0])
			}
		})
	}
}

func TestLooksLikeSelector(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"#login", true},
		{".btn-primary", true},
		{"//button[@id='x']", true},
		{"(//a)[1]", true},
		{"input[type=submit]", true},
		{"div.menu", true},
		{"the login button", false},
		{"Pick Up Today", false},
		{"Women", false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeSelector(tt.target))
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		shouldErr bool
	}{
		{"Valid HTTP", "http://example.com", false},
		{"Valid HTTPS", "https://example.com", false},
		{"Blank page", "about:blank", false},
		{"Empty URL", "", true},
		{"FTP scheme", "ftp://example.com", true},
		{"JavaScript URL", "javascript:alert(1)", true},
		{"Bare words", "not a url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURL(tt.url)
			if tt.shouldErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, `'plain'`, xpathLiteral("plain"))
	assert.Equal(t, `"it's"`, xpathLiteral("it's"))
	assert.Equal(t, `concat('say ', "'", '"hi"', "'")`, xpathLiteral(`say '"hi"'`))
}

func TestVisibleText(t *testing.T) {
	html := `<html><head><title>T</title><style>body{}</style></head>
<body><h1>Hello World</h1><p>A paragraph.</p><script>var x = 1;</script><noscript>off</noscript></body></html>`

	text := visibleText(html)
	assert.Contains(t, text, "Hello World")
	assert.Contains(t, text, "A paragraph.")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "off")
	assert.NotContains(t, text, "<h1>")
}

func TestTruncateOnRune(t *testing.T) {
	s := strings.Repeat("日", 10) // 3 bytes each

	tests := []struct {
		name string
		max  int
		want string
	}{
		{"No truncation needed", 30, s},
		{"Clean boundary", 9, "日日日"},
		{"Mid-rune cap backs off", 10, "日日日"},
		{"Below first rune", 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateOnRune(s, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
