// ABOUTME: Regex-based element location for HTML documents without a real DOM parser.
// ABOUTME: Compiles CSS-like selectors and finds balanced open/close tag regions.

package markup

import (
	"regexp"
	"strings"
)

// Match describes a located element region inside a document string.
// Start..OpenEnd covers the opening tag, ContentStart..ContentEnd the inner
// content, and End is one past the closing tag.
type Match struct {
	Tag          string
	Start        int
	OpenEnd      int
	ContentStart int
	ContentEnd   int
	End          int
}

// Inner returns the content between the opening and closing tags.
func (m Match) Inner(doc string) string {
	return doc[m.ContentStart:m.ContentEnd]
}

// Outer returns the full element text, tags included.
func (m Match) Outer(doc string) string {
	return doc[m.Start:m.End]
}

var tagNameRe = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9-]*)`)

// CompileSelector builds a case-insensitive regex locating the opening tag for
// a selector of the form "#id", ".class", "tag", or "tag.class". Unsupported
// selector syntax (combinators, pseudo-classes, attribute selectors) yields
// ok=false rather than an error: callers treat it as "no match".
func CompileSelector(selector string) (*regexp.Regexp, bool) {
	selector = strings.TrimSpace(selector)
	if selector == "" || strings.ContainsAny(selector, " >+~:[]()") {
		return nil, false
	}

	switch {
	case strings.HasPrefix(selector, "#"):
		id := regexp.QuoteMeta(selector[1:])
		if id == "" {
			return nil, false
		}
		return regexp.MustCompile(`(?i)<([a-zA-Z][a-zA-Z0-9-]*)\b[^>]*\bid\s*=\s*["']` + id + `["'][^>]*>`), true

	case strings.HasPrefix(selector, "."):
		class := regexp.QuoteMeta(selector[1:])
		if class == "" {
			return nil, false
		}
		return regexp.MustCompile(`(?i)<([a-zA-Z][a-zA-Z0-9-]*)\b[^>]*` + classAttrPattern(class)), true

	case strings.Contains(selector, "."):
		parts := strings.SplitN(selector, ".", 2)
		tag, class := parts[0], parts[1]
		if !isTagName(tag) || class == "" {
			return nil, false
		}
		return regexp.MustCompile(`(?i)<(` + regexp.QuoteMeta(tag) + `)\b[^>]*` + classAttrPattern(regexp.QuoteMeta(class))), true

	default:
		if !isTagName(selector) {
			return nil, false
		}
		return regexp.MustCompile(`(?i)<(` + regexp.QuoteMeta(selector) + `)\b[^>]*>`), true
	}
}

// classAttrPattern matches a class attribute whose whitespace-delimited token
// list contains the given (already regex-quoted) class. Matching is
// whole-token: ".hero" must never match class="hero-section", so the class is
// anchored between the quote or a space on each side rather than at word
// boundaries, which would treat the hyphen as a break.
func classAttrPattern(quotedClass string) string {
	return `\bclass\s*=\s*["'](?:[^"']*\s)?` + quotedClass + `(?:\s[^"']*)?["'][^>]*>`
}

func isTagName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// FindElement locates the first element matching selector and its balanced
// closing tag. A selector that matches no element, or whose closing tag cannot
// be found, returns ok=false; callers decide the fallback (append at end, or
// treat the whole document as the region).
func FindElement(doc, selector string) (Match, bool) {
	re, ok := CompileSelector(selector)
	if !ok {
		return Match{}, false
	}

	loc := re.FindStringSubmatchIndex(doc)
	if loc == nil {
		return Match{}, false
	}

	open := doc[loc[0]:loc[1]]
	tag := strings.ToLower(doc[loc[2]:loc[3]])

	// A self-closing match has no content region to splice into.
	if strings.HasSuffix(strings.TrimSpace(open), "/>") {
		return Match{}, false
	}

	closeStart := FindMatchingClose(doc, tag, loc[1])
	if closeStart < 0 {
		return Match{}, false
	}
	closeEnd := strings.Index(doc[closeStart:], ">")
	if closeEnd < 0 {
		return Match{}, false
	}

	return Match{
		Tag:          tag,
		Start:        loc[0],
		OpenEnd:      loc[1],
		ContentStart: loc[1],
		ContentEnd:   closeStart,
		End:          closeStart + closeEnd + 1,
	}, true
}

// FindMatchingClose scans forward from offset for the closing tag that
// balances an already-consumed opening <tag>. It increments depth on every
// subsequent opening tag of the same name and decrements on every closing tag,
// using word-boundary-safe matching so <divX> never counts against <div>.
// Returns the index of the balancing close tag, or -1 when depth never returns
// to zero (self-closing, malformed, or truncated markup).
func FindMatchingClose(doc, tag string, offset int) int {
	re := regexp.MustCompile(`(?i)<(/?)` + regexp.QuoteMeta(tag) + `\b[^>]*>`)

	depth := 1
	for _, loc := range re.FindAllStringSubmatchIndex(doc[offset:], -1) {
		token := doc[offset+loc[0] : offset+loc[1]]
		closing := loc[3] > loc[2]

		if closing {
			depth--
			if depth == 0 {
				return offset + loc[0]
			}
			continue
		}
		if strings.HasSuffix(strings.TrimSpace(token), "/>") {
			continue
		}
		depth++
	}
	return -1
}

// SelectorExists reports whether selector matches at least one opening tag in
// the document, without requiring a balanced close.
func SelectorExists(doc, selector string) bool {
	re, ok := CompileSelector(selector)
	if !ok {
		return false
	}
	return re.MatchString(doc)
}
