// ABOUTME: Fragment merge engine: surgical HTML splicing and selector-aware CSS upsert.
// ABOUTME: Unresolvable regions degrade to appending, never to dropping the fragment.

package markup

import "strings"

// Mode selects how an HTML fragment is spliced into the matched element.
type Mode string

const (
	// ModeReplace swaps the inner content between the open and close tags.
	ModeReplace Mode = "replace"
	// ModeAppend inserts the fragment just before the close tag. Append is
	// intentionally not idempotent: each call adds another copy.
	ModeAppend Mode = "append"
	// ModeWrap replaces the entire matched element, tags included.
	ModeWrap Mode = "wrap"
)

// ParseMode normalizes a mode string, defaulting to replace.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAppend:
		return ModeAppend
	case ModeWrap:
		return ModeWrap
	default:
		return ModeReplace
	}
}

// MergeHTML splices fragment into doc at the element matched by selector.
// When the selector cannot be resolved to a bounded region the fragment is
// appended after the full document rather than silently dropped.
func MergeHTML(doc, fragment, selector string, mode Mode) string {
	m, ok := FindElement(doc, selector)
	if !ok {
		return appendFragment(doc, fragment)
	}

	switch mode {
	case ModeWrap:
		return doc[:m.Start] + fragment + doc[m.End:]
	case ModeAppend:
		return doc[:m.ContentEnd] + "\n" + fragment + "\n" + doc[m.ContentEnd:]
	default:
		return doc[:m.OpenEnd] + "\n" + fragment + "\n" + doc[m.ContentEnd:]
	}
}

// MergeCSS upserts every flat rule in fragment into doc. A rule whose selector
// already exists replaces that rule's full text in place; rules with novel
// selectors are appended after all replacements. A fragment with no parseable
// rule at all (bare declarations meant for an existing block) is appended
// verbatim rather than treated as an error.
func MergeCSS(doc, fragment string) string {
	incoming := ParseRules(fragment)
	if len(incoming) == 0 {
		return appendFragment(doc, fragment)
	}

	var novel []string
	for _, rule := range incoming {
		existing, ok := FindRule(doc, rule.Selector)
		if !ok {
			novel = append(novel, strings.TrimSpace(rule.Raw(fragment)))
			continue
		}
		doc = doc[:existing.Start] + strings.TrimSpace(rule.Raw(fragment)) + doc[existing.End:]
	}

	for _, rule := range novel {
		doc = appendFragment(doc, rule)
	}
	return doc
}

func appendFragment(doc, fragment string) string {
	doc = strings.TrimRight(doc, "\n")
	fragment = strings.TrimSpace(fragment)
	if doc == "" {
		return fragment
	}
	if fragment == "" {
		return doc
	}
	return doc + "\n\n" + fragment
}
