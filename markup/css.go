// ABOUTME: Flat CSS rule extraction for the selector-aware merge.
// ABOUTME: Treats a rule as "selector { declarations }" with no nested braces.

package markup

import (
	"regexp"
	"strings"
)

// Rule is a single flat CSS rule with its position in the source text.
// At-rules with nested blocks (@media and friends) are outside rule-level
// merge; their inner rules may still parse individually.
type Rule struct {
	Selector     string
	Declarations string
	Start        int
	End          int
}

// Raw returns the rule's full source text.
func (r Rule) Raw(css string) string {
	return css[r.Start:r.End]
}

var (
	cssRuleRe    = regexp.MustCompile(`([^{}]+)\{([^{}]*)\}`)
	cssCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// ParseRules extracts every flat rule from a CSS string in source order.
func ParseRules(css string) []Rule {
	var rules []Rule
	for _, loc := range cssRuleRe.FindAllStringSubmatchIndex(css, -1) {
		selector := strings.TrimSpace(cssCommentRe.ReplaceAllString(css[loc[2]:loc[3]], ""))
		if selector == "" || strings.HasPrefix(selector, "@") {
			continue
		}
		// Trim leading whitespace off the rule span so Raw starts at the selector.
		start := loc[0]
		for start < loc[1] && (css[start] == ' ' || css[start] == '\n' || css[start] == '\t' || css[start] == '\r') {
			start++
		}
		rules = append(rules, Rule{
			Selector:     selector,
			Declarations: strings.TrimSpace(css[loc[4]:loc[5]]),
			Start:        start,
			End:          loc[1],
		})
	}
	return rules
}

// FindRule locates the first rule whose selector text equals selector exactly
// (after whitespace trimming). ok=false is a soft miss, not an error.
func FindRule(css, selector string) (Rule, bool) {
	want := strings.TrimSpace(selector)
	for _, r := range ParseRules(css) {
		if r.Selector == want {
			return r, true
		}
	}
	return Rule{}, false
}
