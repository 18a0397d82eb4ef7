// ABOUTME: Structural and semantic validation of mutated documents.
// ABOUTME: Heuristic tag/brace balance checks plus a feedback prompt for the single retry.

package validate

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/2389-research/pagesmith/intent"
	"github.com/2389-research/pagesmith/page"
)

// Outcome is the result of validating one mutation. It is consumed by the
// retry loop and never persisted.
type Outcome struct {
	Valid          bool
	Errors         []string
	FeedbackPrompt string
}

// voidElements never take a closing tag and are excluded from balance tracking.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// unclosedTolerance is how many dangling open tags are accepted before the
// document is considered broken. The tag scanner is heuristic, not a real
// parser, so a little sloppiness must not fail an otherwise good edit.
const unclosedTolerance = 3

var (
	tagRe        = regexp.MustCompile(`(?i)<(/?)([a-zA-Z][a-zA-Z0-9-]*)[^>]*?(/?)>`)
	commentRe    = regexp.MustCompile(`(?s)<!--.*?-->`)
	negMarginRe  = regexp.MustCompile(`(?i)margin[a-z-]*\s*:\s*-`)
	importantRe  = regexp.MustCompile(`!important`)
	fixedWidthRe = regexp.MustCompile(`(?i)width\s*:\s*(\d{4,})px`)
)

// Check validates a mutated document against the original and the intent that
// produced it. Every check contributes independent error entries; soft
// anti-pattern findings are logged and never affect validity.
func Check(it intent.Intent, before, after page.Document) Outcome {
	var errs []string

	if before == after {
		errs = append(errs, "NO_CHANGES: no field of the document was modified")
	}

	errs = append(errs, checkHTMLBalance(after.HTML)...)

	if opens, closes := strings.Count(after.CSS, "{"), strings.Count(after.CSS, "}"); opens != closes {
		errs = append(errs, fmt.Sprintf("CSS braces unbalanced: %d open vs %d close", opens, closes))
	}

	if it.Property != "" && !propertyApplied(it, after) {
		errs = append(errs, fmt.Sprintf("PROPERTY_NOT_APPLIED: %q (value %q) not found in the result", it.Property, it.Value))
	}

	if reason, truncated := looksTruncated(after.HTML); truncated {
		errs = append(errs, "output appears truncated: "+reason)
	}

	logAntiPatterns(after.CSS)

	out := Outcome{Valid: len(errs) == 0, Errors: errs}
	if !out.Valid {
		out.FeedbackPrompt = feedbackPrompt(it, errs)
		log.Printf("component=validate action=failed errors=%d", len(errs))
	}
	return out
}

// checkHTMLBalance walks every tag token with an open-tag stack. A close tag
// that does not match the stack top is reported but the top is restored, not
// popped: the stray close may belong to an outer level and popping would
// cascade false mismatches.
func checkHTMLBalance(html string) []string {
	var errs []string
	var stack []string

	clean := commentRe.ReplaceAllString(html, "")
	for _, m := range tagRe.FindAllStringSubmatch(clean, -1) {
		closing := m[1] == "/"
		name := strings.ToLower(m[2])
		selfClosing := m[3] == "/"

		if voidElements[name] || selfClosing {
			continue
		}
		if !closing {
			stack = append(stack, name)
			continue
		}
		if len(stack) == 0 {
			errs = append(errs, fmt.Sprintf("close tag </%s> with no open tag", name))
			continue
		}
		top := stack[len(stack)-1]
		if top != name {
			errs = append(errs, fmt.Sprintf("mismatched close tag </%s>, expected </%s>", name, top))
			continue
		}
		stack = stack[:len(stack)-1]
	}

	if len(stack) > unclosedTolerance {
		errs = append(errs, fmt.Sprintf("%d tags left unclosed (%s)", len(stack), strings.Join(stack, ", ")))
	}
	return errs
}

// propertyApplied confirms the requested property landed either as a CSS
// declaration (value within the same window) or literally in the HTML
// (inline styles, attribute values).
func propertyApplied(it intent.Intent, doc page.Document) bool {
	prop := strings.ToLower(it.Property)
	val := strings.ToLower(it.Value)

	css := strings.ToLower(doc.CSS)
	for idx := strings.Index(css, prop); idx >= 0; {
		if val == "" {
			return true
		}
		window := css[idx:min(idx+len(prop)+80, len(css))]
		if strings.Contains(window, val) {
			return true
		}
		next := strings.Index(css[idx+1:], prop)
		if next < 0 {
			break
		}
		idx += 1 + next
	}

	html := strings.ToLower(doc.HTML)
	if strings.Contains(html, prop) && (val == "" || strings.Contains(html, val)) {
		return true
	}
	return false
}

// looksTruncated flags the two tell-tale endings of a cut-off completion: an
// ellipsis tail, or a final open tag whose close never appears afterwards.
func looksTruncated(html string) (string, bool) {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" {
		return "", false
	}
	if strings.HasSuffix(trimmed, "…") || strings.HasSuffix(trimmed, "...") {
		return "ends with ellipsis", true
	}

	matches := tagRe.FindAllStringSubmatchIndex(trimmed, -1)
	if len(matches) == 0 {
		return "", false
	}
	last := matches[len(matches)-1]
	m := tagRe.FindStringSubmatch(trimmed[last[0]:last[1]])
	name := strings.ToLower(m[2])
	if m[1] == "/" || m[3] == "/" || voidElements[name] {
		return "", false
	}
	if !strings.Contains(strings.ToLower(trimmed[last[1]:]), "</"+name) {
		return fmt.Sprintf("ends with unclosed <%s>", name), true
	}
	return "", false
}

// logAntiPatterns reports style smells without failing validation.
func logAntiPatterns(css string) {
	if negMarginRe.MatchString(css) {
		log.Printf("component=validate action=anti_pattern kind=negative_margin")
	}
	if n := len(importantRe.FindAllString(css, -1)); n > 3 {
		log.Printf("component=validate action=anti_pattern kind=important_overuse count=%d", n)
	}
	if m := fixedWidthRe.FindStringSubmatch(css); m != nil {
		log.Printf("component=validate action=anti_pattern kind=oversized_fixed_width px=%s", m[1])
	}
}

// feedbackPrompt enumerates every failure plus the original request so the
// retry attempt knows exactly what to fix.
func feedbackPrompt(it intent.Intent, errs []string) string {
	var b strings.Builder
	b.WriteString("The previous edit failed validation:\n")
	for _, e := range errs {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	fmt.Fprintf(&b, "\nOriginal request: %s\n", it.NormalizedMessage)
	if it.TargetHint != "" {
		fmt.Fprintf(&b, "Target: %s\n", it.TargetHint)
	}
	if it.Property != "" {
		fmt.Fprintf(&b, "Expected change: %s: %s\n", it.Property, it.Value)
	}
	return b.String()
}
