// ABOUTME: Context resolver turning an abstract target hint into a concrete selector.
// ABOUTME: Layered fallback chain; always terminates with a non-empty selector (worst case body).

package resolve

import (
	"log"
	"regexp"
	"strings"

	"github.com/2389-research/pagesmith/intent"
	"github.com/2389-research/pagesmith/markup"
	"github.com/2389-research/pagesmith/page"
)

// Strategy names recorded in Context.ResolvedBy. Exactly one strategy fires
// per resolution, in the documented priority order.
const (
	BySelection = "selection"
	ByDirect    = "direct"
	BySynonym   = "synonym"
	ByText      = "text"
	ByAction    = "action"
	ByFallback  = "fallback"
)

// Context is the resolved, concrete edit region derived from an intent and a
// document: the selector, the minimal surrounding HTML/CSS for a focused edit,
// and which fallback strategy produced it.
type Context struct {
	Selector        string      `json:"selector"`
	MatchedTag      string      `json:"matched_tag,omitempty"`
	SurroundingHTML string      `json:"surrounding_html"`
	SurroundingCSS  string      `json:"surrounding_css"`
	Tier            intent.Tier `json:"tier"`
	ResolvedBy      string      `json:"resolved_by"`
}

// Resolve walks the fallback chain in strict order, first success wins:
// explicit selection, direct selector, visual synonym, text search, action
// default, absolute fallback (body). It then applies the post-resolution tier
// elevation: a simple-tier request whose action or message carries layout
// vocabulary is elevated to medium.
func Resolve(it intent.Intent, doc page.Document) Context {
	ctx := resolveSelector(it, doc)

	// Tier elevation runs after and independently of the classifier's own
	// assignment; it only ever escalates.
	if ctx.Tier == intent.TierSimple &&
		(intent.HasLayoutLanguage(it.Action) || intent.HasLayoutLanguage(it.NormalizedMessage)) {
		ctx.Tier = intent.Escalate(ctx.Tier, intent.TierMedium)
	}

	ctx.SurroundingHTML, ctx.MatchedTag = surroundingHTML(doc.HTML, ctx.Selector)
	ctx.SurroundingCSS = surroundingCSS(doc.CSS, ctx.Selector, ctx.MatchedTag)

	log.Printf("component=resolve action=resolved selector=%s by=%s tier=%s",
		ctx.Selector, ctx.ResolvedBy, ctx.Tier)
	return ctx
}

func resolveSelector(it intent.Intent, doc page.Document) Context {
	// Explicit selection deliberately widens scope to the whole body: the
	// model needs the surrounding layout to edit the selected elements
	// without breaking it, and the element list travels separately to the
	// mutation stage. Forcing full tier keeps a fragment merge from
	// discarding unselected siblings.
	if it.HasSelection {
		return Context{
			Selector:   "body",
			Tier:       intent.Escalate(it.Tier, intent.TierFull),
			ResolvedBy: BySelection,
		}
	}

	hint := strings.ToLower(strings.TrimSpace(it.TargetHint))

	if sel, ok := tryDirectSelector(doc.HTML, hint); ok {
		return Context{Selector: sel, Tier: it.Tier, ResolvedBy: ByDirect}
	}
	if sel, ok := trySynonyms(doc.HTML, hint); ok {
		return Context{Selector: sel, Tier: it.Tier, ResolvedBy: BySynonym}
	}
	if sel, ok := tryTextSearch(doc.HTML, hint); ok {
		return Context{Selector: sel, Tier: it.Tier, ResolvedBy: ByText}
	}
	if sel, ok := tryActionDefault(doc.HTML, it.Action); ok {
		return Context{Selector: sel, Tier: it.Tier, ResolvedBy: ByAction}
	}

	return Context{Selector: "body", Tier: it.Tier, ResolvedBy: ByFallback}
}

// tryDirectSelector accepts hints that already look like selectors: #id,
// .class, a bare tag name, or a hyphenated token (checked as both class and
// id). The selector must actually exist in the document to win.
func tryDirectSelector(html, hint string) (string, bool) {
	if hint == "" {
		return "", false
	}

	if strings.HasPrefix(hint, "#") || strings.HasPrefix(hint, ".") {
		if markup.SelectorExists(html, hint) {
			return hint, true
		}
		return "", false
	}

	if strings.Contains(hint, "-") {
		for _, sel := range []string{"." + hint, "#" + hint} {
			if markup.SelectorExists(html, sel) {
				return sel, true
			}
		}
		return "", false
	}

	if markup.SelectorExists(html, hint) {
		return hint, true
	}
	return "", false
}

// trySynonyms looks the hint up in the visual synonym table and picks the
// first candidate selector that exists in the document.
func trySynonyms(html, hint string) (string, bool) {
	for _, noun := range synonymOrder {
		if !strings.Contains(hint, noun) {
			continue
		}
		for _, sel := range visualSynonyms[noun] {
			if markup.SelectorExists(html, sel) {
				return sel, true
			}
		}
	}
	return "", false
}

var elementTextRe = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9-]*)([^>]*)>([^<]*)`)
var idAttrRe = regexp.MustCompile(`(?i)\bid\s*=\s*["']([^"']+)["']`)
var classAttrRe = regexp.MustCompile(`(?i)\bclass\s*=\s*["']([^"']+)["']`)

// tryTextSearch finds any element whose direct text content contains the hint
// and addresses it by id, else first class, else tag name.
func tryTextSearch(html, hint string) (string, bool) {
	if hint == "" || hint == "body" {
		return "", false
	}
	for _, m := range elementTextRe.FindAllStringSubmatch(html, -1) {
		tag, attrs, text := m[1], m[2], m[3]
		if !strings.Contains(strings.ToLower(text), hint) {
			continue
		}
		if id := idAttrRe.FindStringSubmatch(attrs); id != nil {
			return "#" + id[1], true
		}
		if class := classAttrRe.FindStringSubmatch(attrs); class != nil {
			first := strings.Fields(class[1])
			if len(first) > 0 {
				return "." + first[0], true
			}
		}
		return strings.ToLower(tag), true
	}
	return "", false
}

// tryActionDefault tries a list of probable targets for known action verbs.
func tryActionDefault(html, action string) (string, bool) {
	candidates, ok := actionDefaults[strings.ToLower(strings.TrimSpace(action))]
	if !ok {
		return "", false
	}
	for _, sel := range candidates {
		if markup.SelectorExists(html, sel) {
			return sel, true
		}
	}
	return "", false
}

// surroundingHTML extracts the minimal substring spanning the matched element
// through its balanced close tag, falling back to the whole document when the
// region is unbounded.
func surroundingHTML(html, selector string) (string, string) {
	m, ok := markup.FindElement(html, selector)
	if !ok {
		return html, ""
	}
	return m.Outer(html), m.Tag
}

// surroundingCSS collects every rule whose selector text contains either the
// resolved selector or its matched tag name. Substring containment, not exact
// match, so compound selectors like ".card .title" ride along.
func surroundingCSS(css, selector, tag string) string {
	var parts []string
	for _, rule := range markup.ParseRules(css) {
		if strings.Contains(rule.Selector, selector) || (tag != "" && strings.Contains(rule.Selector, tag)) {
			parts = append(parts, strings.TrimSpace(rule.Raw(css)))
		}
	}
	return strings.Join(parts, "\n\n")
}
