// ABOUTME: Tests for the resolver fallback chain and surrounding-context extraction.
// ABOUTME: Covers chain priority, totality, tier elevation, and CSS containment collection.

package resolve

import (
	"strings"
	"testing"

	"github.com/2389-research/pagesmith/intent"
	"github.com/2389-research/pagesmith/page"
)

var testDoc = page.Document{
	HTML: `<body>
<section class="hero-section"><h1 id="headline">Welcome Home</h1></section>
<div class="card pricing"><p>Basic plan</p></div>
<button class="cta">Buy now</button>
</body>`,
	CSS: `.hero-section { padding: 40px; }
.hero-section .title { font-size: 32px; }
.card { border: 1px solid #eee; }
button { cursor: pointer; }`,
}

func TestResolveDirectSelector(t *testing.T) {
	it := intent.Intent{TargetHint: "#headline", Tier: intent.TierSimple, Action: "recolor"}
	ctx := Resolve(it, testDoc)
	if ctx.ResolvedBy != ByDirect || ctx.Selector != "#headline" {
		t.Fatalf("expected direct #headline, got %+v", ctx)
	}
	if ctx.MatchedTag != "h1" {
		t.Fatalf("expected matched tag h1, got %q", ctx.MatchedTag)
	}
}

func TestResolveHyphenatedTokenAsClassOrID(t *testing.T) {
	it := intent.Intent{TargetHint: "hero-section", Tier: intent.TierMedium}
	ctx := Resolve(it, testDoc)
	if ctx.ResolvedBy != ByDirect || ctx.Selector != ".hero-section" {
		t.Fatalf("expected direct .hero-section, got %+v", ctx)
	}
}

func TestResolveSynonymWhereDirectFails(t *testing.T) {
	// "hero" is not a tag and not a class in the document; the synonym table
	// must land on .hero-section.
	it := intent.Intent{TargetHint: "hero", Tier: intent.TierMedium}
	ctx := Resolve(it, testDoc)
	if ctx.ResolvedBy != BySynonym {
		t.Fatalf("expected synonym resolution, got %+v", ctx)
	}
	if ctx.Selector != ".hero-section" {
		t.Fatalf("expected .hero-section, got %q", ctx.Selector)
	}
}

func TestResolveTextSearch(t *testing.T) {
	it := intent.Intent{TargetHint: "welcome home", Tier: intent.TierMedium}
	ctx := Resolve(it, testDoc)
	if ctx.ResolvedBy != ByText {
		t.Fatalf("expected text search, got %+v", ctx)
	}
	if ctx.Selector != "#headline" {
		t.Fatalf("text search should prefer the id, got %q", ctx.Selector)
	}
}

func TestResolveTextSearchPrefersClassOverTag(t *testing.T) {
	it := intent.Intent{TargetHint: "basic plan", Tier: intent.TierMedium}
	ctx := Resolve(it, testDoc)
	if ctx.ResolvedBy != ByText || ctx.Selector != "p" {
		// The <p> has no id or class; its tag name is the answer.
		t.Fatalf("expected tag p from text search, got %+v", ctx)
	}
}

func TestResolveActionDefault(t *testing.T) {
	it := intent.Intent{TargetHint: "something nonexistent", Action: "recolor", Tier: intent.TierMedium}
	ctx := Resolve(it, testDoc)
	if ctx.ResolvedBy != ByAction {
		t.Fatalf("expected action default, got %+v", ctx)
	}
	// recolor's candidate list starts with p, which the document contains.
	if ctx.Selector != "p" {
		t.Fatalf("expected first recolor candidate, got %q", ctx.Selector)
	}
}

func TestResolveAbsoluteFallbackIsBody(t *testing.T) {
	it := intent.Intent{TargetHint: "zzz-unknown", Action: "unknown-verb", Tier: intent.TierMedium}
	ctx := Resolve(it, testDoc)
	if ctx.ResolvedBy != ByFallback || ctx.Selector != "body" {
		t.Fatalf("chain must terminate at body, got %+v", ctx)
	}
	if ctx.Selector == "" {
		t.Fatal("selector must never be empty")
	}
}

func TestResolveSelectionWidensToBodyAndForcesFull(t *testing.T) {
	it := intent.Intent{
		TargetHint:   "#headline",
		HasSelection: true,
		Tier:         intent.TierSimple,
	}
	ctx := Resolve(it, testDoc)
	if ctx.ResolvedBy != BySelection || ctx.Selector != "body" {
		t.Fatalf("selection must widen to body, got %+v", ctx)
	}
	if ctx.Tier != intent.TierFull {
		t.Fatalf("selection must force full tier, got %s", ctx.Tier)
	}
}

func TestResolveTierElevationOnLayoutLanguage(t *testing.T) {
	it := intent.Intent{
		TargetHint:        "#headline",
		Tier:              intent.TierSimple,
		NormalizedMessage: "make the headline red and center it",
	}
	ctx := Resolve(it, testDoc)
	if ctx.Tier != intent.TierMedium {
		t.Fatalf("layout language must elevate simple to medium, got %s", ctx.Tier)
	}

	// Without layout language the tier is untouched.
	it.NormalizedMessage = "make the headline red"
	ctx = Resolve(it, testDoc)
	if ctx.Tier != intent.TierSimple {
		t.Fatalf("tier should stay simple, got %s", ctx.Tier)
	}
}

func TestSurroundingHTMLIsBalancedSpan(t *testing.T) {
	it := intent.Intent{TargetHint: ".card", Tier: intent.TierMedium}
	ctx := Resolve(it, testDoc)
	if !strings.HasPrefix(ctx.SurroundingHTML, `<div class="card pricing">`) ||
		!strings.HasSuffix(ctx.SurroundingHTML, "</div>") {
		t.Fatalf("surrounding HTML should span the element: %q", ctx.SurroundingHTML)
	}
	if strings.Contains(ctx.SurroundingHTML, "hero-section") {
		t.Fatalf("surrounding HTML leaked unrelated markup: %q", ctx.SurroundingHTML)
	}
}

func TestSurroundingCSSUsesSubstringContainment(t *testing.T) {
	it := intent.Intent{TargetHint: "hero-section", Tier: intent.TierMedium}
	ctx := Resolve(it, testDoc)
	if !strings.Contains(ctx.SurroundingCSS, ".hero-section { padding: 40px; }") {
		t.Fatalf("missing exact rule: %q", ctx.SurroundingCSS)
	}
	// Compound selectors containing the resolved selector ride along.
	if !strings.Contains(ctx.SurroundingCSS, ".hero-section .title") {
		t.Fatalf("missing compound rule: %q", ctx.SurroundingCSS)
	}
	if strings.Contains(ctx.SurroundingCSS, ".card") {
		t.Fatalf("unrelated rule collected: %q", ctx.SurroundingCSS)
	}
}

func TestResolveUnboundedSelectorFallsBackToWholeDocument(t *testing.T) {
	doc := page.Document{HTML: `<div class="open">never closed`}
	it := intent.Intent{TargetHint: ".open", Tier: intent.TierMedium}
	ctx := Resolve(it, doc)
	if ctx.SurroundingHTML != doc.HTML {
		t.Fatalf("unbounded region must fall back to the whole document: %q", ctx.SurroundingHTML)
	}
}
