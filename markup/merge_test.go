// ABOUTME: Tests for HTML splice modes and selector-aware CSS upsert.
// ABOUTME: Covers replace idempotence, append non-idempotence, and degradation to append.

package markup

import (
	"strings"
	"testing"
)

func TestMergeHTMLReplace(t *testing.T) {
	doc := `<body><div class="box">old</div></body>`
	got := MergeHTML(doc, "<p>new</p>", ".box", ModeReplace)
	want := "<body><div class=\"box\">\n<p>new</p>\n</div></body>"
	if got != want {
		t.Fatalf("replace merge mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestMergeHTMLReplaceIdempotent(t *testing.T) {
	doc := `<body><div class="box">old</div></body>`
	once := MergeHTML(doc, "<p>new</p>", ".box", ModeReplace)
	twice := MergeHTML(once, "<p>new</p>", ".box", ModeReplace)
	if once != twice {
		t.Fatalf("replace should converge:\n once %q\ntwice %q", once, twice)
	}
}

func TestMergeHTMLAppendNotIdempotent(t *testing.T) {
	doc := `<body><ul id="list"><li>a</li></ul></body>`
	once := MergeHTML(doc, "<li>b</li>", "#list", ModeAppend)
	twice := MergeHTML(once, "<li>b</li>", "#list", ModeAppend)
	if n := strings.Count(twice, "<li>b</li>"); n != 2 {
		t.Fatalf("append twice should leave two copies, found %d in %q", n, twice)
	}
}

func TestMergeHTMLWrap(t *testing.T) {
	doc := `<body><div class="box">old</div></body>`
	got := MergeHTML(doc, `<section class="box">new</section>`, ".box", ModeWrap)
	if strings.Contains(got, "<div") {
		t.Fatalf("wrap should remove the original element: %q", got)
	}
	if !strings.Contains(got, `<section class="box">new</section>`) {
		t.Fatalf("wrap result missing fragment: %q", got)
	}
}

func TestMergeHTMLUnresolvedAppendsAfterDocument(t *testing.T) {
	doc := `<body><p>text</p></body>`
	got := MergeHTML(doc, "<footer>f</footer>", "#missing", ModeReplace)
	if !strings.HasSuffix(got, "<footer>f</footer>") {
		t.Fatalf("fragment must be appended, never dropped: %q", got)
	}
	if !strings.HasPrefix(got, doc) {
		t.Fatalf("original document must be preserved: %q", got)
	}
}

func TestMergeHTMLPreservesSiblings(t *testing.T) {
	doc := `<body><nav>n</nav><div class="box">old</div><footer>f</footer></body>`
	got := MergeHTML(doc, "<p>new</p>", ".box", ModeReplace)
	for _, keep := range []string{"<nav>n</nav>", "<footer>f</footer>"} {
		if !strings.Contains(got, keep) {
			t.Fatalf("sibling %q lost in merge: %q", keep, got)
		}
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"replace", ModeReplace},
		{"APPEND", ModeAppend},
		{" wrap ", ModeWrap},
		{"", ModeReplace},
		{"garbage", ModeReplace},
	}
	for _, tc := range cases {
		if got := ParseMode(tc.in); got != tc.want {
			t.Fatalf("ParseMode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMergeCSSReplacesExistingRule(t *testing.T) {
	doc := ".box { color: red; }\n.other { margin: 0; }"
	got := MergeCSS(doc, ".box { color: blue; }")
	if strings.Count(got, ".box") != 1 {
		t.Fatalf("expected exactly one .box rule: %q", got)
	}
	if !strings.Contains(got, "color: blue") || strings.Contains(got, "color: red") {
		t.Fatalf("rule not replaced in place: %q", got)
	}
	if !strings.Contains(got, ".other { margin: 0; }") {
		t.Fatalf("unrelated rule damaged: %q", got)
	}
}

func TestMergeCSSAppendsNovelRules(t *testing.T) {
	doc := ".box { color: red; }"
	got := MergeCSS(doc, ".box { color: blue; }\n.new { padding: 4px; }")
	if !strings.Contains(got, "color: blue") {
		t.Fatalf("existing rule not updated: %q", got)
	}
	if !strings.Contains(got, ".new { padding: 4px; }") {
		t.Fatalf("novel rule not appended: %q", got)
	}
}

func TestMergeCSSBareDeclarationsAppendedVerbatim(t *testing.T) {
	doc := ".box { color: red; }"
	frag := "font-size: 18px;"
	got := MergeCSS(doc, frag)
	if !strings.Contains(got, frag) {
		t.Fatalf("rule-less fragment must be appended as a dump: %q", got)
	}
}

func TestMergeCSSIntoEmptyDocument(t *testing.T) {
	got := MergeCSS("", ".box { color: blue; }")
	if got != ".box { color: blue; }" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestParseRules(t *testing.T) {
	css := "/* c */\n.a { x: 1; }\n@media (max-width: 600px) {\n.b { y: 2; }\n}"
	rules := ParseRules(css)
	var selectors []string
	for _, r := range rules {
		selectors = append(selectors, r.Selector)
	}
	joined := strings.Join(selectors, ",")
	if !strings.Contains(joined, ".a") {
		t.Fatalf("missing .a rule: %v", selectors)
	}
	for _, s := range selectors {
		if strings.HasPrefix(s, "@") {
			t.Fatalf("at-rule header must not parse as a rule: %v", selectors)
		}
	}
}

func TestFindRuleExactSelectorMatch(t *testing.T) {
	css := ".card .title { a: 1; }\n.card { b: 2; }"
	r, ok := FindRule(css, ".card")
	if !ok {
		t.Fatal("expected .card rule")
	}
	if r.Declarations != "b: 2;" {
		t.Fatalf("matched wrong rule: %+v", r)
	}
}
