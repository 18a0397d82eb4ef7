// ABOUTME: Tests for patch application and the nil-means-unchanged contract.

package page

import "testing"

func TestApplyKeepsNilFieldsByteIdentical(t *testing.T) {
	doc := Document{HTML: "<p>a</p>", CSS: "p{}", JavaScript: "x()"}

	out := doc.Apply(Patch{CSS: Str("p{margin:0}")})

	if out.HTML != doc.HTML || out.JavaScript != doc.JavaScript {
		t.Fatalf("nil fields must stay untouched: %+v", out)
	}
	if out.CSS != "p{margin:0}" {
		t.Fatalf("patched field not applied: %q", out.CSS)
	}
	if doc.CSS != "p{}" {
		t.Fatal("input document must not be mutated")
	}
}

func TestApplyEmptyStringIsAChange(t *testing.T) {
	doc := Document{JavaScript: "x()"}
	out := doc.Apply(Patch{JavaScript: Str("")})
	if out.JavaScript != "" {
		t.Fatal("an explicit empty string clears the field; only nil preserves it")
	}
}

func TestChanged(t *testing.T) {
	doc := Document{HTML: "<p>a</p>"}

	if doc.Changed(Patch{}) {
		t.Error("empty patch changes nothing")
	}
	if doc.Changed(Patch{HTML: Str("<p>a</p>")}) {
		t.Error("identical value is not a change")
	}
	if !doc.Changed(Patch{HTML: Str("<p>b</p>")}) {
		t.Error("different value is a change")
	}
}

func TestIsEmpty(t *testing.T) {
	if !(Document{HTML: "  \n"}).IsEmpty() {
		t.Error("whitespace-only document is empty")
	}
	if (Document{CSS: "p{}"}).IsEmpty() {
		t.Error("document with CSS is not empty")
	}
}
