// ABOUTME: System and user prompt builders for the five mutation strategies.
// ABOUTME: Every prompt demands the fixed JSON shape and forbids inlined data-URL images.

package mutate

import (
	"fmt"
	"strings"

	"github.com/2389-research/pagesmith/intent"
	"github.com/2389-research/pagesmith/page"
	"github.com/2389-research/pagesmith/resolve"
)

// PlaceholderImageURL is the fixed sentinel the model must use wherever an
// image belongs. Inlined base64/data-URL images blow up the response size and
// are rejected by the prompts outright.
const PlaceholderImageURL = "https://placehold.co/600x400"

const responseShape = `Respond with only a JSON object, no prose outside it:
{"html": "<code or omit the key if unchanged>",
 "css": "<code or omit the key if unchanged>",
 "javascript": "<code or omit the key if unchanged>",
 "message": "<one sentence describing the change>"}`

const imageRule = `Never inline base64 or data: URLs for images. Use the placeholder URL ` +
	PlaceholderImageURL + ` wherever an image is needed.`

func fragmentSystemPrompt() string {
	return `You are a surgical web page editor. You will be given one element's HTML,
the CSS rules touching it, and an edit request. Return ONLY the changed
sub-fragment, not the whole page.
` + responseShape + `
Also include "merge_mode": one of "replace" (new inner content for the element),
"append" (content added inside the element), or "wrap" (a replacement for the
entire element, tags included). CSS must be complete rules ("selector { ... }").
JavaScript, if any, must be self-contained additions.
` + imageRule
}

func fullSystemPrompt() string {
	return `You are a web page editor. You will be given a page's complete HTML, CSS,
and JavaScript plus an edit request. Apply the request and return the COMPLETE
updated code for every field you change. Preserve all unrelated content exactly.
` + responseShape + `
` + imageRule
}

func selectionSystemPrompt() string {
	return `You are a web page editor. The user drew selection shapes over the rendered
page; the selected elements are listed below the request. Edit ONLY those
elements, but return the COMPLETE updated HTML, CSS, and JavaScript so the
surrounding layout survives intact.
` + responseShape + `
` + imageRule
}

func imageReferenceSystemPrompt() string {
	return `You are a web page builder. Recreate the attached image as semantic HTML and
CSS. If existing code is provided, adapt the recreation onto that structure
instead of starting over. Return complete code for every field you produce.
` + responseShape + `
` + imageRule
}

func imageEmbedSystemPrompt() string {
	return `You are a web page editor. The user wants the attached image placed into the
existing page. Put the placeholder URL into the most appropriate spot (an img
src, or a CSS background) without altering unrelated structure, and return the
complete updated code for the fields you change.
` + responseShape + `
` + imageRule
}

// fragmentUserPrompt builds the focused edit request for the fragment strategy.
func fragmentUserPrompt(it intent.Intent, rctx resolve.Context, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", it.NormalizedMessage)
	fmt.Fprintf(&b, "Target selector: %s\n", rctx.Selector)
	if it.Property != "" {
		fmt.Fprintf(&b, "Requested change: %s: %s\n", it.Property, it.Value)
	}
	fmt.Fprintf(&b, "\nElement HTML:\n%s\n", rctx.SurroundingHTML)
	if rctx.SurroundingCSS != "" {
		fmt.Fprintf(&b, "\nRelated CSS:\n%s\n", rctx.SurroundingCSS)
	}
	appendFeedback(&b, feedback)
	return b.String()
}

// documentUserPrompt builds the request for full, selection, and image
// strategies, which all operate on the complete document.
func documentUserPrompt(it intent.Intent, doc page.Document, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", it.NormalizedMessage)
	if it.HasSelection && it.SelectionContext != "" {
		fmt.Fprintf(&b, "\nSelected elements:\n%s\n", it.SelectionContext)
	}
	fmt.Fprintf(&b, "\nCurrent HTML:\n%s\n", orEmptyMarker(doc.HTML))
	fmt.Fprintf(&b, "\nCurrent CSS:\n%s\n", orEmptyMarker(doc.CSS))
	fmt.Fprintf(&b, "\nCurrent JavaScript:\n%s\n", orEmptyMarker(doc.JavaScript))
	appendFeedback(&b, feedback)
	return b.String()
}

func appendFeedback(b *strings.Builder, feedback string) {
	if feedback == "" {
		return
	}
	fmt.Fprintf(b, "\nYour previous attempt failed validation:\n%s\nFix these problems this time.\n", feedback)
}

func orEmptyMarker(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(empty)"
	}
	return s
}
