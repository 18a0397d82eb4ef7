// ABOUTME: Tests for strategy selection and fragment splicing in the dispatcher.
// ABOUTME: A recording fake completer exposes which prompt each strategy sent.

package mutate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/2389-research/pagesmith/intent"
	"github.com/2389-research/pagesmith/llm"
	"github.com/2389-research/pagesmith/page"
	"github.com/2389-research/pagesmith/resolve"
)

type recordingCompleter struct {
	lastReq llm.Request
	text    string
	err     error
}

func (r *recordingCompleter) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	r.lastReq = req
	if r.err != nil {
		return nil, r.err
	}
	return &llm.Response{
		Message: llm.AssistantMessage(r.text),
		Usage:   llm.Usage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150},
	}, nil
}

var testDoc = page.Document{
	HTML: `<body><div class="box">old</div></body>`,
	CSS:  `.box { color: red; }`,
}

func TestMutateFragmentSplicesThroughMergeEngine(t *testing.T) {
	fake := &recordingCompleter{text: `{"html":"<p>new</p>","css":".box { color: blue; }","merge_mode":"replace","message":"swapped"}`}
	d := NewDispatcher(fake)

	it := intent.Intent{Tier: intent.TierSimple, NormalizedMessage: "change the box"}
	rctx := resolve.Context{Selector: ".box", Tier: intent.TierSimple, SurroundingHTML: `<div class="box">old</div>`}

	res, err := d.Mutate(context.Background(), it, rctx, testDoc, Options{Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MutationType != StrategyFragment {
		t.Fatalf("expected fragment strategy, got %s", res.MutationType)
	}
	if res.Patch.HTML == nil || !strings.Contains(*res.Patch.HTML, "<p>new</p>") {
		t.Fatalf("fragment not merged: %+v", res.Patch)
	}
	if !strings.Contains(*res.Patch.HTML, "<body>") {
		t.Fatalf("merge must return the full document: %q", *res.Patch.HTML)
	}
	if res.Patch.CSS == nil || strings.Count(*res.Patch.CSS, ".box") != 1 {
		t.Fatalf("css rule not upserted: %+v", res.Patch.CSS)
	}
	if res.Message != "swapped" {
		t.Fatalf("message lost: %q", res.Message)
	}
}

func TestMutateFragmentJSAlwaysAppended(t *testing.T) {
	fake := &recordingCompleter{text: `{"javascript":"console.log('new');","merge_mode":"replace"}`}
	d := NewDispatcher(fake)

	doc := testDoc
	doc.JavaScript = "console.log('old');"

	it := intent.Intent{Tier: intent.TierSimple}
	rctx := resolve.Context{Selector: ".box", Tier: intent.TierSimple}

	res, err := d.Mutate(context.Background(), it, rctx, doc, Options{Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	js := *res.Patch.JavaScript
	if !strings.Contains(js, "console.log('old');") || !strings.Contains(js, "console.log('new');") {
		t.Fatalf("JS must be additive-only: %q", js)
	}
	if !strings.Contains(js[strings.Index(js, "old"):], "new") {
		t.Fatalf("new JS must come after existing JS: %q", js)
	}
}

func TestMutateFragmentFailureIsAnError(t *testing.T) {
	fake := &recordingCompleter{err: errors.New("provider down")}
	d := NewDispatcher(fake)

	it := intent.Intent{Tier: intent.TierSimple}
	rctx := resolve.Context{Selector: ".box", Tier: intent.TierSimple}

	if _, err := d.Mutate(context.Background(), it, rctx, testDoc, Options{Model: "m"}); err == nil {
		t.Fatal("fragment strategy must surface failure for escalation")
	}

	fake = &recordingCompleter{text: "no json here"}
	d = NewDispatcher(fake)
	res, err := d.Mutate(context.Background(), it, rctx, testDoc, Options{Model: "m"})
	if err == nil {
		t.Fatal("unparseable response must surface failure for escalation")
	}
	if res == nil || res.Usage.TotalTokens != 150 {
		t.Fatalf("tokens spent on the unparseable attempt must be reported: %+v", res)
	}
}

func TestMutateUnparseableFullResponseCarriesUsage(t *testing.T) {
	fake := &recordingCompleter{text: "sorry, I cannot do that"}
	d := NewDispatcher(fake)

	it := intent.Intent{Tier: intent.TierFull}
	rctx := resolve.Context{Selector: "body", Tier: intent.TierFull}

	res, err := d.Mutate(context.Background(), it, rctx, testDoc, Options{Model: "m"})
	if err == nil {
		t.Fatal("unparseable response must be an error")
	}
	if res == nil || res.Usage.TotalTokens != 150 {
		t.Fatalf("tokens spent on the unparseable attempt must be reported: %+v", res)
	}
}

func TestMutateFullTierReturnsWholeDocumentPatch(t *testing.T) {
	fake := &recordingCompleter{text: `{"html":"<body>rebuilt</body>","css":"body { margin: 0; }"}`}
	d := NewDispatcher(fake)

	it := intent.Intent{Tier: intent.TierFull, NormalizedMessage: "rebuild it"}
	rctx := resolve.Context{Selector: "body", Tier: intent.TierFull}

	res, err := d.Mutate(context.Background(), it, rctx, testDoc, Options{Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MutationType != StrategyFull {
		t.Fatalf("expected full strategy, got %s", res.MutationType)
	}
	if *res.Patch.HTML != "<body>rebuilt</body>" {
		t.Fatalf("full patch should pass through unmerged: %q", *res.Patch.HTML)
	}
	if res.Patch.JavaScript != nil {
		t.Fatal("absent field must stay nil")
	}
}

func TestMutateSelectionHasHighestPriority(t *testing.T) {
	fake := &recordingCompleter{text: `{"html":"<body>edited</body>"}`}
	d := NewDispatcher(fake)

	it := intent.Intent{
		Tier:             intent.TierSimple,
		HasSelection:     true,
		SelectionContext: "button#buy",
	}
	rctx := resolve.Context{Selector: "body", Tier: intent.TierFull}

	res, err := d.Mutate(context.Background(), it, rctx, testDoc, Options{Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MutationType != StrategySelection {
		t.Fatalf("selection must win, got %s", res.MutationType)
	}
	if !strings.Contains(fake.lastReq.Messages[0].TextContent(), "button#buy") {
		t.Fatal("selection context must reach the prompt")
	}
}

func TestMutateImageStrategies(t *testing.T) {
	img := &llm.ImageData{Data: []byte{1, 2, 3}, MediaType: "image/png"}

	// Existing code: embed.
	fake := &recordingCompleter{text: `{"html":"<img src='x'>"}`}
	d := NewDispatcher(fake)
	it := intent.Intent{Tier: intent.TierFull, HasImage: true}
	rctx := resolve.Context{Selector: "body", Tier: intent.TierFull}

	res, err := d.Mutate(context.Background(), it, rctx, testDoc, Options{Model: "m", Image: img})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MutationType != StrategyImageEmbed {
		t.Fatalf("expected image-embed, got %s", res.MutationType)
	}

	// Image content part must travel with the message.
	foundImage := false
	for _, part := range fake.lastReq.Messages[0].Content {
		if part.Kind == llm.ContentImage {
			foundImage = true
		}
	}
	if !foundImage {
		t.Fatal("image part missing from request")
	}

	// No existing code: recreate from the image.
	res, err = d.Mutate(context.Background(), it, rctx, page.Document{}, Options{Model: "m", Image: img})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MutationType != StrategyImageReference {
		t.Fatalf("expected image-reference, got %s", res.MutationType)
	}
}

func TestMutatePromptsForbidDataURLs(t *testing.T) {
	fake := &recordingCompleter{text: `{"html":"<body>x</body>"}`}
	d := NewDispatcher(fake)

	it := intent.Intent{Tier: intent.TierFull}
	rctx := resolve.Context{Selector: "body", Tier: intent.TierFull}
	if _, err := d.Mutate(context.Background(), it, rctx, testDoc, Options{Model: "m"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(fake.lastReq.System, PlaceholderImageURL) {
		t.Fatal("system prompt must require the placeholder URL")
	}
	if !strings.Contains(fake.lastReq.System, "base64") {
		t.Fatal("system prompt must forbid inlined base64 images")
	}
}

func TestMutateDefaultMessageWhenUnrecoverable(t *testing.T) {
	fake := &recordingCompleter{text: `{"html":"<body>x</body>"}`}
	d := NewDispatcher(fake)

	it := intent.Intent{Tier: intent.TierFull}
	rctx := resolve.Context{Selector: "body", Tier: intent.TierFull}
	res, err := d.Mutate(context.Background(), it, rctx, testDoc, Options{Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message == "" {
		t.Fatal("message must never be empty")
	}
}
