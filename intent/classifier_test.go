// ABOUTME: Tests for intent classification, tier reconciliation, and selection stripping.
// ABOUTME: Uses a scripted fake completer so no network is involved.

package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/2389-research/pagesmith/llm"
)

type scriptedCompleter struct {
	text string
	err  error
}

func (s *scriptedCompleter) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{
		Message: llm.AssistantMessage(s.text),
		Usage:   llm.Usage{InputTokens: 20, OutputTokens: 10, TotalTokens: 30},
	}, nil
}

func TestLocalTierSimpleCosmetic(t *testing.T) {
	if got := LocalTier("make the button bigger"); got != TierSimple {
		t.Fatalf("expected simple, got %s", got)
	}
}

func TestLocalTierLayoutVetoesSimple(t *testing.T) {
	// A simple size word plus layout vocabulary must never classify simple.
	if got := LocalTier("align the navbar and sidebar in a flex row"); got == TierSimple {
		t.Fatal("layout keywords must veto the simple tier")
	}
}

func TestLocalTierComplexPhraseBeatsEverything(t *testing.T) {
	if got := LocalTier("build a landing page with a red button"); got != TierFull {
		t.Fatalf("expected full, got %s", got)
	}
}

func TestLocalTierDefaultsToMedium(t *testing.T) {
	if got := LocalTier("update the testimonials"); got != TierMedium {
		t.Fatalf("expected medium, got %s", got)
	}
}

func TestCheaperTierPolicy(t *testing.T) {
	cases := []struct {
		a, b, want Tier
	}{
		{TierSimple, TierFull, TierSimple},
		{TierFull, TierSimple, TierSimple},
		{TierMedium, TierMedium, TierMedium},
		{TierFull, TierMedium, TierMedium},
	}
	for _, tc := range cases {
		if got := CheaperTier(tc.a, tc.b); got != tc.want {
			t.Fatalf("CheaperTier(%s, %s) = %s, want %s", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestEscalateNeverDowngrades(t *testing.T) {
	if got := Escalate(TierFull, TierMedium); got != TierFull {
		t.Fatalf("escalation must never downgrade, got %s", got)
	}
	if got := Escalate(TierSimple, TierMedium); got != TierMedium {
		t.Fatalf("expected medium, got %s", got)
	}
}

func TestSplitSelection(t *testing.T) {
	msg := "make these pop [SELECTED AREAS]\ndiv#hero .cta\n[/SELECTED AREAS] please"
	clean, selection, ok := SplitSelection(msg)
	if !ok {
		t.Fatal("expected selection block")
	}
	if clean != "make these pop  please" && clean != "make these pop please" {
		t.Fatalf("unexpected clean text: %q", clean)
	}
	if selection != "div#hero .cta" {
		t.Fatalf("unexpected selection: %q", selection)
	}

	clean, _, ok = SplitSelection("no markers here")
	if ok || clean != "no markers here" {
		t.Fatalf("expected passthrough, got %q ok=%v", clean, ok)
	}
}

func TestClassifyReconcilesCheaperTier(t *testing.T) {
	// Local heuristic says simple; LLM says full. Cheaper wins.
	fake := &scriptedCompleter{text: `{"action":"restyle","target":".cta","complexity":"full"}`}
	c := NewClassifier(fake, "fast", nil)

	got, usage := c.Classify(context.Background(), "make the button red", false)
	if got.Tier != TierSimple {
		t.Fatalf("expected cheaper simple tier, got %s", got.Tier)
	}
	if got.Action != "restyle" || got.TargetHint != ".cta" {
		t.Fatalf("LLM action/target not adopted: %+v", got)
	}
	if usage.TotalTokens != 30 {
		t.Fatalf("classification usage not surfaced: %+v", usage)
	}
}

func TestClassifyLLMFailureFallsBackToHeuristic(t *testing.T) {
	fake := &scriptedCompleter{err: errors.New("provider down")}
	c := NewClassifier(fake, "fast", nil)

	got, _ := c.Classify(context.Background(), "make the button red", false)
	if got.Tier != TierSimple {
		t.Fatalf("expected heuristic tier, got %s", got.Tier)
	}
	if got.Action != "modify" || got.TargetHint != "body" {
		t.Fatalf("expected default action/target, got %+v", got)
	}
}

func TestClassifyParsesFencedJSON(t *testing.T) {
	fake := &scriptedCompleter{text: "```json\n{\"action\":\"recolor\",\"target\":\"button\",\"complexity\":\"simple\"}\n```"}
	c := NewClassifier(fake, "fast", nil)

	got, _ := c.Classify(context.Background(), "paint the button blue", false)
	if got.Action != "recolor" {
		t.Fatalf("fenced JSON not recovered: %+v", got)
	}
}

func TestClassifyImageForcesFullTier(t *testing.T) {
	fake := &scriptedCompleter{text: `{"action":"modify","target":"button","complexity":"simple"}`}
	c := NewClassifier(fake, "fast", nil)

	got, _ := c.Classify(context.Background(), "make it look like this", true)
	if got.Tier != TierFull {
		t.Fatalf("image must force full tier, got %s", got.Tier)
	}
	if got.Scope != ScopeGlobal {
		t.Fatalf("full tier edits are global scope, got %s", got.Scope)
	}
}

func TestClassifyStripsSelectionBeforeClassification(t *testing.T) {
	fake := &scriptedCompleter{text: `{"action":"modify","target":"body","complexity":"medium"}`}
	c := NewClassifier(fake, "fast", nil)

	msg := "recolor this [SELECTED AREAS]button#buy[/SELECTED AREAS]"
	got, _ := c.Classify(context.Background(), msg, false)
	if !got.HasSelection {
		t.Fatal("expected HasSelection")
	}
	if got.SelectionContext != "button#buy" {
		t.Fatalf("selection context not preserved: %q", got.SelectionContext)
	}
	if gotMsg := got.NormalizedMessage; gotMsg != "recolor this" {
		t.Fatalf("marker block leaked into message: %q", gotMsg)
	}
}

func TestGuessProperty(t *testing.T) {
	prop, val := guessProperty("make the background blue")
	if prop != "background-color" || val != "blue" {
		t.Fatalf("got %s=%s", prop, val)
	}
	prop, val = guessProperty("make the title red")
	if prop != "color" || val != "red" {
		t.Fatalf("got %s=%s", prop, val)
	}
	prop, _ = guessProperty("tidy the footer")
	if prop != "" {
		t.Fatalf("expected no guess, got %s", prop)
	}
}
