// ABOUTME: Mutation dispatcher selecting and executing one of five LLM prompting strategies.
// ABOUTME: Fragment results are spliced through the merge engine; full-document results pass through.

package mutate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/2389-research/pagesmith/intent"
	"github.com/2389-research/pagesmith/llm"
	"github.com/2389-research/pagesmith/markup"
	"github.com/2389-research/pagesmith/page"
	"github.com/2389-research/pagesmith/resolve"
)

// Strategy names recorded in Result.MutationType.
const (
	StrategySelection      = "selection"
	StrategyFull           = "full"
	StrategyFragment       = "fragment"
	StrategyImageReference = "image-reference"
	StrategyImageEmbed     = "image-embed"
)

// defaultMessage is shown when the model's own explanation cannot be
// recovered. The user is never shown raw parse errors.
const defaultMessage = "I updated the code as requested."

// Result is the outcome of one mutation attempt.
type Result struct {
	Patch        page.Patch `json:"patch"`
	Message      string     `json:"message"`
	Usage        llm.Usage  `json:"usage"`
	MutationType string     `json:"mutation_type"`
}

// Options carries per-request mutation knobs.
type Options struct {
	// Feedback is validation feedback from a failed prior attempt,
	// re-submitted as additional prompt context.
	Feedback string
	// Image is the attached reference image, if any.
	Image *llm.ImageData
	// Model is the concrete model id to use.
	Model string
	// Provider overrides the client's default provider.
	Provider string
}

// Dispatcher chooses and executes a mutation strategy.
type Dispatcher struct {
	client llm.Completer
}

// NewDispatcher creates a Dispatcher over the given completer.
func NewDispatcher(client llm.Completer) *Dispatcher {
	return &Dispatcher{client: client}
}

// Mutate runs the strategy selected by the intent's tier and input modality.
// Selection fires first whenever present; an attached image picks between the
// two image strategies; the full tier regenerates the document; simple and
// medium tiers take the fragment path. The fragment strategy returns an error
// on any failure rather than degrading silently, so the orchestrator can
// escalate to the full strategy. When the call itself succeeded but the
// response could not be used, the error comes with a partial Result carrying
// the tokens that call consumed.
func (d *Dispatcher) Mutate(ctx context.Context, it intent.Intent, rctx resolve.Context, doc page.Document, opts Options) (*Result, error) {
	switch {
	case it.HasSelection:
		return d.wholeDocument(ctx, StrategySelection, selectionSystemPrompt(), it, doc, opts)
	case it.HasImage && opts.Image != nil:
		if doc.IsEmpty() {
			return d.wholeDocument(ctx, StrategyImageReference, imageReferenceSystemPrompt(), it, doc, opts)
		}
		return d.wholeDocument(ctx, StrategyImageEmbed, imageEmbedSystemPrompt(), it, doc, opts)
	case rctx.Tier == intent.TierFull:
		return d.wholeDocument(ctx, StrategyFull, fullSystemPrompt(), it, doc, opts)
	default:
		return d.fragment(ctx, it, rctx, doc, opts)
	}
}

// wholeDocument covers the selection, full, and both image strategies: a
// low-temperature, high-token-budget call returning complete code fields.
func (d *Dispatcher) wholeDocument(ctx context.Context, strategy, system string, it intent.Intent, doc page.Document, opts Options) (*Result, error) {
	parts := []llm.ContentPart{llm.TextPart(documentUserPrompt(it, doc, opts.Feedback))}
	if opts.Image != nil {
		parts = append(parts, llm.ContentPart{Kind: llm.ContentImage, Image: opts.Image})
	}

	resp, err := d.client.Complete(ctx, llm.Request{
		Provider:    opts.Provider,
		Model:       opts.Model,
		System:      system,
		Messages:    []llm.Message{llm.UserMessageWithParts(parts...)},
		MaxTokens:   16000,
		Temperature: llm.Temp(0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("%s strategy: %w", strategy, err)
	}

	parsed, err := ParseResponse(resp.Text())
	if err != nil {
		return &Result{Usage: resp.Usage, MutationType: strategy},
			fmt.Errorf("%s strategy: %w", strategy, err)
	}

	return &Result{
		Patch: page.Patch{
			HTML:       parsed.HTML,
			CSS:        parsed.CSS,
			JavaScript: parsed.JavaScript,
		},
		Message:      messageOrDefault(parsed.Message),
		Usage:        resp.Usage,
		MutationType: strategy,
	}, nil
}

// fragment requests only the changed sub-fragment plus a merge-mode hint and
// splices it into the document via the merge engine. JavaScript fragments are
// always appended, never replaced: JS is treated as additive-only so an edit
// can never delete unrelated behavior.
func (d *Dispatcher) fragment(ctx context.Context, it intent.Intent, rctx resolve.Context, doc page.Document, opts Options) (*Result, error) {
	resp, err := d.client.Complete(ctx, llm.Request{
		Provider:    opts.Provider,
		Model:       opts.Model,
		System:      fragmentSystemPrompt(),
		Messages:    []llm.Message{llm.UserMessage(fragmentUserPrompt(it, rctx, opts.Feedback))},
		MaxTokens:   4000,
		Temperature: llm.Temp(0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("fragment strategy: %w", err)
	}

	parsed, err := ParseResponse(resp.Text())
	if err != nil {
		return &Result{Usage: resp.Usage, MutationType: StrategyFragment},
			fmt.Errorf("fragment strategy: %w", err)
	}
	if !parsed.HasCode() {
		return &Result{Usage: resp.Usage, MutationType: StrategyFragment},
			fmt.Errorf("fragment strategy: %w", &ParseError{Raw: resp.Text()})
	}

	mode := markup.ParseMode(parsed.MergeMode)
	log.Printf("component=mutate action=fragment_merge selector=%s mode=%s", rctx.Selector, mode)

	var patch page.Patch
	if parsed.HTML != nil && strings.TrimSpace(*parsed.HTML) != "" {
		merged := markup.MergeHTML(doc.HTML, *parsed.HTML, rctx.Selector, mode)
		patch.HTML = &merged
	}
	if parsed.CSS != nil && strings.TrimSpace(*parsed.CSS) != "" {
		merged := markup.MergeCSS(doc.CSS, *parsed.CSS)
		patch.CSS = &merged
	}
	if parsed.JavaScript != nil && strings.TrimSpace(*parsed.JavaScript) != "" {
		appended := appendJS(doc.JavaScript, *parsed.JavaScript)
		patch.JavaScript = &appended
	}

	return &Result{
		Patch:        patch,
		Message:      messageOrDefault(parsed.Message),
		Usage:        resp.Usage,
		MutationType: StrategyFragment,
	}, nil
}

func appendJS(existing, fragment string) string {
	existing = strings.TrimRight(existing, "\n")
	fragment = strings.TrimSpace(fragment)
	if existing == "" {
		return fragment
	}
	return existing + "\n\n" + fragment
}

func messageOrDefault(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return defaultMessage
	}
	return msg
}
