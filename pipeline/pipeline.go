// ABOUTME: Pipeline orchestrator running intent, resolve, mutate, and validate in sequence.
// ABOUTME: Handles fragment-to-full escalation, the original-flow fallback, and the single semantic retry.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/2389-research/pagesmith/intent"
	"github.com/2389-research/pagesmith/llm"
	"github.com/2389-research/pagesmith/mutate"
	"github.com/2389-research/pagesmith/page"
	"github.com/2389-research/pagesmith/resolve"
	"github.com/2389-research/pagesmith/validate"
)

// ErrPipelineFailed is returned only when every strategy, including the
// original-flow fallback, has failed. The caller leaves the document unchanged.
var ErrPipelineFailed = errors.New("pipeline failed")

// Stage names recorded in trace steps.
const (
	StageIntent       = "intent"
	StageContext      = "context"
	StageMutate       = "mutate"
	StageValidate     = "validate"
	StageRetry        = "retry"
	StageEscalate     = "escalate"
	StageOriginalFlow = "original-flow"
)

// Result is the outcome of one processed request. Patch carries nil for
// unchanged fields; Document is the patch already applied to the input, with
// untouched fields byte-identical to their pre-mutation values.
type Result struct {
	Patch    page.Patch    `json:"patch"`
	Document page.Document `json:"document"`
	Message  string        `json:"message"`
	Usage    llm.Usage     `json:"usage"`
	Trace    []Step        `json:"trace"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Options carries per-request knobs from the caller.
type Options struct {
	// Image is an optional data URL of an attached reference image.
	Image string
	// ModelChoice is a model id or catalog alias ("quality", "fast", ...).
	// Empty picks the pipeline's default mutation model.
	ModelChoice string
}

// Pipeline wires the four stages over a single LLM completer.
type Pipeline struct {
	client     llm.Completer
	classifier *intent.Classifier
	dispatcher *mutate.Dispatcher
	catalog    *llm.Catalog

	classifierModel string
	mutationModel   string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithVocabulary replaces the classifier's normalization vocabulary.
func WithVocabulary(v *intent.Vocabulary) Option {
	return func(p *Pipeline) {
		p.classifier = intent.NewClassifier(p.client, p.classifierModel, v)
	}
}

// WithCatalog replaces the model catalog.
func WithCatalog(c *llm.Catalog) Option {
	return func(p *Pipeline) { p.catalog = c }
}

// WithModels sets the classifier and default mutation model choices. Both
// accept catalog aliases.
func WithModels(classifier, mutation string) Option {
	return func(p *Pipeline) {
		p.classifierModel = classifier
		p.mutationModel = mutation
	}
}

// New creates a Pipeline over the given completer. Classification defaults to
// the fast model, mutation to the quality model.
func New(client llm.Completer, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:          client,
		catalog:         llm.NewCatalog(),
		classifierModel: "fast",
		mutationModel:   "quality",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.classifierModel != "" {
		if info, ok := p.catalog.Lookup(p.classifierModel); ok {
			p.classifierModel = info.ID
		}
	}
	if p.classifier == nil {
		p.classifier = intent.NewClassifier(client, p.classifierModel, intent.NewVocabulary())
	}
	p.dispatcher = mutate.NewDispatcher(client)
	return p
}

// Process runs one request through the state machine: intent, context,
// mutate, validate, at most one feedback retry. A failed fragment mutation
// escalates to the full strategy; a failure of the selected strategy falls
// back to the original flow; only a failure of the original flow itself is a
// terminal error.
func (p *Pipeline) Process(ctx context.Context, message string, doc page.Document, opts Options) (*Result, error) {
	res := &Result{}

	image := p.parseImage(opts.Image, res)

	it, usage := p.classifier.Classify(ctx, message, image != nil)
	res.Usage.Add(usage)
	res.trace(StageIntent, fmt.Sprintf("action=%s target=%s tier=%s", it.Action, it.TargetHint, it.Tier), nil)

	rctx := resolve.Resolve(it, doc)
	res.trace(StageContext, fmt.Sprintf("selector=%s by=%s tier=%s", rctx.Selector, rctx.ResolvedBy, rctx.Tier), nil)

	model, provider := p.resolveModel(opts.ModelChoice)
	mopts := mutate.Options{Image: image, Model: model, Provider: provider}

	mres, err := p.mutateWithEscalation(ctx, it, rctx, doc, mopts, res)
	if err != nil {
		mres, err = p.originalFlow(ctx, message, doc, mopts, res)
		if err != nil {
			res.trace(StageOriginalFlow, "", err)
			return res, fmt.Errorf("%w: %v", ErrPipelineFailed, err)
		}
	}
	res.Usage.Add(mres.Usage)
	res.trace(StageMutate, "strategy="+mres.MutationType, nil)

	after := doc.Apply(mres.Patch)
	outcome := validate.Check(it, doc, after)
	res.trace(StageValidate, fmt.Sprintf("valid=%t errors=%d", outcome.Valid, len(outcome.Errors)), nil)

	if !outcome.Valid {
		mres, after = p.retryOnce(ctx, it, rctx, doc, mopts, outcome, mres, after, res)
	}

	res.Patch = mres.Patch
	res.Document = after
	res.Message = mres.Message
	return res, nil
}

// mutateWithEscalation runs the dispatcher once and, when a fragment-path
// mutation fails, retries with the tier forced to full. Failures of the
// full, selection, and image strategies propagate to the caller, which owns
// the original-flow fallback.
func (p *Pipeline) mutateWithEscalation(ctx context.Context, it intent.Intent, rctx resolve.Context, doc page.Document, mopts mutate.Options, res *Result) (*mutate.Result, error) {
	mres, err := p.dispatcher.Mutate(ctx, it, rctx, doc, mopts)
	if err == nil {
		return mres, nil
	}
	// A failed attempt can still carry usage: the call went through but the
	// response was unusable. Those tokens were spent and must be accounted.
	if mres != nil {
		res.Usage.Add(mres.Usage)
	}

	fragmentPath := !it.HasSelection && !(it.HasImage && mopts.Image != nil) && rctx.Tier != intent.TierFull
	if !fragmentPath {
		return nil, err
	}

	log.Printf("component=pipeline action=escalate_full reason=%v", err)
	res.trace(StageEscalate, "fragment failed, escalating to full", err)

	it.Tier = intent.Escalate(it.Tier, intent.TierFull)
	rctx.Tier = intent.Escalate(rctx.Tier, intent.TierFull)

	mres, err = p.dispatcher.Mutate(ctx, it, rctx, doc, mopts)
	if err != nil {
		if mres != nil {
			res.Usage.Add(mres.Usage)
		}
		return nil, err
	}
	return mres, nil
}

// retryOnce re-prompts the model exactly once with the validation feedback.
// The retry's result is used even when it fails validation again; a retry
// that errors outright keeps the first attempt. Validation never blocks the
// response.
func (p *Pipeline) retryOnce(ctx context.Context, it intent.Intent, rctx resolve.Context, doc page.Document, mopts mutate.Options, outcome validate.Outcome, first *mutate.Result, firstApplied page.Document, res *Result) (*mutate.Result, page.Document) {
	mopts.Feedback = outcome.FeedbackPrompt

	retried, err := p.dispatcher.Mutate(ctx, it, rctx, doc, mopts)
	if err != nil {
		if retried != nil {
			res.Usage.Add(retried.Usage)
		}
		log.Printf("component=pipeline action=retry_failed err=%v", err)
		res.trace(StageRetry, "retry errored, keeping first attempt", err)
		res.Warnings = append(res.Warnings, outcome.Errors...)
		return first, firstApplied
	}
	res.Usage.Add(retried.Usage)

	after := doc.Apply(retried.Patch)
	second := validate.Check(it, doc, after)
	res.trace(StageRetry, fmt.Sprintf("valid=%t errors=%d", second.Valid, len(second.Errors)), nil)
	if !second.Valid {
		log.Printf("component=pipeline action=retry_still_invalid errors=%d", len(second.Errors))
		res.Warnings = append(res.Warnings, second.Errors...)
	}
	return retried, after
}

// originalFlow is the no-intelligence fallback: the entire document plus the
// raw request to the highest-capability model with a generic prompt, parsed
// with the same tolerant strategy.
func (p *Pipeline) originalFlow(ctx context.Context, message string, doc page.Document, mopts mutate.Options, res *Result) (*mutate.Result, error) {
	log.Printf("component=pipeline action=original_flow")

	model := mopts.Model
	provider := mopts.Provider
	if info, ok := p.catalog.Lookup("quality"); ok {
		model, provider = info.ID, info.Provider
	}

	parts := []llm.ContentPart{llm.TextPart(originalFlowPrompt(message, doc))}
	if mopts.Image != nil {
		parts = append(parts, llm.ContentPart{Kind: llm.ContentImage, Image: mopts.Image})
	}

	resp, err := p.client.Complete(ctx, llm.Request{
		Provider:    provider,
		Model:       model,
		System:      originalFlowSystemPrompt,
		Messages:    []llm.Message{llm.UserMessageWithParts(parts...)},
		MaxTokens:   16000,
		Temperature: llm.Temp(0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("original flow: %w", err)
	}

	parsed, err := mutate.ParseResponse(resp.Text())
	if err != nil {
		// The call itself succeeded, so its tokens count even though the
		// response is unusable. The success path is accounted by the caller.
		res.Usage.Add(resp.Usage)
		return nil, fmt.Errorf("original flow: %w", err)
	}

	msg := strings.TrimSpace(parsed.Message)
	if msg == "" {
		msg = "I updated the code as requested."
	}
	return &mutate.Result{
		Patch: page.Patch{
			HTML:       parsed.HTML,
			CSS:        parsed.CSS,
			JavaScript: parsed.JavaScript,
		},
		Message:      msg,
		Usage:        resp.Usage,
		MutationType: StageOriginalFlow,
	}, nil
}

const originalFlowSystemPrompt = `You are a web page editor. Apply the user's request to the provided HTML, CSS,
and JavaScript and return the complete updated code.
Respond with only a JSON object:
{"html": "...", "css": "...", "javascript": "...", "message": "..."}
Omit any key whose code is unchanged.`

func originalFlowPrompt(message string, doc page.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", message)
	fmt.Fprintf(&b, "\nCurrent HTML:\n%s\n", doc.HTML)
	fmt.Fprintf(&b, "\nCurrent CSS:\n%s\n", doc.CSS)
	fmt.Fprintf(&b, "\nCurrent JavaScript:\n%s\n", doc.JavaScript)
	return b.String()
}

// resolveModel turns a model choice (id or alias) into a concrete model id
// and provider. Unknown choices pass through verbatim with the client's
// default provider.
func (p *Pipeline) resolveModel(choice string) (model, provider string) {
	if choice == "" {
		choice = p.mutationModel
	}
	if info, ok := p.catalog.Lookup(choice); ok {
		return info.ID, info.Provider
	}
	return choice, ""
}

// parseImage decodes the attached data URL, degrading to a text-only request
// when the URL is malformed.
func (p *Pipeline) parseImage(dataURL string, res *Result) *llm.ImageData {
	if dataURL == "" {
		return nil
	}
	img, err := llm.ParseDataURL(dataURL)
	if err != nil {
		log.Printf("component=pipeline action=image_parse_failed err=%v", err)
		res.trace(StageIntent, "attached image unreadable, proceeding without it", err)
		return nil
	}
	return img
}
