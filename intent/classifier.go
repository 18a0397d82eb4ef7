// ABOUTME: Intent classifier reconciling a local keyword heuristic with an LLM classification.
// ABOUTME: Strips UI selection marker blocks and forces the full tier for image-driven edits.

package intent

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/2389-research/pagesmith/llm"
)

// Selection marker block appended by the UI when the user draws shapes over
// the live preview. The block is stripped from the natural-language text but
// preserved verbatim as the intent's SelectionContext.
const (
	SelectionStartMarker = "[SELECTED AREAS]"
	SelectionEndMarker   = "[/SELECTED AREAS]"
)

// SplitSelection separates a selection marker block from the message. The
// returned clean text has the block removed; selection is the block content
// verbatim (markers excluded).
func SplitSelection(message string) (clean, selection string, ok bool) {
	start := strings.Index(message, SelectionStartMarker)
	if start < 0 {
		return message, "", false
	}
	rest := message[start+len(SelectionStartMarker):]
	end := strings.Index(rest, SelectionEndMarker)
	if end < 0 {
		// Unterminated block: treat everything after the marker as selection.
		return strings.TrimSpace(message[:start]), strings.TrimSpace(rest), true
	}
	clean = strings.TrimSpace(message[:start] + rest[end+len(SelectionEndMarker):])
	return clean, strings.TrimSpace(rest[:end]), true
}

// Classifier maps free-text edit requests to an Intent.
type Classifier struct {
	client llm.Completer
	model  string
	vocab  *Vocabulary
}

// NewClassifier creates a Classifier using the given completer and model for
// the LLM classification call. A nil vocabulary uses the builtin table.
func NewClassifier(client llm.Completer, model string, vocab *Vocabulary) *Classifier {
	if vocab == nil {
		vocab = NewVocabulary()
	}
	return &Classifier{client: client, model: model, vocab: vocab}
}

const classifySystemPrompt = `You classify requests to edit a web page.
Respond with only a JSON object, no prose, in this exact shape:
{"action": "<verb such as modify, add, remove, recolor, resize, restyle>",
 "target": "<short noun or CSS selector naming what to edit>",
 "complexity": "<simple|medium|full>",
 "property": "<CSS property being changed, or empty>",
 "value": "<requested value, or empty>"}
Use "simple" for single cosmetic property changes, "medium" for edits touching
layout or several elements, "full" for new structure or page-wide work.`

// llmClassification is the JSON shape requested from the model.
type llmClassification struct {
	Action     string `json:"action"`
	Target     string `json:"target"`
	Complexity string `json:"complexity"`
	Property   string `json:"property"`
	Value      string `json:"value"`
}

// Classify maps a message (plus image flag) to an Intent. The LLM
// classification is reconciled against the local heuristic by the CheaperTier
// policy; an outright LLM failure falls back to the heuristic tier with a
// default action of "modify" and the document body as target.
func (c *Classifier) Classify(ctx context.Context, message string, hasImage bool) (Intent, llm.Usage) {
	clean, selection, hasSelection := SplitSelection(message)
	normalized := c.vocab.Normalize(clean)
	localTier := LocalTier(normalized)

	out := Intent{
		Action:            "modify",
		TargetHint:        "body",
		Scope:             ScopeLocal,
		Tier:              localTier,
		HasSelection:      hasSelection,
		SelectionContext:  selection,
		NormalizedMessage: normalized,
		HasImage:          hasImage,
	}

	var usage llm.Usage
	parsed, llmUsage, err := c.classifyWithLLM(ctx, normalized)
	usage = llmUsage
	if err != nil {
		log.Printf("component=intent action=llm_classify_failed err=%v", err)
	} else {
		if parsed.Action != "" {
			out.Action = strings.ToLower(parsed.Action)
		}
		if parsed.Target != "" {
			out.TargetHint = strings.ToLower(strings.TrimSpace(parsed.Target))
		}
		out.Property = strings.TrimSpace(parsed.Property)
		out.Value = strings.TrimSpace(parsed.Value)
		out.Tier = CheaperTier(localTier, parseTier(parsed.Complexity))
	}

	if out.Property == "" {
		out.Property, out.Value = guessProperty(normalized)
	}

	// Image-driven edits always get the expensive path.
	if hasImage {
		out.Tier = TierFull
	}

	if out.Tier == TierFull {
		out.Scope = ScopeGlobal
	}

	return out, usage
}

func (c *Classifier) classifyWithLLM(ctx context.Context, normalized string) (llmClassification, llm.Usage, error) {
	resp, err := c.client.Complete(ctx, llm.Request{
		Model:       c.model,
		System:      classifySystemPrompt,
		Messages:    []llm.Message{llm.UserMessage(normalized)},
		MaxTokens:   300,
		Temperature: llm.Temp(0),
	})
	if err != nil {
		return llmClassification{}, llm.Usage{}, err
	}

	text := resp.Text()
	var parsed llmClassification
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		stripped := stripCodeFences(text)
		if err2 := json.Unmarshal([]byte(stripped), &parsed); err2 != nil {
			return llmClassification{}, resp.Usage, err2
		}
	}
	return parsed, resp.Usage, nil
}

func parseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierSimple:
		return TierSimple
	case TierFull:
		return TierFull
	default:
		return TierMedium
	}
}

// stripCodeFences removes a surrounding markdown code fence, if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language hint line
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// colorWords recognized by the local property guess.
var colorWords = []string{
	"red", "blue", "green", "yellow", "orange", "purple", "pink",
	"black", "white", "gray", "grey",
}

// guessProperty derives a property/value pair from the normalized message when
// the LLM classification did not supply one. Only the common color cases are
// guessed; anything else stays empty and skips the semantic validation check.
func guessProperty(normalized string) (property, value string) {
	for _, color := range colorWords {
		if !containsWord(normalized, color) {
			continue
		}
		if strings.Contains(normalized, "background") {
			return "background-color", color
		}
		return "color", color
	}
	return "", ""
}

func containsWord(s, word string) bool {
	idx := strings.Index(s, word)
	for idx >= 0 {
		before := idx == 0 || !isLetter(s[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(s) || !isLetter(s[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(s[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
