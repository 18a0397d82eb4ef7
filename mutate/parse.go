// ABOUTME: Tolerant three-tier parser for LLM code responses.
// ABOUTME: Strict JSON, then fence-stripped and brace-trimmed JSON, then per-field regex extraction.

package mutate

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// CodeResponse is the fixed JSON shape every mutation prompt demands. Nil code
// fields mean the model requested no change for that field.
type CodeResponse struct {
	HTML       *string `json:"html"`
	CSS        *string `json:"css"`
	JavaScript *string `json:"javascript"`
	MergeMode  string  `json:"merge_mode"`
	Message    string  `json:"message"`
}

// HasCode reports whether at least one code field was recovered.
func (c *CodeResponse) HasCode() bool {
	return c.HTML != nil || c.CSS != nil || c.JavaScript != nil
}

// ParseError means no code field could be recovered from a response by any
// parse tier. Recoverable degradations never produce it.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return "no code fields recoverable from LLM response"
}

// ParseResponse decodes an LLM response into a CodeResponse. Working with a
// non-deterministic text generator, it degrades through three tiers: strict
// JSON, markdown-fence stripping plus brace-boundary trimming, then field-by-
// field regex extraction. It fails only when zero code fields were recovered.
func ParseResponse(text string) (*CodeResponse, error) {
	trimmed := strings.TrimSpace(text)

	var parsed CodeResponse
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return &parsed, nil
	}

	cleaned := stripFences(trimmed)
	cleaned = trimToBraces(cleaned)
	if cleaned != "" {
		parsed = CodeResponse{}
		if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
			return &parsed, nil
		}
	}

	extracted := extractFields(trimmed)
	if !extracted.HasCode() {
		return nil, &ParseError{Raw: text}
	}
	return extracted, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		// The fence may follow prose; take the first fenced block.
		if idx := strings.Index(s, "```"); idx >= 0 {
			s = s[idx:]
		} else {
			return s
		}
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// trimToBraces cuts the string to its outermost {...} span, discarding prose
// before and after the JSON object.
func trimToBraces(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// fieldRes match JSON string fields loosely enough to survive a malformed
// document around them. The value group follows JSON string escaping.
var fieldRes = map[string]*regexp.Regexp{
	"html":       regexp.MustCompile(`"html"\s*:\s*"((?:[^"\\]|\\.)*)"`),
	"css":        regexp.MustCompile(`"css"\s*:\s*"((?:[^"\\]|\\.)*)"`),
	"javascript": regexp.MustCompile(`"javascript"\s*:\s*"((?:[^"\\]|\\.)*)"`),
	"merge_mode": regexp.MustCompile(`"merge_mode"\s*:\s*"((?:[^"\\]|\\.)*)"`),
	"message":    regexp.MustCompile(`"message"\s*:\s*"((?:[^"\\]|\\.)*)"`),
}

func extractFields(s string) *CodeResponse {
	out := &CodeResponse{}
	for name, re := range fieldRes {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		// JSON allows \/ where Go string syntax does not.
		raw := strings.ReplaceAll(m[1], `\/`, "/")
		value, err := strconv.Unquote(`"` + raw + `"`)
		if err != nil {
			value = raw
		}
		switch name {
		case "html":
			out.HTML = &value
		case "css":
			out.CSS = &value
		case "javascript":
			out.JavaScript = &value
		case "merge_mode":
			out.MergeMode = value
		case "message":
			out.Message = value
		}
	}
	return out
}
