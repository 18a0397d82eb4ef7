// ABOUTME: Model catalog mapping model choices and aliases to concrete model ids.
// ABOUTME: Drives the pipeline's tiered model selection (fast classifier vs quality mutator).

package llm

import "strings"

// ModelInfo describes a single LLM model's capabilities and metadata.
type ModelInfo struct {
	ID             string
	Provider       string
	DisplayName    string
	ContextWindow  int
	SupportsVision bool
	Aliases        []string
}

// Catalog holds a collection of ModelInfo entries and supports lookup by id
// or alias.
type Catalog struct {
	models []ModelInfo
}

// builtinModels returns the default set of known models.
func builtinModels() []ModelInfo {
	return []ModelInfo{
		{
			ID:             "claude-opus-4-6",
			Provider:       "anthropic",
			DisplayName:    "Claude Opus 4.6",
			ContextWindow:  200000,
			SupportsVision: true,
			Aliases:        []string{"opus", "quality"},
		},
		{
			ID:             "claude-sonnet-4-5",
			Provider:       "anthropic",
			DisplayName:    "Claude Sonnet 4.5",
			ContextWindow:  200000,
			SupportsVision: true,
			Aliases:        []string{"sonnet"},
		},
		{
			ID:             "claude-haiku-4-5",
			Provider:       "anthropic",
			DisplayName:    "Claude Haiku 4.5",
			ContextWindow:  200000,
			SupportsVision: true,
			Aliases:        []string{"haiku", "fast"},
		},
		{
			ID:             "gpt-5.2",
			Provider:       "openai",
			DisplayName:    "GPT-5.2",
			ContextWindow:  1047576,
			SupportsVision: true,
			Aliases:        []string{"gpt5"},
		},
		{
			ID:             "gpt-5-mini",
			Provider:       "openai",
			DisplayName:    "GPT-5 Mini",
			ContextWindow:  400000,
			SupportsVision: true,
			Aliases:        []string{"mini"},
		},
	}
}

// NewCatalog creates a Catalog seeded with the builtin model set.
func NewCatalog() *Catalog {
	return &Catalog{models: builtinModels()}
}

// Register adds a custom model to the catalog.
func (c *Catalog) Register(info ModelInfo) {
	c.models = append(c.models, info)
}

// Lookup finds a model by exact id or alias, case-insensitively.
func (c *Catalog) Lookup(idOrAlias string) (ModelInfo, bool) {
	needle := strings.ToLower(strings.TrimSpace(idOrAlias))
	if needle == "" {
		return ModelInfo{}, false
	}
	for _, m := range c.models {
		if strings.ToLower(m.ID) == needle {
			return m, true
		}
		for _, alias := range m.Aliases {
			if strings.ToLower(alias) == needle {
				return m, true
			}
		}
	}
	return ModelInfo{}, false
}

// ByProvider lists all catalog models for a provider.
func (c *Catalog) ByProvider(provider string) []ModelInfo {
	var out []ModelInfo
	for _, m := range c.models {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}
