// ABOUTME: Intent model and cost-tier policy for classified edit requests.
// ABOUTME: Tiers rank simple < medium < full; reconciliation picks the cheaper classification.

package intent

// Tier is the cost/complexity classification of a requested edit. It drives
// which LLM prompting strategy the dispatcher uses.
type Tier string

const (
	TierSimple Tier = "simple"
	TierMedium Tier = "medium"
	TierFull   Tier = "full"
)

// Rank orders tiers by cost: simple < medium < full.
func (t Tier) Rank() int {
	switch t {
	case TierSimple:
		return 0
	case TierMedium:
		return 1
	case TierFull:
		return 2
	default:
		return 1
	}
}

// CheaperTier picks the cheaper of two tiers. This is a deliberate policy:
// the local heuristic is more reliable at spotting truly simple edits, the
// LLM better at hidden complexity, and when they disagree cost control wins
// in the "make it cheaper" direction.
func CheaperTier(a, b Tier) Tier {
	if b.Rank() < a.Rank() {
		return b
	}
	return a
}

// Escalate returns the more expensive of the current tier and the floor.
// Within a single request a tier is only ever escalated, never downgraded.
func Escalate(current, floor Tier) Tier {
	if floor.Rank() > current.Rank() {
		return floor
	}
	return current
}

// Scope says whether an edit targets one region or the whole document.
type Scope string

const (
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
)

// Intent is the classified form of one user request. It is created once per
// request and read-only afterward, except that the orchestrator may force
// Tier to full (image present, explicit multi-element selection).
type Intent struct {
	Action            string `json:"action"`
	TargetHint        string `json:"target_hint"`
	Scope             Scope  `json:"scope"`
	Property          string `json:"property,omitempty"`
	Value             string `json:"value,omitempty"`
	Tier              Tier   `json:"tier"`
	HasSelection      bool   `json:"has_selection"`
	SelectionContext  string `json:"selection_context,omitempty"`
	NormalizedMessage string `json:"normalized_message"`
	HasImage          bool   `json:"has_image"`
}
