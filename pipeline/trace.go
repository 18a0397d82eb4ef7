// ABOUTME: Trace steps recording which stage of the pipeline ran and what it decided.
// ABOUTME: ULID-stamped so steps sort chronologically across a conversation.

package pipeline

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// Step is one trace entry. Err is a string so the trace serializes cleanly.
type Step struct {
	ID     string `json:"id"`
	Stage  string `json:"stage"`
	Detail string `json:"detail,omitempty"`
	Err    string `json:"err,omitempty"`
}

// newStepID generates a ULID using crypto/rand entropy.
func newStepID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

func (r *Result) trace(stage, detail string, err error) {
	step := Step{ID: newStepID(), Stage: stage, Detail: detail}
	if err != nil {
		step.Err = err.Error()
	}
	r.Trace = append(r.Trace, step)
}
