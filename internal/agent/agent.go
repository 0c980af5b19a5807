// Package agent submits prompts to generation agents over the OpenCode
// server API and records every exchange.
package agent

import (
	"context"
	"time"
)

// Caller submits one prompt to a generation agent and blocks until the reply
// is complete. model selects the agent identity; "" lets the server pick its
// default. Prompts routinely instruct the agent to write workspace files as
// a side effect; callers receive only the reply text and must not assume
// anything about those files.
type Caller interface {
	Submit(ctx context.Context, prompt, model string) (string, error)
}

// CallEntry describes one completed submission, failed or not.
type CallEntry struct {
	Seq     int
	Step    string
	Model   string
	Prompt  string
	Reply   string
	Elapsed time.Duration
	Failed  bool
	Err     string
}

// CallLog receives one entry per completed submission. Entries arrive
// strictly sequentially.
type CallLog interface {
	LogCall(ctx context.Context, e CallEntry) error
}
