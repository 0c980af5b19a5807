package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/valpere/docsmith/internal/tokens"
)

// Recorder wraps a Caller with sequence numbering, structured logging, and
// journal persistence. Failures are recorded and passed through unchanged;
// the Recorder never retries and never converts an error into a reply.
type Recorder struct {
	caller Caller
	log    *slog.Logger
	sink   CallLog
	step   string
	// Shared across Step copies so the sequence keeps counting through the
	// whole run.
	seq       *int
	maxPrompt int
}

// NewRecorder builds a Recorder. sink may be nil for log-only operation.
// maxPromptTokens > 0 enables an oversize warning per prompt.
func NewRecorder(caller Caller, log *slog.Logger, sink CallLog, maxPromptTokens int) *Recorder {
	return &Recorder{
		caller:    caller,
		log:       log,
		sink:      sink,
		seq:       new(int),
		maxPrompt: maxPromptTokens,
	}
}

// Step returns a recorder that tags subsequent calls with desc. The sequence
// counter stays shared, so call numbering runs through the whole pipeline.
func (r *Recorder) Step(desc string) *Recorder {
	c := *r
	c.step = desc
	return &c
}

func (r *Recorder) Submit(ctx context.Context, prompt, model string) (string, error) {
	*r.seq++
	seq := *r.seq
	display := model
	if display == "" {
		display = "default"
	}

	promptTokens := tokens.Count(prompt)
	r.log.Info("submitting prompt",
		"seq", seq,
		"step", r.step,
		"model", display,
		"prompt_tokens", promptTokens)
	if r.maxPrompt > 0 && promptTokens > r.maxPrompt {
		r.log.Warn("prompt exceeds configured token limit",
			"seq", seq,
			"prompt_tokens", promptTokens,
			"limit", r.maxPrompt)
	}

	start := time.Now()
	reply, err := r.caller.Submit(ctx, prompt, model)
	elapsed := time.Since(start)

	entry := CallEntry{
		Seq:     seq,
		Step:    r.step,
		Model:   display,
		Prompt:  prompt,
		Reply:   reply,
		Elapsed: elapsed,
	}
	switch {
	case err != nil:
		entry.Failed = true
		entry.Err = err.Error()
		r.log.Warn("call failed",
			"seq", seq,
			"step", r.step,
			"model", display,
			"elapsed", elapsed,
			"error", err)
	case reply == "":
		r.log.Warn("empty reply",
			"seq", seq,
			"step", r.step,
			"model", display,
			"elapsed", elapsed)
	default:
		r.log.Info("reply received",
			"seq", seq,
			"step", r.step,
			"model", display,
			"elapsed", elapsed,
			"reply_tokens", tokens.Count(reply))
	}

	if r.sink != nil {
		if logErr := r.sink.LogCall(ctx, entry); logErr != nil {
			r.log.Warn("failed to journal call", "seq", seq, "error", logErr)
		}
	}
	return reply, err
}

// Calls reports how many submissions have gone through this recorder and all
// recorders sharing its sequence.
func (r *Recorder) Calls() int {
	return *r.seq
}
