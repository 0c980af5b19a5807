package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/valpere/docsmith/internal/agent"
	"github.com/valpere/docsmith/internal/postprocess"
)

// SummaryMarker opens the change-summary block an alignment round is asked
// to end its reply with. The extractor captures from the marker to the next
// "<<" or the end of the reply.
const SummaryMarker = "<<ALIGNMENT SUMMARY>>"

var summaryRe = regexp.MustCompile(`(?s)<<ALIGNMENT SUMMARY>>(.*?)(?:<<|$)`)

// summaryFallbackRunes bounds the tail kept when a reply carries no marker.
const summaryFallbackRunes = 500

// ExtractSummary pulls the round summary out of an alignment reply. Without
// a marker block the trailing part of the reply stands in. Best effort: the
// result seeds the next round's context, nothing more.
func ExtractSummary(reply string) string {
	if m := summaryRe.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}
	trimmed := []rune(strings.TrimSpace(reply))
	if len(trimmed) > summaryFallbackRunes {
		trimmed = trimmed[len(trimmed)-summaryFallbackRunes:]
	}
	return string(trimmed)
}

// PropagatorConfig configures a fixed-round alignment pass over a document
// set. Writers rotate round-robin across rounds.
type PropagatorConfig struct {
	Writers []string
	Rounds  int

	// Observe, when set, sees each round's extracted summary. Persistence hook.
	Observe func(round int, model, summary string)
}

// Propagator performs cross-document alignment. Every round makes exactly one
// generation call; the agent edits the documents in place, and the summary it
// reports is handed to the next round so work is not redone or undone.
type Propagator struct {
	caller agent.Caller
	cfg    PropagatorConfig
	prompt func(round int, prior string) string
	log    *slog.Logger
}

// NewPropagator builds a Propagator. The prompt builder receives the 1-based
// round number and the previous round's summary, empty on the first round.
func NewPropagator(caller agent.Caller, prompt func(round int, prior string) string, cfg PropagatorConfig, log *slog.Logger) (*Propagator, error) {
	if len(cfg.Writers) == 0 {
		return nil, errors.New("at least one writer model is required")
	}
	if cfg.Rounds < 0 {
		return nil, fmt.Errorf("round count cannot be negative, got %d", cfg.Rounds)
	}
	if prompt == nil {
		return nil, errors.New("alignment prompt builder is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Propagator{caller: caller, cfg: cfg, prompt: prompt, log: log}, nil
}

// Run performs the configured number of rounds and returns the last round's
// summary. A failed call still consumes its round and resets the summary;
// only context cancellation aborts early.
func (p *Propagator) Run(ctx context.Context) (string, error) {
	summary := ""
	for round := 1; round <= p.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		model := p.cfg.Writers[(round-1)%len(p.cfg.Writers)]
		p.log.Info("alignment round", "round", round, "rounds", p.cfg.Rounds, "model", labelFor(model))

		reply, err := p.caller.Submit(ctx, p.prompt(round, summary), model)
		if err != nil {
			p.log.Warn("alignment call failed, carrying no summary forward", "round", round, "error", err)
			summary = ""
		} else {
			summary = ExtractSummary(postprocess.Clean(reply))
		}
		if p.cfg.Observe != nil {
			p.cfg.Observe(round, model, summary)
		}
		p.log.Info("alignment round done", "round", round, "summary_head", head(summary, 100))
	}
	return summary, nil
}

func head(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
