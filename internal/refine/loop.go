// Package refine drives the review/optimize cycles that push a document
// toward reviewer consensus, and the alignment rounds that keep a set of
// documents consistent with each other. Rewrites are persisted by the
// optimize agent through its own workspace access, so loops reload the
// artifact each round instead of holding a copy.
package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/valpere/docsmith/internal/agent"
	"github.com/valpere/docsmith/internal/postprocess"
	"github.com/valpere/docsmith/internal/review"
)

// State names a refinement loop phase. Every Run ends in one of the three
// terminal states.
type State string

const (
	StateReviewing       State = "REVIEWING"
	StateConverged       State = "CONVERGED"
	StateBudgetExhausted State = "BUDGET_EXHAUSTED"
	StateNoFeedback      State = "NO_FEEDBACK"
)

// Budget returns the call allowance for one loop: factor full rounds, where
// a round is one verdict per reviewer plus the optimize call.
func Budget(reviewerCount, factor int) int {
	return (reviewerCount + 1) * factor
}

// Artifact is the document under refinement.
type Artifact interface {
	Load() (string, error)
}

// ArtifactFunc adapts a plain loader to the Artifact interface.
type ArtifactFunc func() (string, error)

func (f ArtifactFunc) Load() (string, error) { return f() }

// Prompts builds the review and optimize prompts for one artifact. The
// optimize prompt must instruct the agent to write the updated document back
// to its workspace file; the reply itself is not treated as the document.
type Prompts struct {
	Review   func(doc string) string
	Optimize func(doc, feedback string) string
}

// LoopConfig carries the identities and the explicit call budget for one
// loop invocation. The budget spans all rounds and is never reset.
type LoopConfig struct {
	Reviewers []string // reviewer model per slot, at least one
	Optimizer string   // writer model used for optimize calls
	Budget    int

	// Observe, when set, sees every collected verdict with the model that
	// produced it. Persistence hook; errors are the observer's problem.
	Observe func(model string, v review.Verdict)
}

// Result reports how a loop ended.
type Result struct {
	State     State
	Verdicts  []review.Verdict // verdict set from the final round
	CallsUsed int
	Rounds    int
}

type Loop struct {
	caller  agent.Caller
	prompts Prompts
	cfg     LoopConfig
	log     *slog.Logger
}

func NewLoop(caller agent.Caller, prompts Prompts, cfg LoopConfig, log *slog.Logger) (*Loop, error) {
	if len(cfg.Reviewers) == 0 {
		return nil, errors.New("at least one reviewer model is required")
	}
	if cfg.Budget < 0 {
		return nil, fmt.Errorf("call budget cannot be negative, got %d", cfg.Budget)
	}
	if prompts.Review == nil || prompts.Optimize == nil {
		return nil, errors.New("review and optimize prompt builders are required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loop{caller: caller, prompts: prompts, cfg: cfg, log: log}, nil
}

// Run cycles review and optimize until the reviewers converge, feedback dries
// up, or the budget runs out. Transport failures count as empty verdicts and
// consume budget; they never abort the loop.
func (l *Loop) Run(ctx context.Context, art Artifact) (Result, error) {
	res := Result{State: StateReviewing}

	for res.CallsUsed < l.cfg.Budget {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Rounds++

		doc, err := art.Load()
		if err != nil {
			return res, fmt.Errorf("failed to load document: %w", err)
		}

		verdicts := make([]review.Verdict, 0, len(l.cfg.Reviewers))
		labels := make([]string, 0, len(l.cfg.Reviewers))
		for _, model := range l.cfg.Reviewers {
			if res.CallsUsed >= l.cfg.Budget {
				break
			}
			res.CallsUsed++

			var v review.Verdict
			reply, err := l.caller.Submit(ctx, l.prompts.Review(doc), model)
			if err != nil {
				l.log.Warn("review call failed, counting an empty verdict",
					"round", res.Rounds, "model", labelFor(model), "error", err)
			} else {
				v = review.Parse(postprocess.Clean(reply))
			}
			verdicts = append(verdicts, v)
			labels = append(labels, labelFor(model))
			if l.cfg.Observe != nil {
				l.cfg.Observe(model, v)
			}
			l.log.Info("verdict collected",
				"round", res.Rounds, "call", res.CallsUsed, "budget", l.cfg.Budget,
				"model", labelFor(model), "satisfied", v.Satisfied,
				"issues", len(v.Issues), "score", v.Score)
		}
		res.Verdicts = verdicts

		// A round with zero collected verdicts must not read as consensus.
		if len(verdicts) > 0 && review.Converged(verdicts) {
			res.State = StateConverged
			l.log.Info("reviewers converged", "rounds", res.Rounds, "calls", res.CallsUsed)
			return res, nil
		}

		merged, err := review.Merge(verdicts, labels)
		if err != nil {
			return res, fmt.Errorf("failed to merge review feedback: %w", err)
		}
		if len(verdicts) > 0 && merged == "" {
			res.State = StateNoFeedback
			l.log.Info("no actionable feedback, accepting document", "rounds", res.Rounds, "calls", res.CallsUsed)
			return res, nil
		}
		if res.CallsUsed >= l.cfg.Budget {
			break
		}

		res.CallsUsed++
		l.log.Info("optimizing document",
			"round", res.Rounds, "call", res.CallsUsed, "budget", l.cfg.Budget,
			"model", labelFor(l.cfg.Optimizer))
		if _, err := l.caller.Submit(ctx, l.prompts.Optimize(doc, merged), l.cfg.Optimizer); err != nil {
			l.log.Warn("optimize call failed, document unchanged this round",
				"round", res.Rounds, "error", err)
		}
	}

	res.State = StateBudgetExhausted
	l.log.Warn("call budget exhausted", "rounds", res.Rounds, "calls", res.CallsUsed)
	return res, nil
}

func labelFor(model string) string {
	if model == "" {
		return "default model"
	}
	return model
}
