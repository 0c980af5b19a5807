// Package pipeline wires the document flows together: drafting candidates,
// scoring them, refining the winners, and auditing requirements. Writer
// agents persist the documents themselves through their workspace access;
// the pipeline reads files back between calls and keeps the run journal.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/valpere/docsmith/internal/agent"
	"github.com/valpere/docsmith/internal/config"
	"github.com/valpere/docsmith/internal/postprocess"
	"github.com/valpere/docsmith/internal/review"
	"github.com/valpere/docsmith/internal/store"
	"github.com/valpere/docsmith/internal/workspace"
)

type Pipeline struct {
	ws    *workspace.Dir
	rec   *agent.Recorder
	store *store.Store // nil disables run journaling
	cfg   config.Config
	runID string
	log   *slog.Logger
}

// New builds a Pipeline over one run's workspace. Writer and reviewer model
// lists must be non-empty; config.Load guarantees that with its default
// sentinel, so a failure here means the caller bypassed it.
func New(ws *workspace.Dir, rec *agent.Recorder, st *store.Store, cfg config.Config, runID string, log *slog.Logger) (*Pipeline, error) {
	if len(cfg.WriterModels()) == 0 {
		return nil, errors.New("at least one writer model is required")
	}
	if len(cfg.ReviewerModels()) == 0 {
		return nil, errors.New("at least one reviewer model is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{ws: ws, rec: rec, store: st, cfg: cfg, runID: runID, log: log}, nil
}

func (p *Pipeline) writers() []string   { return p.cfg.WriterModels() }
func (p *Pipeline) reviewers() []string { return p.cfg.ReviewerModels() }

// scoreCandidates has every reviewer score every candidate document and
// returns the filled scoreboard. Failed calls score as zero verdicts.
func (p *Pipeline) scoreCandidates(ctx context.Context, rec *agent.Recorder, kind string, file func(int) string, build func(name, doc string) string) *review.Scoreboard {
	board := review.NewScoreboard()
	n := p.cfg.Pipeline.Candidates

	for _, reviewer := range p.reviewers() {
		for i := 1; i <= n; i++ {
			name := file(i)
			doc := p.ws.Read(name)

			var v review.Verdict
			reply, err := rec.Submit(ctx, build(name, doc), reviewer)
			if err != nil {
				p.log.Warn("scoring call failed, counting a zero verdict",
					"candidate", name, "model", labelFor(reviewer), "error", err)
			} else {
				v = review.Parse(postprocess.Clean(reply))
			}
			board.Add(i, labelFor(reviewer), v)
			p.saveVerdict(ctx, rec.Calls(), name, reviewer, v)
			p.log.Info("candidate scored",
				"candidate", name, "model", labelFor(reviewer),
				"score", v.Score, "issues", len(v.Issues))
		}
	}

	p.saveScoreboard(ctx, kind, board)
	return board
}

func (p *Pipeline) saveVerdict(ctx context.Context, seq int, doc, reviewer string, v review.Verdict) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveVerdict(ctx, p.runID, seq, doc, reviewer, v); err != nil {
		p.log.Warn("failed to persist verdict", "doc", doc, "error", err)
	}
}

func (p *Pipeline) saveScoreboard(ctx context.Context, kind string, board *review.Scoreboard) {
	if p.store == nil {
		return
	}
	for _, id := range board.IDs() {
		score, issues := board.Totals(id)
		if err := p.store.SaveCandidate(ctx, p.runID, kind, id, score, issues); err != nil {
			p.log.Warn("failed to persist candidate tally", "kind", kind, "candidate", id, "error", err)
		}
	}
}

func (p *Pipeline) markSelected(ctx context.Context, kind string, id int) {
	if p.store == nil {
		return
	}
	if err := p.store.MarkCandidateSelected(ctx, p.runID, kind, id); err != nil {
		p.log.Warn("failed to persist candidate selection", "kind", kind, "candidate", id, "error", err)
	}
}

func (p *Pipeline) saveSummary(ctx context.Context, round int, model, summary string) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveRoundSummary(ctx, p.runID, round, model, summary); err != nil {
		p.log.Warn("failed to persist round summary", "round", round, "error", err)
	}
}

func labelFor(model string) string {
	if model == "" {
		return "default model"
	}
	return model
}
