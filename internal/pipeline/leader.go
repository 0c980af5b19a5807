package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/valpere/docsmith/internal/prompt"
	"github.com/valpere/docsmith/internal/workspace"
)

// Leader runs the module-breakdown flow: draft candidates on rotating
// writers, have every reviewer score each one, then optimize the winner
// into the final breakdown document.
func (p *Pipeline) Leader(ctx context.Context) error {
	p.log.Info("breakdown flow started", "candidates", p.cfg.Pipeline.Candidates)

	p.draftLeaderCandidates(ctx)

	req := p.ws.RequirementDocs()
	rec := p.rec.Step("score breakdown candidates")
	board := p.scoreCandidates(ctx, rec, "requirement_leader", workspace.LeaderCandidateFile,
		func(name, doc string) string { return prompt.LeaderScore(req, name, doc) })

	best, ok := board.Best()
	if !ok {
		return errors.New("no breakdown candidate was scored")
	}
	score, issues := board.Totals(best)
	bestFile := workspace.LeaderCandidateFile(best)
	p.log.Info("selected best breakdown candidate",
		"file", bestFile, "total_score", score, "total_issues", issues)
	p.markSelected(ctx, "requirement_leader", best)

	feedback, err := board.Feedback(best)
	if err != nil {
		return fmt.Errorf("failed to merge candidate feedback: %w", err)
	}
	if feedback == "" {
		feedback = prompt.NoSuggestions
	}

	bestDoc := p.ws.Read(bestFile)
	rec = p.rec.Step("optimize breakdown")
	if _, err := rec.Submit(ctx, prompt.LeaderOptimize(req, bestFile, bestDoc, feedback, workspace.LeaderFile), p.writers()[0]); err != nil {
		p.log.Warn("breakdown optimize failed", "error", err)
	}

	p.log.Info("breakdown flow finished", "file", workspace.LeaderFile)
	return nil
}

func (p *Pipeline) draftLeaderCandidates(ctx context.Context) {
	n := p.cfg.Pipeline.Candidates
	p.log.Info("drafting breakdown candidates", "count", n)

	req := p.ws.RequirementDocs()
	rec := p.rec.Step("draft breakdown candidates")
	writers := p.writers()

	for i := 1; i <= n; i++ {
		model := writers[(i-1)%len(writers)]
		name := workspace.LeaderCandidateFile(i)
		p.log.Info("drafting candidate", "file", name, "model", labelFor(model))
		if _, err := rec.Submit(ctx, prompt.LeaderCandidate(req, name), model); err != nil {
			p.log.Warn("candidate draft failed", "file", name, "error", err)
		}
	}
}
