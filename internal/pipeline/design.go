package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/valpere/docsmith/internal/postprocess"
	"github.com/valpere/docsmith/internal/prompt"
	"github.com/valpere/docsmith/internal/refine"
	"github.com/valpere/docsmith/internal/review"
	"github.com/valpere/docsmith/internal/workspace"
)

// Design runs the full design flow: draft overall-design candidates, score
// and select the best, optimize it into the final overall document, then
// draft, refine, and align the per-module designs. It assumes the breakdown
// document already exists in the workspace.
func (p *Pipeline) Design(ctx context.Context) error {
	p.log.Info("design flow started",
		"candidates", p.cfg.Pipeline.Candidates,
		"align_rounds", p.cfg.Pipeline.AlignRounds,
		"refine_factor", p.cfg.Pipeline.RefineFactor)

	p.draftOverallCandidates(ctx)

	board := p.scoreOverallCandidates(ctx)
	if err := p.optimizeOverall(ctx, board); err != nil {
		return err
	}

	modules, err := p.moduleList(ctx)
	if err != nil {
		return err
	}

	p.draftModuleDocs(ctx, modules)
	if err := p.refineModules(ctx, modules); err != nil {
		return err
	}
	if err := p.alignInterfaces(ctx); err != nil {
		return err
	}
	if err := p.refineGlobally(ctx); err != nil {
		return err
	}

	p.log.Info("design flow finished", "modules", len(modules))
	return nil
}

func (p *Pipeline) draftOverallCandidates(ctx context.Context) {
	n := p.cfg.Pipeline.Candidates
	p.log.Info("drafting overall design candidates", "count", n)

	req := p.ws.RequirementDocs()
	leader := p.ws.Read(workspace.LeaderFile)
	rec := p.rec.Step("draft overall design candidates")
	writers := p.writers()

	for i := 1; i <= n; i++ {
		model := writers[(i-1)%len(writers)]
		name := workspace.OverallCandidateFile(i)
		p.log.Info("drafting candidate", "file", name, "model", labelFor(model))
		if _, err := rec.Submit(ctx, prompt.OverallCandidate(req, leader, name), model); err != nil {
			p.log.Warn("candidate draft failed", "file", name, "error", err)
		}
	}
}

func (p *Pipeline) scoreOverallCandidates(ctx context.Context) *review.Scoreboard {
	p.log.Info("scoring overall design candidates")

	req := p.ws.RequirementDocs()
	leader := p.ws.Read(workspace.LeaderFile)
	rec := p.rec.Step("score overall design candidates")

	return p.scoreCandidates(ctx, rec, "design_overall", workspace.OverallCandidateFile,
		func(name, doc string) string { return prompt.OverallScore(req, leader, name, doc) })
}

func (p *Pipeline) optimizeOverall(ctx context.Context, board *review.Scoreboard) error {
	best, ok := board.Best()
	if !ok {
		return errors.New("no overall design candidate was scored")
	}
	score, issues := board.Totals(best)
	bestFile := workspace.OverallCandidateFile(best)
	p.log.Info("selected best overall design candidate",
		"file", bestFile, "total_score", score, "total_issues", issues)
	p.markSelected(ctx, "design_overall", best)

	feedback, err := board.Feedback(best)
	if err != nil {
		return fmt.Errorf("failed to merge candidate feedback: %w", err)
	}
	if feedback == "" {
		feedback = prompt.NoSuggestions
	}

	req := p.ws.RequirementDocs()
	leader := p.ws.Read(workspace.LeaderFile)
	bestDoc := p.ws.Read(bestFile)
	rec := p.rec.Step("optimize overall design")
	if _, err := rec.Submit(ctx, prompt.OverallOptimize(req, leader, bestFile, bestDoc, feedback, workspace.OverallFile), p.writers()[0]); err != nil {
		p.log.Warn("overall design optimize failed", "error", err)
	}
	return nil
}

// moduleList asks for the module names in the breakdown document. An
// unparseable reply aborts the flow: without the list there is nothing to
// design.
func (p *Pipeline) moduleList(ctx context.Context) ([]string, error) {
	rec := p.rec.Step("extract module list")
	leader := p.ws.Read(workspace.LeaderFile)

	reply, err := rec.Submit(ctx, prompt.ModuleList(leader), p.writers()[0])
	if err != nil {
		return nil, fmt.Errorf("failed to extract module list: %w", err)
	}

	modules := parseModuleList(postprocess.Clean(reply))
	if len(modules) == 0 {
		return nil, fmt.Errorf("could not parse a module list from the reply; check %s", workspace.LeaderFile)
	}
	p.log.Info("module list extracted", "count", len(modules), "modules", strings.Join(modules, ", "))
	return modules, nil
}

func (p *Pipeline) draftModuleDocs(ctx context.Context, modules []string) {
	p.log.Info("drafting module designs", "modules", len(modules))

	req := p.ws.RequirementDocs()
	leader := p.ws.Read(workspace.LeaderFile)
	overall := p.ws.Read(workspace.OverallFile)
	rec := p.rec.Step("draft module designs")
	writers := p.writers()

	for idx, module := range modules {
		model := writers[idx%len(writers)]
		name := workspace.ModuleFile(module)
		digest := p.ws.ModuleContext(modules[:idx])
		p.log.Info("drafting module design", "module", module, "model", labelFor(model))
		if _, err := rec.Submit(ctx, prompt.ModuleDraft(req, leader, overall, module, name, digest), model); err != nil {
			p.log.Warn("module draft failed", "module", module, "error", err)
		}
	}
}

func (p *Pipeline) refineModules(ctx context.Context, modules []string) error {
	reviewers := p.reviewers()
	budget := refine.Budget(len(reviewers), p.cfg.Pipeline.RefineFactor)

	req := p.ws.RequirementDocs()
	leader := p.ws.Read(workspace.LeaderFile)
	overall := p.ws.Read(workspace.OverallFile)

	for _, module := range modules {
		name := workspace.ModuleFile(module)
		p.log.Info("refining module design", "module", module, "budget", budget)
		rec := p.rec.Step("refine " + name)

		loop, err := refine.NewLoop(rec, refine.Prompts{
			Review: func(doc string) string {
				return prompt.ModuleReview(req, leader, overall, module, name, doc)
			},
			Optimize: func(doc, feedback string) string {
				return prompt.ModuleOptimize(req, overall, module, name, doc, feedback)
			},
		}, refine.LoopConfig{
			Reviewers: reviewers,
			Optimizer: p.writers()[0],
			Budget:    budget,
			Observe: func(model string, v review.Verdict) {
				p.saveVerdict(ctx, rec.Calls(), name, model, v)
			},
		}, p.log)
		if err != nil {
			return err
		}

		res, err := loop.Run(ctx, refine.ArtifactFunc(func() (string, error) {
			return p.ws.Read(name), nil
		}))
		if err != nil {
			return err
		}
		p.log.Info("module refinement finished",
			"module", module, "state", string(res.State), "calls", res.CallsUsed)
	}
	return nil
}

func (p *Pipeline) alignInterfaces(ctx context.Context) error {
	rounds := p.cfg.Pipeline.AlignRounds
	p.log.Info("aligning cross-module interfaces", "rounds", rounds)
	rec := p.rec.Step("align interfaces")

	prop, err := refine.NewPropagator(rec, func(round int, prior string) string {
		overall := p.ws.Read(workspace.OverallFile)
		docs := p.ws.ModuleDocs()
		return prompt.AlignRound(overall, docs, round, rounds, prior)
	}, refine.PropagatorConfig{
		Writers: p.writers(),
		Rounds:  rounds,
		Observe: func(round int, model, summary string) {
			p.saveSummary(ctx, round, model, summary)
		},
	}, p.log)
	if err != nil {
		return err
	}

	_, err = prop.Run(ctx)
	return err
}

func (p *Pipeline) refineGlobally(ctx context.Context) error {
	reviewers := p.reviewers()
	budget := refine.Budget(len(reviewers), p.cfg.Pipeline.RefineFactor)
	p.log.Info("global review and optimize", "budget", budget)

	req := p.ws.RequirementDocs()
	leader := p.ws.Read(workspace.LeaderFile)
	rec := p.rec.Step("global refine")

	loop, err := refine.NewLoop(rec, refine.Prompts{
		Review:   func(docs string) string { return prompt.GlobalReview(req, leader, docs) },
		Optimize: func(docs, feedback string) string { return prompt.GlobalOptimize(req, leader, docs, feedback) },
	}, refine.LoopConfig{
		Reviewers: reviewers,
		Optimizer: p.writers()[0],
		Budget:    budget,
		Observe: func(model string, v review.Verdict) {
			p.saveVerdict(ctx, rec.Calls(), "global", model, v)
		},
	}, p.log)
	if err != nil {
		return err
	}

	res, err := loop.Run(ctx, refine.ArtifactFunc(func() (string, error) {
		return p.ws.Read(workspace.OverallFile) + "\n" + p.ws.ModuleDocs(), nil
	}))
	if err != nil {
		return err
	}
	p.log.Info("global refinement finished", "state", string(res.State), "calls", res.CallsUsed)
	return nil
}

var (
	bracketRe = regexp.MustCompile(`(?s)\[.*?\]`)
	quotedRe  = regexp.MustCompile(`"([^"\n]+)"`)
)

// parseModuleList extracts module names from a reply: the first bracketed
// span parsed as JSON (repaired if needed), else any double-quoted tokens.
func parseModuleList(reply string) []string {
	var modules []string
	if span := bracketRe.FindString(reply); span != "" {
		modules = decodeStringList(span)
		if modules == nil {
			if repaired, err := jsonrepair.JSONRepair(span); err == nil {
				modules = decodeStringList(repaired)
			}
		}
	}
	if len(modules) == 0 {
		for _, m := range quotedRe.FindAllStringSubmatch(reply, -1) {
			modules = append(modules, m[1])
		}
	}

	out := make([]string, 0, len(modules))
	for _, m := range modules {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func decodeStringList(raw string) []string {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprintf("%v", item))
	}
	return out
}
