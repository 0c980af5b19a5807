package pipeline

import (
	"context"
	"strings"

	"github.com/valpere/docsmith/internal/prompt"
	"github.com/valpere/docsmith/internal/workspace"
)

// Check runs the requirement audit flow: several independent audit passes on
// rotating writer models, each free to write its own findings report, then
// one consolidation call that merges the reports into the final summary.
func (p *Pipeline) Check(ctx context.Context) error {
	passes := p.cfg.Pipeline.Candidates
	p.log.Info("audit flow started", "passes", passes)

	req := p.ws.RequirementDocs()
	rec := p.rec.Step("audit requirements")
	writers := p.writers()

	for i := 1; i <= passes; i++ {
		model := writers[(i-1)%len(writers)]
		name := workspace.InsufficientReportFile(i)
		p.log.Info("audit pass", "pass", i, "passes", passes, "model", labelFor(model))
		if _, err := rec.Submit(ctx, prompt.AuditPass(req, name, i, labelFor(model)), model); err != nil {
			p.log.Warn("audit pass failed", "pass", i, "error", err)
		}
	}

	reports := make([]string, 0, passes)
	for i := 1; i <= passes; i++ {
		reports = append(reports, p.ws.Read(workspace.InsufficientReportFile(i)))
	}

	p.log.Info("consolidating audit reports", "reports", passes)
	rec = p.rec.Step("summarize audits")
	if _, err := rec.Submit(ctx, prompt.AuditSummary(req, strings.Join(reports, "\n"), workspace.InsufficientFile), p.reviewers()[0]); err != nil {
		p.log.Warn("audit consolidation failed", "error", err)
	}

	p.log.Info("audit flow finished", "file", workspace.InsufficientFile)
	return nil
}
