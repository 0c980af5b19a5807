package prompt

import "fmt"

const auditPassTemplate = `You are an experienced business analyst and requirements engineer.
Read the requirement documents below. Their purpose is to let developers write business code directly, so they must meet the standards that follow.

[Requirement documents]
%s

[Audit standards]
1. Substance and clarity: every requirement reads one way only. Test: as a developer, could you start coding each point without asking follow-up questions;
2. Internal consistency: no contradictions, ambiguity, or vague wording between requirements;
3. Data provenance: every field and entity names its source — a column in some table, or an interface of some external system, with the concrete way to fetch it;
4. Concrete calculations: every computed value comes with an explicit formula or step list, never wording like "computed by some rule" or "allocated reasonably";
5. Formula traceability: every element of every formula is obtainable from an earlier formula's result or a named data source.

[Audit method]
- check each requirement module and requirement point one by one, never settle for an overall impression;
- for every point that fails a standard, state:
  (a) exactly which requirement module or point fails;
  (b) why it fails;
  (c) a concrete amendment, or the question to put to the business side.

[Output]
- if the requirement documents fully meet every standard, reply: the requirement documents are clear and ready for development
- otherwise produce the document %s in this format:

  # Requirement Audit Report (pass %d, %s)

  ## 1. Summary
  (brief statement of overall quality)

  ## 2. Issues
  (grouped by standard, each with location + reason + suggestion)

  ## 3. Questions for the business side (optional)
  (ambiguities that need confirmation before work can continue)

Note: state on the first line which model you are.`

// AuditPass asks one writer to audit the requirement documents and, when
// they fall short, save a numbered report. label names the auditing model
// inside the report heading.
func AuditPass(reqDocs, filename string, pass int, label string) string {
	return fmt.Sprintf(auditPassTemplate, reqDocs, filename, pass, label)
}

const auditSummaryTemplate = `You are a senior requirements-quality expert.

Background: below are audit reports on the same requirement documents, written independently by several model reviewers.

[Requirement documents]
%s

[Audit reports]
%s

Consolidate them:

[Consolidation rules]
1. Verify against the requirements: every finding must point at something actually present in the requirement documents, never add content the requirements do not mention;
2. Deduplicate: merge findings that several auditors raised into one;
3. Filter: drop findings that fall outside the requirements' scope or are opinion rather than defect, and say why each was dropped;
4. Order by impact: problems that would break development correctness first, softer improvements after.

[Output format]
Produce the document %s, structured as:

# Requirement Audit Summary

## 1. Overall assessment
(brief statement of the documents' quality and their main bottleneck)

## 2. Issues to address
Grouped by issue type, each entry carrying:
  - location: which document, module, or requirement point
  - description: what exactly is wrong
  - suggestion: how to amend it

## 3. Questions for the business side (optional)
(items too ambiguous to proceed without the business side's confirmation)`

// AuditSummary asks a reviewer to merge the individual audit reports into
// the final report at target.
func AuditSummary(reqDocs, reports, target string) string {
	return fmt.Sprintf(auditSummaryTemplate, reqDocs, reports, target)
}
