package prompt

import "fmt"

const leaderCandidateTemplate = `You are an experienced system architect. Read the requirement documents below, understand the full business picture, and design a module breakdown.

[Requirement documents]
%s

[Breakdown principles]
1. High cohesion, low coupling: each module owns one tightly related group of business concerns, with minimal dependencies between modules;
2. Clear boundaries: every module has an unambiguous scope of responsibility, with no overlap between modules;
3. One-way dependencies: keep dependency direction between modules one-way wherever possible and avoid cycles;
4. Breakdown dimensions: if the business spans several dimensions, split on the most central dimension first and subdivide inside modules by the others, or split directly on the combined dimensions down to the finest sensible granularity;
5. Lower complexity: the breakdown should measurably reduce both implementation complexity and the effort of understanding the business.

[Output format]
Save the document to the file %s. Structure it as follows:

# Module Breakdown Design

## 1. Rationale
Briefly explain why this breakdown was chosen and its core idea.

## 2. Module list
List every module. For each one include:
- module name
- scope of responsibility (what it owns and what it explicitly does not)
- core capabilities
- outline of the main operations or interfaces it exposes

## 3. Module overview
- module dependency graph (prose or ASCII)
- core business flows: how requests travel across modules in the main scenarios
- cross-module call conventions: call direction and how data is passed

Note: state on the first line which model you are.`

// LeaderCandidate asks a writer to draft one module-breakdown candidate and
// save it under filename.
func LeaderCandidate(reqDocs, filename string) string {
	return fmt.Sprintf(leaderCandidateTemplate, reqDocs, filename)
}

const leaderScoreTemplate = `You are a senior system architect. Review the module breakdown design below with a critical eye.

[Requirement documents]
%s

[Module breakdown design under review] (file: %s)
%s

Review it dimension by dimension:

[Review dimensions]
1. Requirement coverage: do the modules cover every requirement, or are business scenarios missing;
2. Boundary quality: is each module's responsibility clear, with no ambiguity or overlap;
3. Cohesion: does everything inside a module belong together, or are unrelated concerns bundled;
4. Coupling: are there too many cross-module dependencies, any cycles, or dependencies pointing the wrong way;
5. Extensibility: how well would this breakdown absorb future business growth;
6. Overview quality: is the dependency graph clear, the business-flow narrative complete, and the call conventions sound;
7. Overall clarity: could a developer understand and implement from this document.

Give concrete feedback (what is wrong and how to improve it) and score the document across all dimensions (0 to 100).

Return only this JSON, nothing else:
{"suggestions": "detailed feedback", "score": "the score"}`

// LeaderScore asks a reviewer to score one breakdown candidate.
func LeaderScore(reqDocs, filename, doc string) string {
	return fmt.Sprintf(leaderScoreTemplate, reqDocs, filename, doc)
}

const leaderOptimizeTemplate = `You are a senior system architect.

Note: save the final optimized document as %s.

Below is the highest-scoring module breakdown design (%s) together with the requirement documents it was built from.

[Requirement documents]
%s

[Module breakdown design to optimize] (file: %s)
%s

[Optimization requirements]
1. Make sure the optimized document covers every business scenario in the requirement documents above;
2. Work through the review feedback below item by item: adopt what is justified, ignore what is not and say why;
3. Keep the parts of the original document that already hold up, do not start over;
4. Keep the structure: rationale, module list (with responsibility boundaries and core capabilities), and module overview (dependency graph, business flows, call conventions);
5. The final document must be clear and complete enough to directly drive detailed design.

[Review feedback (from several reviewers, weigh it yourself)]
%s

Save the final optimized document as %s.`

// LeaderOptimize asks a writer to refine the winning candidate into the
// final breakdown document at target.
func LeaderOptimize(reqDocs, bestFile, bestDoc, feedback, target string) string {
	return fmt.Sprintf(leaderOptimizeTemplate, target, bestFile, reqDocs, bestFile, bestDoc, feedback, target)
}
