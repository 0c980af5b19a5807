package prompt

import (
	"fmt"

	"github.com/valpere/docsmith/internal/refine"
)

const overallCandidateTemplate = `You are a senior software architect.
Read the requirement documents and the module breakdown design below, understand the full business picture, and produce the overall design document %s.

Note: the document you produce is named %s. Save the content to that file.

[Input documents]
%s

%s

[Design requirements] The document must contain the following sections, each with concrete content rather than vague placeholders:

1. Overall business architecture
   - list every module and its layer of responsibility
   - describe the inter-module dependency graph in ASCII or prose, with explicit dependency direction

2. Business driving modes
   - state for each module how it is driven: UI interaction, workflow, scheduled job, or events
   - justify the chosen mode

3. Recommended design patterns
   - judge whether the architecture suits a pattern such as CQRS, Event Sourcing, Saga, or Repository
   - if one applies, explain how to apply it and what it buys; if none does, say why

4. Business flow sequence diagrams
   - draw multi-module sequence diagrams (textual is fine) for the 2-3 most central scenarios
   - include participants, messages, and return values

5. Technology stack
   - backend language and framework choice with reasons
   - middleware choices (message queue, cache, and so on) with reasons

6. Overall technical architecture
   - layered architecture diagram (for example presentation, application, domain, infrastructure)
   - responsibilities and boundaries of each layer

7. Database selection
   - conclusion and reasoning: why this kind of database fits the business
   - if several databases are needed, the division of work between them

Note: state on the first line which model you are.`

// OverallCandidate asks a writer to draft one overall-design candidate and
// save it under filename.
func OverallCandidate(reqDocs, leader, filename string) string {
	return fmt.Sprintf(overallCandidateTemplate, filename, filename, reqDocs, leader)
}

const overallScoreTemplate = `You are a senior software architect. Review the overall design document below with a critical eye.

[Document under review] file: %s
It was produced from the requirement documents and module breakdown design below.

[Requirement documents]
%s

[Module breakdown design]
%s

[Overall design document under review] (file: %s)
%s

[Review dimensions]
1. Architectural soundness: can the overall architecture carry every business scenario in the requirements, and is the module split clear and reasonable;
2. Driving modes: is each module's driving mode appropriate, or is there a better one;
3. Design patterns: are the recommended patterns the best fit, or is a better pattern available;
4. Sequence diagram quality: do the diagrams reflect the business flows accurately and in depth;
5. Technology stack: does the stack suit the scale and character of this business;
6. Layering: is the technical layering clear, with well-drawn responsibilities between layers;
7. Database selection: does the chosen database match the data shapes and query patterns.

%s`

// OverallScore asks a reviewer to score one overall-design candidate.
func OverallScore(reqDocs, leader, filename, doc string) string {
	return fmt.Sprintf(overallScoreTemplate, filename, reqDocs, leader, filename, doc, scoreContract)
}

const overallOptimizeTemplate = `You are a senior software architect.

Note: in the end you must save the optimized content to the file %s.

Below is the highest-scoring overall design document (%s), together with the requirement documents and module breakdown design it was built from.

[Requirement documents]
%s

[Module breakdown design]
%s

[Overall design document to optimize] (file: %s)
%s

[Review feedback (from several reviewers, weigh it yourself)]
%s

[Optimization requirements]
1. Keep the strengths of the original document; work through the feedback item by item, adopt what is justified and ignore what is not, saying why;
2. Make sure the final document covers every business scenario in the requirement documents;
3. Keep the full section structure: business architecture, driving modes, design patterns, sequence diagrams, technology stack, technical architecture, database selection;
4. The final document must be complete and concrete enough to directly drive module design and implementation;
5. Save the optimized document as %s.`

// OverallOptimize asks a writer to refine the winning candidate into the
// final overall design at target.
func OverallOptimize(reqDocs, leader, bestFile, bestDoc, feedback, target string) string {
	return fmt.Sprintf(overallOptimizeTemplate, target, bestFile, reqDocs, leader, bestFile, bestDoc, feedback, target)
}

const moduleListTemplate = `Read the document below and extract its list of modules.

%s

Return only the module list as JSON, nothing else:
["module 1", "module 2", "module 3"]`

// ModuleList asks for the module names defined in the breakdown document.
func ModuleList(leader string) string {
	return fmt.Sprintf(moduleListTemplate, leader)
}

const moduleDraftTemplate = `You are a senior software architect.
Read the documents below and produce the detailed design document for the module "%s".

Note: the document you produce is named %s. Save the content to that file.

[Requirement documents]
%s

[Module breakdown design]
%s

[Overall design document]
%s

%s[Design requirements] The document must contain the following sections, concrete enough to write code from directly:

1. Entities and relationships
   - define every entity and field of this module (type, required or not, meaning)
   - describe the entity-relationship diagram in prose
   - complete DDL: field definitions, primary key (business key or serial), foreign keys, and the indexes common queries need

2. Business logic
   - walk through the flow and rules of every business operation
   - provide sequence or flow diagrams for the complex flows
   - include error handling and boundary conditions

3. Design patterns (where applicable)
   - judge whether a pattern fits this module
   - if so, how to apply it and what it buys; if not, why

4. Exposed interfaces
   - list every interface this module offers
   - for each: name, parameters with types, return value, business meaning
   - pseudocode for the core implementation logic

5. Dependencies on other modules
   - list which modules this one depends on
   - for each dependency: module name, interface needed, parameters and return value

Note: state on the first line which model you are.`

// ModuleDraft asks a writer to draft one module's detailed design. The
// designed argument carries the entity/interface digest of modules already
// drafted, empty for the first module.
func ModuleDraft(reqDocs, leader, overall, module, filename, designed string) string {
	if designed != "" {
		designed += "\n\n"
	}
	return fmt.Sprintf(moduleDraftTemplate, module, filename, reqDocs, leader, overall, designed)
}

const moduleReviewTemplate = `You are a senior software architect. Review the detailed design document of the module "%s" with a critical eye.

[Requirement documents]
%s

[Module breakdown design]
%s

[Overall design document]
%s

[Module design document under review] (file: %s)
%s

[Review dimensions]
1. Requirement coverage: does the document cover every requirement of this module, agree with the requirements, and stay free of contradictions;
2. Buildability: is the document concrete enough for a developer to write code without follow-up questions;
3. Design patterns: if patterns are mentioned, are they sound, or is there a better choice;
4. Entity design: are the entities and their relationships reasonable, accurate, and complete, and is the DDL solid (fields, primary keys, indexes);
5. Interface definitions: are the exposed interfaces and pseudocode reasonable, accurate, and complete;
6. Module dependencies: are the dependencies on other modules and the interfaces they require reasonable, accurate, and complete.

%s`

// ModuleReview asks a reviewer for a verdict on one module design.
func ModuleReview(reqDocs, leader, overall, module, filename, doc string) string {
	return fmt.Sprintf(moduleReviewTemplate, module, reqDocs, leader, overall, filename, doc, reviewContract)
}

const moduleOptimizeTemplate = `You are a senior software architect. The detailed design document of the module "%s" needs to be optimized against review feedback.

Note: you must write the optimized content directly back to the file %s.

[Requirement documents]
%s

[Overall design document]
%s

[Current module design document] (file: %s)
%s

[Review feedback]
%s

[Optimization requirements]
1. Weigh each piece of feedback: adopt what is justified, ignore what is not;
2. Make sure the document covers every requirement of this module;
3. Keep entities, interfaces, and pseudocode complete and accurate;
4. Keep the descriptions of interfaces required from other modules concrete;
5. Save the optimized content to %s.`

// ModuleOptimize asks a writer to rewrite one module design in place.
func ModuleOptimize(reqDocs, overall, module, filename, doc, feedback string) string {
	return fmt.Sprintf(moduleOptimizeTemplate, module, filename, reqDocs, overall, filename, doc, feedback, filename)
}

const alignTemplate = `You are a senior software architect. Align the interfaces across all module design documents (round %d of %d).
%s
[Current overall design document]
%s

[Current module design documents (previous rounds' alignment already applied)]
%s

[This round's alignment work]
1. Scan every module's "dependencies on other modules" section
   - find each statement of the form "this module needs interface X of module B"
   - match it against module B's actual interface definitions

2. Alignment rules
   - if module A depends on an interface module B already defines: reference B's definition from A and align the parameters (field names, types);
   - if module B does not define it yet: add the interface to B (with pseudocode), then reference it from A.

3. Interface reuse
   - generalize similar interfaces into one rather than defining near-duplicates per caller;
   - when several modules reference the same entity, make its name and fields identical everywhere.

4. Write the aligned content directly back to the design_module_*.md files, touching only the files that changed.

5. End your reply with a summary of this round's changes in exactly this format:
%s
- module X, interface Y: aligned parameter Z (old type -> new type)
- module B: added interface defineXxx(), parameters ..., returns ...
- (write "no new changes this round" if nothing changed)`

const alignPriorTemplate = `
[Alignment changes already completed in round %d]
The summary below covers the previous round. Continue from it: do not redo
items already handled, and do not undo interfaces already aligned.
%s
`

// AlignRound asks a writer to perform one cross-module alignment round.
// prior is the previous round's change summary, empty on the first round.
func AlignRound(overall, moduleDocs string, round, rounds int, prior string) string {
	priorBlock := ""
	if prior != "" {
		priorBlock = fmt.Sprintf(alignPriorTemplate, round-1, prior)
	}
	return fmt.Sprintf(alignTemplate, round, rounds, priorBlock, overall, moduleDocs, refine.SummaryMarker)
}

const globalReviewTemplate = `You are a senior software architect. Review the complete set of design documents as a whole.

[Requirement documents]
%s

[Module breakdown design]
%s

[Overall design and all module design documents]
%s

[Review dimensions]
1. Full requirement coverage: every business scenario in the requirements is covered somewhere, consistently and without contradiction;
2. Buildability: the documents are concrete enough to write code from without follow-up questions;
3. Design pattern fit: the patterns each module mentions are the best fit;
4. Entity completeness: entity definitions and table structures are accurate and complete, with sensible query patterns;
5. Interface completeness: exposed interfaces and pseudocode are accurate and complete;
6. Dependency completeness: inter-module dependencies and the interfaces they rely on are accurate and complete;
7. Cross-module consistency: entities and interfaces referenced across modules carry identical names and definitions.

%s`

// GlobalReview asks a reviewer for a verdict on the whole document set.
func GlobalReview(reqDocs, leader, docs string) string {
	return fmt.Sprintf(globalReviewTemplate, reqDocs, leader, docs, reviewContract)
}

const globalOptimizeTemplate = `You are a senior software architect. Optimize the design documents against the global review feedback below.

Note: write the optimized content directly back to the corresponding files (the overall design file and design_module_*.md).

[Requirement documents]
%s

[Module breakdown design]
%s

[Current overall design and module design documents]
%s

[Global review feedback]
%s

[Optimization requirements]
1. Weigh each piece of feedback: adopt what is justified, ignore what is not;
2. Keep what is already sound, do not start over;
3. Keep interface references and entity definitions consistent across all documents after the update;
4. Save every updated document back to its own file.`

// GlobalOptimize asks a writer to apply global feedback across the set.
func GlobalOptimize(reqDocs, leader, docs, feedback string) string {
	return fmt.Sprintf(globalOptimizeTemplate, reqDocs, leader, docs, feedback)
}
