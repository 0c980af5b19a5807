// Package prompt builds the prompts the pipeline sends to writer and
// reviewer agents. Builders are pure formatting: callers read the workspace
// and pass content in, so every prompt is reproducible from its inputs.
package prompt

// NoSuggestions stands in for merged feedback when the reviewers produced
// nothing actionable for the selected candidate.
const NoSuggestions = "(no specific suggestions; improve the document generally against the requirement documents)"

// reviewContract is appended to review prompts. Satisfied is the convergence
// signal, so the rules spell out when it may be true.
const reviewContract = `Return only the following JSON, nothing else:
{
    "satisfied": true or false,
    "issues": ["specific issue 1 (location + reason)", "specific issue 2", ...],
    "suggestions": "overall improvement advice (empty string if none)",
    "score": an integer from 0 to 100
}
Rules:
- satisfied is true only when the document fully meets the requirements and issues is empty;
- if there is any issue at all, satisfied must be false and every issue must be listed;
- score reflects overall quality, 100 is best.`

// scoreContract is appended to candidate-scoring prompts. No satisfied flag:
// scoring never short-circuits a selection round.
const scoreContract = `Return only the following JSON, nothing else:
{
    "issues": ["specific issue 1 (location + reason)", "specific issue 2", ...],
    "suggestions": "overall improvement advice",
    "score": an integer from 0 to 100
}
Rules:
- list every unreasonable or improvable point in issues, an empty list if none;
- score reflects overall quality, 100 is best.`
