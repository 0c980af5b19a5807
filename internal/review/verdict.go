// Package review turns raw model replies into structured verdicts and folds
// verdicts from several reviewers into convergence decisions, merged feedback,
// and candidate rankings.
package review

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Verdict is one reviewer's structured assessment of a document.
type Verdict struct {
	Satisfied   bool
	Issues      []string
	Suggestions string
	Score       int
}

// OK reports whether the verdict accepts the document outright: satisfied
// with an empty issue list. A verdict carrying issues never counts as
// accepting, whatever the flag says.
func (v Verdict) OK() bool {
	return v.Satisfied && len(v.Issues) == 0
}

// Parse extracts a Verdict from a raw model reply. It never fails: a reply
// that defeats the JSON tier degrades to regex recovery, and an empty reply
// yields the zero verdict.
func Parse(raw string) Verdict {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Verdict{}
	}
	if v, ok := parseObject(raw); ok {
		return v
	}
	return parseLoose(raw)
}

// parseObject decodes the outermost {...} span. A strict decode is tried
// first; on failure the span goes through jsonrepair, which fixes the usual
// model artifacts (single quotes, curly quotes, trailing commas).
func parseObject(raw string) (Verdict, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Verdict{}, false
	}
	span := raw[start : end+1]

	var fields map[string]any
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		repaired, err := jsonrepair.JSONRepair(span)
		if err != nil {
			return Verdict{}, false
		}
		if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
			return Verdict{}, false
		}
	}

	v := Verdict{
		Issues:      parseIssues(fields["issues"]),
		Suggestions: parseSuggestions(fields["suggestions"]),
		Score:       parseScore(fields["score"]),
	}
	// Only a JSON boolean sets the flag. Truthy strings stay unsatisfied.
	if b, ok := fields["satisfied"].(bool); ok {
		v.Satisfied = b
	}
	return v, true
}

// parseScore accepts integers serialized as numbers or digit strings.
// Anything else (floats, negatives, prose) counts as 0. Values above 100
// pass through unclamped; reviewers are attributed, not trusted.
func parseScore(raw any) int {
	if raw == nil {
		return 0
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", raw))
	if s == "" {
		return 0
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseIssues accepts a list of strings, a bare string (wrapped into a
// one-element list unless blank), or nothing.
func parseIssues(raw any) []string {
	switch t := raw.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{t}
	case []any:
		issues := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				issues = append(issues, s)
			} else {
				issues = append(issues, fmt.Sprintf("%v", item))
			}
		}
		return issues
	default:
		return nil
	}
}

func parseSuggestions(raw any) string {
	switch t := raw.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

var (
	scoreRe     = regexp.MustCompile(`"score"\s*:\s*"?(\d+)"?`)
	satisfiedRe = regexp.MustCompile(`(?i)"satisfied"\s*:\s*(true|false)`)
)

// parseLoose recovers what it can from a reply that never materialized into
// an object: score and satisfied by regex, the reply head as suggestions so
// the optimizer still sees what the reviewer wrote.
func parseLoose(raw string) Verdict {
	v := Verdict{Suggestions: head(raw, 800)}
	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		v.Score, _ = strconv.Atoi(m[1])
	}
	if m := satisfiedRe.FindStringSubmatch(raw); m != nil {
		v.Satisfied = strings.EqualFold(m[1], "true")
	}
	return v
}

func head(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
