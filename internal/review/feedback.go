package review

import (
	"fmt"
	"strings"
)

// Merge combines reviewer verdicts into one labeled feedback text for an
// optimizer prompt. labels[i] attributes verdicts[i]; a count mismatch is an
// error, never a silent truncation. Verdicts that accept the document
// outright are skipped, so the result is "" when nothing actionable remains.
func Merge(verdicts []Verdict, labels []string) (string, error) {
	if len(verdicts) != len(labels) {
		return "", fmt.Errorf("verdict/label count mismatch: %d verdicts, %d labels", len(verdicts), len(labels))
	}

	var parts []string
	for i, v := range verdicts {
		if v.OK() {
			continue
		}
		if len(v.Issues) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "[%s] Issues:", labels[i])
			for _, issue := range v.Issues {
				b.WriteString("\n  - ")
				b.WriteString(issue)
			}
			parts = append(parts, b.String())
		}
		if v.Suggestions != "" {
			parts = append(parts, fmt.Sprintf("[%s] Suggestions: %s", labels[i], v.Suggestions))
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// Converged reports whether every verdict accepts its document. An empty set
// is vacuously converged; callers that may see zero collected verdicts must
// check the count before trusting the answer.
func Converged(verdicts []Verdict) bool {
	for _, v := range verdicts {
		if !v.OK() {
			return false
		}
	}
	return true
}
