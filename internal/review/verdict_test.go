package review

import (
	"strings"
	"testing"
)

func verdictsEqual(a, b Verdict) bool {
	if a.Satisfied != b.Satisfied || a.Score != b.Score || a.Suggestions != b.Suggestions {
		return false
	}
	if len(a.Issues) != len(b.Issues) {
		return false
	}
	for i := range a.Issues {
		if a.Issues[i] != b.Issues[i] {
			return false
		}
	}
	return true
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Verdict
	}{
		{
			name: "well formed object",
			raw:  `{"satisfied": true, "issues": [], "suggestions": "", "score": 92}`,
			want: Verdict{Satisfied: true, Score: 92},
		},
		{
			name: "object with surrounding prose",
			raw:  "Here is my review:\n{\"satisfied\": false, \"issues\": [\"missing DDL\"], \"suggestions\": \"add indexes\", \"score\": 70}\nDone.",
			want: Verdict{Issues: []string{"missing DDL"}, Suggestions: "add indexes", Score: 70},
		},
		{
			name: "single quoted keys repaired",
			raw:  `{'satisfied': true, 'issues': [], 'suggestions': '', 'score': 88}`,
			want: Verdict{Satisfied: true, Score: 88},
		},
		{
			name: "issues as bare string",
			raw:  `{"issues": "tables lack primary keys", "score": 80}`,
			want: Verdict{Issues: []string{"tables lack primary keys"}, Score: 80},
		},
		{
			name: "blank issues string dropped",
			raw:  `{"issues": "   ", "score": 80}`,
			want: Verdict{Score: 80},
		},
		{
			name: "non-string issue entries stringified",
			raw:  `{"issues": [3, "two"], "score": 5}`,
			want: Verdict{Issues: []string{"3", "two"}, Score: 5},
		},
		{
			name: "score as digit string",
			raw:  `{"score": "85"}`,
			want: Verdict{Score: 85},
		},
		{
			name: "float score rejected",
			raw:  `{"score": 85.5}`,
			want: Verdict{},
		},
		{
			name: "negative score rejected",
			raw:  `{"score": -10}`,
			want: Verdict{},
		},
		{
			name: "score above range passes unclamped",
			raw:  `{"score": 250}`,
			want: Verdict{Score: 250},
		},
		{
			name: "satisfied as string stays false",
			raw:  `{"satisfied": "true", "score": 10}`,
			want: Verdict{Score: 10},
		},
		{
			name: "empty reply",
			raw:  "",
			want: Verdict{},
		},
		{
			name: "empty object gives defaults",
			raw:  `{}`,
			want: Verdict{},
		},
		{
			name: "no object falls back to regex",
			raw:  `The doc is thin. My "score": 45 here, and "satisfied": false overall.`,
			want: Verdict{
				Score:       45,
				Suggestions: `The doc is thin. My "score": 45 here, and "satisfied": false overall.`,
			},
		},
		{
			name: "regex fallback uppercase satisfied",
			raw:  `"satisfied": TRUE and "score": "90"`,
			want: Verdict{Satisfied: true, Score: 90, Suggestions: `"satisfied": TRUE and "score": "90"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !verdictsEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseFallbackTruncatesSuggestions(t *testing.T) {
	raw := strings.TrimSpace(strings.Repeat("needs work ", 120))
	got := Parse(raw)

	if len([]rune(got.Suggestions)) != 800 {
		t.Errorf("fallback suggestions length = %d runes, want 800", len([]rune(got.Suggestions)))
	}
	if !strings.HasPrefix(raw, got.Suggestions) {
		t.Error("fallback suggestions should be a prefix of the reply")
	}
}
