package review

import (
	"strings"
	"testing"
)

func TestScoreboardBest(t *testing.T) {
	tests := []struct {
		name string
		fill func(s *Scoreboard)
		want int
	}{
		{
			name: "highest total score wins",
			fill: func(s *Scoreboard) {
				s.Add(1, "r1", Verdict{Score: 70})
				s.Add(2, "r1", Verdict{Score: 90})
				s.Add(3, "r1", Verdict{Score: 80})
			},
			want: 2,
		},
		{
			name: "score tie broken by fewer issues",
			fill: func(s *Scoreboard) {
				s.Add(1, "r1", Verdict{Score: 80, Issues: []string{"a", "b"}})
				s.Add(2, "r1", Verdict{Score: 80, Issues: []string{"a"}})
			},
			want: 2,
		},
		{
			name: "full tie broken by lowest id",
			fill: func(s *Scoreboard) {
				s.Add(3, "r1", Verdict{Score: 80, Issues: []string{"a"}})
				s.Add(1, "r1", Verdict{Score: 80, Issues: []string{"b"}})
				s.Add(2, "r1", Verdict{Score: 80, Issues: []string{"c"}})
			},
			want: 1,
		},
		{
			name: "scores accumulate across reviewers",
			fill: func(s *Scoreboard) {
				s.Add(1, "r1", Verdict{Score: 90})
				s.Add(1, "r2", Verdict{Score: 10})
				s.Add(2, "r1", Verdict{Score: 60})
				s.Add(2, "r2", Verdict{Score: 60})
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScoreboard()
			tt.fill(s)
			got, ok := s.Best()
			if !ok {
				t.Fatal("Best() reported nothing scored")
			}
			if got != tt.want {
				t.Errorf("Best() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreboardBestEmpty(t *testing.T) {
	s := NewScoreboard()
	if _, ok := s.Best(); ok {
		t.Error("Best() on empty scoreboard should report ok=false")
	}
}

func TestScoreboardTotals(t *testing.T) {
	s := NewScoreboard()
	s.Add(1, "r1", Verdict{Score: 40, Issues: []string{"a", "b"}})
	s.Add(1, "r2", Verdict{Score: 35, Issues: []string{"c"}})

	score, issues := s.Totals(1)
	if score != 75 || issues != 3 {
		t.Errorf("Totals(1) = (%d, %d), want (75, 3)", score, issues)
	}

	score, issues = s.Totals(9)
	if score != 0 || issues != 0 {
		t.Errorf("Totals of unknown candidate = (%d, %d), want zeros", score, issues)
	}
}

func TestScoreboardIDs(t *testing.T) {
	s := NewScoreboard()
	s.Add(3, "r1", Verdict{Score: 1})
	s.Add(1, "r1", Verdict{Score: 1})
	s.Add(2, "r1", Verdict{Score: 1})

	ids := s.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("IDs() = %v, want [1 2 3]", ids)
	}
}

func TestScoreboardFeedback(t *testing.T) {
	s := NewScoreboard()
	s.Add(1, "harsh", Verdict{Score: 40, Issues: []string{"thin entity model"}})
	s.Add(1, "mild", Verdict{Score: 85})
	s.Add(1, "helpful", Verdict{Score: 60, Suggestions: "name the indexes"})

	got, err := s.Feedback(1)
	if err != nil {
		t.Fatalf("Feedback returned error: %v", err)
	}
	if !strings.Contains(got, "[harsh] Issues:\n  - thin entity model") {
		t.Errorf("feedback missing issue block:\n%s", got)
	}
	if !strings.Contains(got, "[helpful] Suggestions: name the indexes") {
		t.Errorf("feedback missing suggestion block:\n%s", got)
	}
	if strings.Contains(got, "mild") {
		t.Errorf("score-only verdict leaked into feedback:\n%s", got)
	}

	if fb, err := s.Feedback(42); err != nil || fb != "" {
		t.Errorf("Feedback of unknown candidate = (%q, %v), want empty", fb, err)
	}
}
