package review

import "testing"

func TestMerge(t *testing.T) {
	verdicts := []Verdict{
		{Satisfied: false, Issues: []string{"no error path", "ids collide"}, Suggestions: "split the writer", Score: 50},
		{Satisfied: true, Suggestions: "looks complete", Score: 90},
		{Satisfied: true, Issues: []string{"stale diagram"}, Score: 95},
		{Satisfied: true, Score: 88},
	}
	labels := []string{"alpha", "beta", "gamma", "delta"}

	got, err := Merge(verdicts, labels)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}

	// beta accepted outright, so its suggestions are dropped with it.
	want := "[alpha] Issues:\n  - no error path\n  - ids collide\n\n" +
		"[alpha] Suggestions: split the writer\n\n" +
		"[gamma] Issues:\n  - stale diagram"
	if got != want {
		t.Errorf("Merge output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestMergeAllContent(t *testing.T) {
	verdicts := []Verdict{
		{Satisfied: true, Score: 90},
		{Satisfied: true, Score: 85},
	}
	got, err := Merge(verdicts, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if got != "" {
		t.Errorf("Merge of content verdicts = %q, want empty", got)
	}
}

func TestMergeEmpty(t *testing.T) {
	got, err := Merge(nil, nil)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if got != "" {
		t.Errorf("Merge of nothing = %q, want empty", got)
	}
}

func TestMergeCountMismatch(t *testing.T) {
	_, err := Merge([]Verdict{{}}, []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error for verdict/label count mismatch")
	}
}

func TestConverged(t *testing.T) {
	tests := []struct {
		name     string
		verdicts []Verdict
		want     bool
	}{
		{
			name:     "empty set is vacuously converged",
			verdicts: nil,
			want:     true,
		},
		{
			name: "all satisfied without issues",
			verdicts: []Verdict{
				{Satisfied: true, Score: 90},
				{Satisfied: true, Score: 80},
			},
			want: true,
		},
		{
			name: "satisfied flag with issues does not converge",
			verdicts: []Verdict{
				{Satisfied: true, Issues: []string{"x"}, Score: 90},
				{Satisfied: true, Score: 80},
			},
			want: false,
		},
		{
			name: "one unsatisfied blocks convergence",
			verdicts: []Verdict{
				{Satisfied: true, Score: 90},
				{Satisfied: false, Score: 95},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Converged(tt.verdicts); got != tt.want {
				t.Errorf("Converged() = %v, want %v", got, tt.want)
			}
		})
	}
}
