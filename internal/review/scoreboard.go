package review

import "sort"

// Scoreboard accumulates reviewer verdicts per candidate document and picks
// the winner once every reviewer has spoken.
type Scoreboard struct {
	entries map[int]*tally
}

type tally struct {
	totalScore int
	issueCount int
	verdicts   []Verdict
	labels     []string
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{entries: make(map[int]*tally)}
}

// Add folds one reviewer's verdict into a candidate's tally. Every verdict
// counts toward the score; only verdicts carrying issues or suggestions are
// kept for later feedback.
func (s *Scoreboard) Add(id int, label string, v Verdict) {
	t := s.entries[id]
	if t == nil {
		t = &tally{}
		s.entries[id] = t
	}
	t.totalScore += v.Score
	t.issueCount += len(v.Issues)
	if len(v.Issues) > 0 || v.Suggestions != "" {
		t.verdicts = append(t.verdicts, v)
		t.labels = append(t.labels, label)
	}
}

// Totals returns the accumulated score and issue count for one candidate.
func (s *Scoreboard) Totals(id int) (score, issues int) {
	t := s.entries[id]
	if t == nil {
		return 0, 0
	}
	return t.totalScore, t.issueCount
}

// IDs returns every scored candidate id in ascending order.
func (s *Scoreboard) IDs() []int {
	ids := make([]int, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Best returns the winning candidate: highest total score, then fewest
// accumulated issues, then lowest id. The id rule makes a full tie
// deterministic regardless of map iteration order. ok is false when nothing
// was scored.
func (s *Scoreboard) Best() (id int, ok bool) {
	best := 0
	for cand, t := range s.entries {
		if !ok {
			best, ok = cand, true
			continue
		}
		bt := s.entries[best]
		switch {
		case t.totalScore != bt.totalScore:
			if t.totalScore > bt.totalScore {
				best = cand
			}
		case t.issueCount != bt.issueCount:
			if t.issueCount < bt.issueCount {
				best = cand
			}
		case cand < best:
			best = cand
		}
	}
	return best, ok
}

// Feedback merges the retained verdicts for one candidate into labeled
// feedback text. Candidates whose reviewers were all content yield "".
func (s *Scoreboard) Feedback(id int) (string, error) {
	t := s.entries[id]
	if t == nil {
		return "", nil
	}
	return Merge(t.verdicts, t.labels)
}
