// Package store keeps the run journal: every pipeline run, every agent call
// with its full prompt and reply, every parsed verdict, candidate tally, and
// alignment summary. The journal is what runs list/show/report read back.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/docsmith/internal"
	"github.com/valpere/docsmith/internal/agent"
	"github.com/valpere/docsmith/internal/review"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		dir TEXT NOT NULL,
		status TEXT DEFAULT 'running',
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS calls (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		step TEXT,
		model TEXT,
		prompt TEXT NOT NULL,
		reply TEXT,
		elapsed_ms INTEGER,
		failed BOOLEAN DEFAULT FALSE,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	-- verdicts keeps the parsed form of every review reply, tied to the call
	-- that produced it.
	CREATE TABLE IF NOT EXISTS verdicts (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		call_seq INTEGER NOT NULL,
		doc TEXT NOT NULL,
		reviewer TEXT NOT NULL,
		satisfied BOOLEAN DEFAULT FALSE,
		score INTEGER DEFAULT 0,
		issue_count INTEGER DEFAULT 0,
		issues TEXT,
		suggestions TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS candidates (
		run_id TEXT NOT NULL,
		doc TEXT NOT NULL,
		candidate INTEGER NOT NULL,
		total_score INTEGER DEFAULT 0,
		issue_count INTEGER DEFAULT 0,
		selected BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (run_id, doc, candidate),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	-- round_summaries carries the per-round alignment summaries so a report
	-- can show what each round claimed to change.
	CREATE TABLE IF NOT EXISTS round_summaries (
		run_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		model TEXT,
		summary TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (run_id, round),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_calls_run ON calls(run_id);
	CREATE INDEX IF NOT EXISTS idx_verdicts_run ON verdicts(run_id);
	CREATE INDEX IF NOT EXISTS idx_candidates_run ON candidates(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) CreateRun(ctx context.Context, id, kind, dir string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, dir, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, kind, dir, internal.StatusRunning, time.Now())
	return err
}

func (s *Store) FinishRun(ctx context.Context, id, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, time.Now(), id)
	return err
}

func (s *Store) GetRun(ctx context.Context, id string) (*internal.PipelineRun, error) {
	var run internal.PipelineRun
	var finished sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, dir, status, started_at, finished_at FROM runs WHERE id = ?`,
		id).Scan(&run.ID, &run.Kind, &run.Dir, &run.Status, &run.StartedAt, &finished)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

// ListRuns returns all runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]internal.PipelineRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, dir, status, started_at, finished_at FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []internal.PipelineRun
	for rows.Next() {
		var run internal.PipelineRun
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.Kind, &run.Dir, &run.Status, &run.StartedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			run.FinishedAt = &finished.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CallRecord is a row from the calls table.
type CallRecord struct {
	RunID     string
	Seq       int
	Step      string
	Model     string
	Prompt    string
	Reply     string
	Elapsed   time.Duration
	Failed    bool
	Err       string
	CreatedAt time.Time
}

func (s *Store) SaveCall(ctx context.Context, runID string, e agent.CallEntry) error {
	id := fmt.Sprintf("%s_%d", runID, e.Seq)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calls (id, run_id, seq, step, model, prompt, reply, elapsed_ms, failed, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, runID, e.Seq, e.Step, e.Model, e.Prompt, e.Reply, e.Elapsed.Milliseconds(), e.Failed, e.Err)
	return err
}

// CallLog returns an agent.CallLog that journals every entry under one run.
func (s *Store) CallLog(runID string) agent.CallLog {
	return &runLog{store: s, runID: runID}
}

type runLog struct {
	store *Store
	runID string
}

func (l *runLog) LogCall(ctx context.Context, e agent.CallEntry) error {
	return l.store.SaveCall(ctx, l.runID, e)
}

// ListCalls returns all calls of a run in sequence order.
func (s *Store) ListCalls(ctx context.Context, runID string) ([]CallRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, seq, step, model, prompt, reply, elapsed_ms, failed, error, created_at FROM calls WHERE run_id = ? ORDER BY seq`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []CallRecord
	for rows.Next() {
		var c CallRecord
		var elapsedMs int64
		if err := rows.Scan(&c.RunID, &c.Seq, &c.Step, &c.Model, &c.Prompt, &c.Reply, &elapsedMs, &c.Failed, &c.Err, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// RunStats summarises one run for the CLI.
type RunStats struct {
	Calls        int
	FailedCalls  int
	TotalElapsed time.Duration
	Verdicts     int
	AvgScore     float64
}

func (s *Store) Stats(ctx context.Context, runID string) (*RunStats, error) {
	stats := &RunStats{}
	var elapsedMs int64

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN failed THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(elapsed_ms), 0)
		FROM calls WHERE run_id = ?`, runID).Scan(
		&stats.Calls,
		&stats.FailedCalls,
		&elapsedMs,
	)
	if err != nil {
		return nil, err
	}
	stats.TotalElapsed = time.Duration(elapsedMs) * time.Millisecond

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(score), 0) FROM verdicts WHERE run_id = ?`, runID).Scan(
		&stats.Verdicts,
		&stats.AvgScore,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// VerdictRecord is a row from the verdicts table.
type VerdictRecord struct {
	RunID       string
	CallSeq     int
	Doc         string
	Reviewer    string
	Satisfied   bool
	Score       int
	IssueCount  int
	Issues      []string
	Suggestions string
	CreatedAt   time.Time
}

func (s *Store) SaveVerdict(ctx context.Context, runID string, callSeq int, doc, reviewer string, v review.Verdict) error {
	issues, err := json.Marshal(v.Issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}

	id := fmt.Sprintf("v_%d", time.Now().UnixNano())
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO verdicts (id, run_id, call_seq, doc, reviewer, satisfied, score, issue_count, issues, suggestions) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, runID, callSeq, normalizeText(doc), reviewer, v.Satisfied, v.Score, len(v.Issues), string(issues), v.Suggestions)
	return err
}

// ListVerdicts returns all verdicts of a run in the order they were parsed.
func (s *Store) ListVerdicts(ctx context.Context, runID string) ([]VerdictRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, call_seq, doc, reviewer, satisfied, score, issue_count, issues, suggestions, created_at FROM verdicts WHERE run_id = ? ORDER BY call_seq`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var verdicts []VerdictRecord
	for rows.Next() {
		var v VerdictRecord
		var issues string
		if err := rows.Scan(&v.RunID, &v.CallSeq, &v.Doc, &v.Reviewer, &v.Satisfied, &v.Score, &v.IssueCount, &issues, &v.Suggestions, &v.CreatedAt); err != nil {
			return nil, err
		}
		if issues != "" {
			if err := json.Unmarshal([]byte(issues), &v.Issues); err != nil {
				return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
			}
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}

// CandidateRecord is a row from the candidates table.
type CandidateRecord struct {
	RunID      string
	Doc        string
	Candidate  int
	TotalScore int
	IssueCount int
	Selected   bool
}

func (s *Store) SaveCandidate(ctx context.Context, runID, doc string, candidate, totalScore, issueCount int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO candidates (run_id, doc, candidate, total_score, issue_count, selected) VALUES (?, ?, ?, ?, ?, FALSE)`,
		runID, normalizeText(doc), candidate, totalScore, issueCount)
	return err
}

// MarkCandidateSelected flags the winning candidate.
func (s *Store) MarkCandidateSelected(ctx context.Context, runID, doc string, candidate int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE candidates SET selected = TRUE WHERE run_id = ? AND doc = ? AND candidate = ?`,
		runID, normalizeText(doc), candidate)
	return err
}

// ListCandidates returns all candidate tallies of a run.
func (s *Store) ListCandidates(ctx context.Context, runID string) ([]CandidateRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, doc, candidate, total_score, issue_count, selected FROM candidates WHERE run_id = ? ORDER BY doc, candidate`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []CandidateRecord
	for rows.Next() {
		var c CandidateRecord
		if err := rows.Scan(&c.RunID, &c.Doc, &c.Candidate, &c.TotalScore, &c.IssueCount, &c.Selected); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// RoundSummaryRecord is a row from the round_summaries table.
type RoundSummaryRecord struct {
	RunID     string
	Round     int
	Model     string
	Summary   string
	CreatedAt time.Time
}

func (s *Store) SaveRoundSummary(ctx context.Context, runID string, round int, model, summary string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO round_summaries (run_id, round, model, summary) VALUES (?, ?, ?, ?)`,
		runID, round, model, summary)
	return err
}

// ListRoundSummaries returns the alignment summaries of a run in round order.
func (s *Store) ListRoundSummaries(ctx context.Context, runID string) ([]RoundSummaryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, round, model, summary, created_at FROM round_summaries WHERE run_id = ? ORDER BY round`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []RoundSummaryRecord
	for rows.Next() {
		var r RoundSummaryRecord
		if err := rows.Scan(&r.RunID, &r.Round, &r.Model, &r.Summary, &r.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, r)
	}
	return summaries, rows.Err()
}

// SummaryDrift reports how much each alignment round's summary differs from
// the previous one, as 1-similarity values in [0, 1]. A drift near 0 means
// the round reported essentially the same changes again.
func (s *Store) SummaryDrift(ctx context.Context, runID string) ([]float64, error) {
	summaries, err := s.ListRoundSummaries(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(summaries) < 2 {
		return nil, nil
	}

	drift := make([]float64, 0, len(summaries)-1)
	for i := 1; i < len(summaries); i++ {
		drift = append(drift, 1.0-stringSimilarity(summaries[i-1].Summary, summaries[i].Summary))
	}
	return drift, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization so
// model-produced document names compare consistently across rows.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// levenshtein returns the edit distance between two strings (rune-aware).
// Uses a space-optimized two-row DP implementation.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
			} else {
				min := prev[j]
				if prev[j-1] < min {
					min = prev[j-1]
				}
				if curr[j-1] < min {
					min = curr[j-1]
				}
				curr[j] = min + 1
			}
		}
		prev, curr = curr, prev
	}

	return prev[lb]
}

// stringSimilarity returns a similarity score in [0, 1] (1 = identical).
func stringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}
