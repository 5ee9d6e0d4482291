package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned by GetRun for unknown IDs
var ErrRunNotFound = errors.New("run not found")

// Run is the record of one release notes generation
type Run struct {
	ID            string     `json:"id" yaml:"id"`
	Owner         string     `json:"owner" yaml:"owner"`
	Repo          string     `json:"repo" yaml:"repo"`
	EndTag        string     `json:"end_tag" yaml:"end_tag"`
	StartTag      string     `json:"start_tag,omitempty" yaml:"start_tag,omitempty"`
	WindowStart   *time.Time `json:"window_start,omitempty" yaml:"window_start,omitempty"`
	WindowEnd     time.Time  `json:"window_end" yaml:"window_end"`
	Features      int        `json:"features" yaml:"features"`
	BugFixes      int        `json:"bug_fixes" yaml:"bug_fixes"`
	Documentation int        `json:"documentation" yaml:"documentation"`
	Other         int        `json:"other" yaml:"other"`
	MarkdownPath  string     `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`
	PDFPath       string     `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`
	EmailPath     string     `json:"email_path,omitempty" yaml:"email_path,omitempty"`
	CreatedAt     time.Time  `json:"created_at" yaml:"created_at"`
}

// Total returns the number of pull requests in the run
func (r Run) Total() int {
	return r.Features + r.BugFixes + r.Documentation + r.Other
}

// RecordRun stores run, assigning an ID and creation time when missing
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	var windowStart sql.NullString
	if run.WindowStart != nil {
		windowStart = sql.NullString{String: formatTime(*run.WindowStart), Valid: true}
	}

	query := `INSERT INTO runs (
		id, repo_owner, repo_name, end_tag, start_tag, window_start, window_end,
		features, bug_fixes, documentation, other,
		markdown_path, pdf_path, email_path, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.conn.ExecContext(ctx, query,
		run.ID, run.Owner, run.Repo, run.EndTag, run.StartTag, windowStart, formatTime(run.WindowEnd),
		run.Features, run.BugFixes, run.Documentation, run.Other,
		run.MarkdownPath, run.PDFPath, run.EmailPath, formatTime(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first, at most limit of them
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := s.db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`
	run, err := scanRun(s.db.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

const runColumns = `id, repo_owner, repo_name, end_tag, start_tag, window_start, window_end,
	features, bug_fixes, documentation, other,
	markdown_path, pdf_path, email_path, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run                              Run
		startTag, windowStart            sql.NullString
		windowEnd, createdAt             string
		markdownPath, pdfPath, emailPath sql.NullString
	)
	err := row.Scan(
		&run.ID, &run.Owner, &run.Repo, &run.EndTag, &startTag, &windowStart, &windowEnd,
		&run.Features, &run.BugFixes, &run.Documentation, &run.Other,
		&markdownPath, &pdfPath, &emailPath, &createdAt,
	)
	if err != nil {
		return Run{}, err
	}

	run.StartTag = startTag.String
	run.MarkdownPath = markdownPath.String
	run.PDFPath = pdfPath.String
	run.EmailPath = emailPath.String

	if run.WindowEnd, err = parseTime(windowEnd); err != nil {
		return Run{}, err
	}
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return Run{}, err
	}
	if windowStart.Valid {
		t, err := parseTime(windowStart.String)
		if err != nil {
			return Run{}, err
		}
		run.WindowStart = &t
	}
	return run, nil
}

// timeLayout has a fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
