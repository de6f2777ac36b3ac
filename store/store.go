// Package store persists briefing, campaign, and run records in SQLite.
// It uses modernc.org/sqlite, a pure Go SQLite implementation, so the
// binary stays CGO-free. The pipeline itself is stateless; this store is
// where seed URLs and prompts are read from and run results written back.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/gaurav-prasanna/briefpipe/core"
)

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("record not found")

// Briefing is a saved pipeline configuration: where to look and what for.
type Briefing struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Prompt         string    `json:"prompt"`
	SeedURL        string    `json:"seed_url"`
	PageType       string    `json:"page_type"`
	MaxItems       int       `json:"max_items"`
	TimeRangeDays  int       `json:"time_range_days"`
	Status         string    `json:"status"` // "active" or "paused"
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RunRequest derives the pipeline invocation for this briefing.
func (b *Briefing) RunRequest() core.RunRequest {
	return core.RunRequest{
		URL:               b.SeedURL,
		Prompt:            b.Prompt,
		PageType:          b.PageType,
		MaxItems:          b.MaxItems,
		RecencyWindowDays: b.TimeRangeDays,
	}
}

// Campaign groups briefings under a delivery schedule.
type Campaign struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Recipients  []string  `json:"recipients"`
	Schedule    string    `json:"schedule"` // cron expression
	BriefingIDs []string  `json:"briefing_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// Run is one persisted pipeline execution for a briefing.
type Run struct {
	ID         string          `json:"id"`
	BriefingID string          `json:"briefing_id"`
	Status     string          `json:"status"` // "succeeded" or "failed"
	Result     *core.RunResult `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS briefings (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	prompt          TEXT NOT NULL,
	seed_url        TEXT NOT NULL,
	page_type       TEXT NOT NULL,
	max_items       INTEGER NOT NULL,
	time_range_days INTEGER NOT NULL,
	status          TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS campaigns (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	recipients   TEXT NOT NULL,
	schedule     TEXT NOT NULL,
	briefing_ids TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	briefing_id TEXT NOT NULL REFERENCES briefings(id),
	status      TEXT NOT NULL,
	result      TEXT,
	error       TEXT,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_briefing ON runs(briefing_id, started_at);
`

// Store is the SQLite-backed record store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the store under dataDir. An empty dataDir
// defaults to ~/.briefpipe. Pass ":memory:" for an ephemeral store.
func NewStore(dataDir string) (*Store, error) {
	dsn := dataDir
	path := dataDir
	if dataDir != ":memory:" {
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("getting home directory: %w", err)
			}
			dataDir = filepath.Join(home, ".briefpipe")
		}
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		path = filepath.Join(dataDir, "briefpipe.db")
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateBriefing inserts a briefing, assigning its ID and timestamps.
func (s *Store) CreateBriefing(ctx context.Context, b *Briefing) error {
	b.ID = uuid.NewString()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = "active"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO briefings (id, name, prompt, seed_url, page_type, max_items, time_range_days, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Prompt, b.SeedURL, b.PageType, b.MaxItems, b.TimeRangeDays, b.Status, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting briefing: %w", err)
	}
	return nil
}

// GetBriefing fetches one briefing by ID.
func (s *Store) GetBriefing(ctx context.Context, id string) (*Briefing, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, prompt, seed_url, page_type, max_items, time_range_days, status, created_at, updated_at
		FROM briefings WHERE id = ?`, id)
	return scanBriefing(row)
}

// ListBriefings returns all briefings, newest first.
func (s *Store) ListBriefings(ctx context.Context) ([]Briefing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, prompt, seed_url, page_type, max_items, time_range_days, status, created_at, updated_at
		FROM briefings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing briefings: %w", err)
	}
	defer rows.Close()

	var out []Briefing
	for rows.Next() {
		b, err := scanBriefing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// UpdateBriefingStatus sets a briefing's status.
func (s *Store) UpdateBriefingStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE briefings SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating briefing: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBriefing removes a briefing and its runs in one transaction, so a
// failure never leaves the briefing without its run history.
func (s *Store) DeleteBriefing(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE briefing_id = ?`, id); err != nil {
		return fmt.Errorf("deleting runs: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM briefings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting briefing: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// CreateCampaign inserts a campaign, assigning its ID and timestamp.
func (s *Store) CreateCampaign(ctx context.Context, c *Campaign) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	recipients, err := json.Marshal(c.Recipients)
	if err != nil {
		return fmt.Errorf("marshaling recipients: %w", err)
	}
	briefingIDs, err := json.Marshal(c.BriefingIDs)
	if err != nil {
		return fmt.Errorf("marshaling briefing ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, recipients, schedule, briefing_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(recipients), c.Schedule, string(briefingIDs), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting campaign: %w", err)
	}
	return nil
}

// GetCampaign fetches one campaign by ID.
func (s *Store) GetCampaign(ctx context.Context, id string) (*Campaign, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, recipients, schedule, briefing_ids, created_at FROM campaigns WHERE id = ?`, id)
	return scanCampaign(row)
}

// ListCampaigns returns all campaigns, newest first.
func (s *Store) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, recipients, schedule, briefing_ids, created_at FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var out []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// SaveRun persists a completed run, assigning its ID.
func (s *Store) SaveRun(ctx context.Context, r *Run) error {
	r.ID = uuid.NewString()

	var result any
	if r.Result != nil {
		data, err := json.Marshal(r.Result)
		if err != nil {
			return fmt.Errorf("marshaling run result: %w", err)
		}
		result = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, briefing_id, status, result, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.BriefingID, r.Status, result, r.Error, r.StartedAt, r.FinishedAt)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// ListRuns returns the runs for a briefing, newest first.
func (s *Store) ListRuns(ctx context.Context, briefingID string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, briefing_id, status, result, error, started_at, finished_at
		FROM runs WHERE briefing_id = ? ORDER BY started_at DESC`, briefingID)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var result sql.NullString
		if err := rows.Scan(&r.ID, &r.BriefingID, &r.Status, &result, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if result.Valid && result.String != "" {
			var rr core.RunResult
			if err := json.Unmarshal([]byte(result.String), &rr); err != nil {
				return nil, fmt.Errorf("unmarshaling run result: %w", err)
			}
			r.Result = &rr
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBriefing(row scanner) (*Briefing, error) {
	var b Briefing
	err := row.Scan(&b.ID, &b.Name, &b.Prompt, &b.SeedURL, &b.PageType,
		&b.MaxItems, &b.TimeRangeDays, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning briefing: %w", err)
	}
	return &b, nil
}

func scanCampaign(row scanner) (*Campaign, error) {
	var c Campaign
	var recipients, briefingIDs string
	err := row.Scan(&c.ID, &c.Name, &recipients, &c.Schedule, &briefingIDs, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}
	if err := json.Unmarshal([]byte(recipients), &c.Recipients); err != nil {
		return nil, fmt.Errorf("unmarshaling recipients: %w", err)
	}
	if err := json.Unmarshal([]byte(briefingIDs), &c.BriefingIDs); err != nil {
		return nil, fmt.Errorf("unmarshaling briefing ids: %w", err)
	}
	return &c, nil
}
