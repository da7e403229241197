// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/staccato/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session summary history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session_summaries (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_seconds REAL NOT NULL,
			total_keypresses INTEGER NOT NULL,
			clean_keypresses INTEGER NOT NULL,
			overlapping_keypresses INTEGER NOT NULL,
			hygiene_score REAL NOT NULL,
			adhesion_rate REAL NOT NULL,
			total_overlap_ms REAL NOT NULL,
			minor_adhesions INTEGER NOT NULL,
			moderate_adhesions INTEGER NOT NULL,
			severe_adhesions INTEGER NOT NULL,
			worst_pair TEXT NOT NULL,
			events_file TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_session_summaries_ended_at ON session_summaries(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSummary stores one analyzed session summary.
func (s *Store) InsertSummary(ctx context.Context, sum model.SessionSummary) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO session_summaries (started_at, ended_at, duration_seconds, total_keypresses, clean_keypresses,
			overlapping_keypresses, hygiene_score, adhesion_rate, total_overlap_ms,
			minor_adhesions, moderate_adhesions, severe_adhesions, worst_pair, events_file)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.StartedAt,
		sum.EndedAt,
		sum.DurationSeconds,
		sum.TotalKeypresses,
		sum.CleanKeypresses,
		sum.OverlappingKeypresses,
		sum.HygieneScore,
		sum.AdhesionRate,
		sum.TotalOverlapMs,
		sum.MinorAdhesions,
		sum.ModerateAdhesions,
		sum.SevereAdhesions,
		sum.WorstPair,
		sum.EventsFile,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSummaries returns summaries filtered by the stats config, oldest
// first. Last, when positive, keeps only the most recent N.
func (s *Store) ListSummaries(ctx context.Context, cfg model.StatsConfig) ([]model.SessionSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != "" {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since)
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, duration_seconds, total_keypresses, clean_keypresses,
			overlapping_keypresses, hygiene_score, adhesion_rate, total_overlap_ms,
			minor_adhesions, moderate_adhesions, severe_adhesions, worst_pair, events_file
		FROM session_summaries
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.SessionSummary
	for rows.Next() {
		var sum model.SessionSummary
		if err := rows.Scan(
			&sum.SummaryID,
			&sum.StartedAt,
			&sum.EndedAt,
			&sum.DurationSeconds,
			&sum.TotalKeypresses,
			&sum.CleanKeypresses,
			&sum.OverlappingKeypresses,
			&sum.HygieneScore,
			&sum.AdhesionRate,
			&sum.TotalOverlapMs,
			&sum.MinorAdhesions,
			&sum.ModerateAdhesions,
			&sum.SevereAdhesions,
			&sum.WorstPair,
			&sum.EventsFile,
		); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(out) > cfg.Last {
		out = out[len(out)-cfg.Last:]
	}
	return out, nil
}
