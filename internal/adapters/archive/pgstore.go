package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // postgres driver
)

// pgSchema creates the snapshot table on first use. One row per participant
// per date; the teams blob carries the per-team detail state.
const pgSchema = `
CREATE TABLE IF NOT EXISTS standings_snapshots (
	snapshot_date DATE        NOT NULL,
	participant   TEXT        NOT NULL,
	current_score INTEGER     NOT NULL,
	max_score     INTEGER     NOT NULL,
	teams         JSONB       NOT NULL,
	PRIMARY KEY (snapshot_date, participant)
)`

// PGStore persists snapshots in Postgres. A date's record set is replaced in
// a single transaction, so concurrent readers never observe a partial write.
type PGStore struct {
	db *sql.DB
}

// NewPGStore opens the database and ensures the snapshot table exists.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure snapshot table: %w", err)
	}
	return &PGStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PGStore) Close() error {
	return s.db.Close()
}

// Write replaces the snapshot for date inside one transaction.
func (s *PGStore) Write(ctx context.Context, date string, rows []Row) error {
	if !ValidDate(date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM standings_snapshots WHERE snapshot_date = $1`, date); err != nil {
		return fmt.Errorf("clear snapshot %s: %w", date, err)
	}
	for _, row := range rows {
		blob, err := json.Marshal(row.Teams)
		if err != nil {
			return fmt.Errorf("encode team detail for %s: %w", row.Participant, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO standings_snapshots (snapshot_date, participant, current_score, max_score, teams)
			 VALUES ($1, $2, $3, $4, $5)`,
			date, row.Participant, row.CurrentScore, row.MaxScore, blob); err != nil {
			return fmt.Errorf("insert snapshot row for %s: %w", row.Participant, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", date, err)
	}
	return nil
}

// LatestBefore loads the most recent snapshot strictly before date.
func (s *PGStore) LatestBefore(ctx context.Context, date string) (string, []Row, error) {
	if !ValidDate(date) {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	var latestCol sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT to_char(MAX(snapshot_date), 'YYYY-MM-DD')
		 FROM standings_snapshots WHERE snapshot_date < $1`, date).Scan(&latestCol)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !latestCol.Valid) {
		return "", nil, ErrNoSnapshot
	}
	if err != nil {
		return "", nil, fmt.Errorf("find latest snapshot: %w", err)
	}
	latest := latestCol.String

	rs, err := s.db.QueryContext(ctx,
		`SELECT participant, current_score, max_score, teams
		 FROM standings_snapshots WHERE snapshot_date = $1 ORDER BY participant`, latest)
	if err != nil {
		return "", nil, fmt.Errorf("load snapshot %s: %w", latest, err)
	}
	defer rs.Close()

	var rows []Row
	for rs.Next() {
		var row Row
		var blob []byte
		if err := rs.Scan(&row.Participant, &row.CurrentScore, &row.MaxScore, &blob); err != nil {
			return "", nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		if err := json.Unmarshal(blob, &row.Teams); err != nil {
			return "", nil, fmt.Errorf("%w: %s/%s: %w", ErrCorruptSnapshot, latest, row.Participant, err)
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return "", nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return latest, rows, nil
}
