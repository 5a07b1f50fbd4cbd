package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/courtside/courtside/internal/domain/model"
	"github.com/courtside/courtside/internal/domain/types"
	"github.com/courtside/courtside/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultQueryTimeout = 5 * time.Second
	defaultMaxOpenConns = 1 // SQLite serializes writers; a single conn avoids SQLITE_BUSY
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	location        TEXT NOT NULL DEFAULT '',
	latitude        REAL,
	longitude       REAL,
	scheduled_at    INTEGER NOT NULL,
	max_players     INTEGER NOT NULL,
	current_players INTEGER NOT NULL DEFAULT 0,
	skill_level     TEXT,
	court_type      TEXT,
	visibility      TEXT NOT NULL,
	status          TEXT NOT NULL,
	organizer_name  TEXT NOT NULL DEFAULT '',
	share_code      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sessions_discovery
	ON sessions (status, visibility, scheduled_at);
`

const sessionColumns = `id, name, location, latitude, longitude, scheduled_at,
	max_players, current_players, skill_level, court_type, visibility, status,
	organizer_name, share_code`

// SQLStore implements Store on an embedded SQLite database.
type SQLStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLStore opens (and migrates) the database at dsn.
func NewSQLStore(dsn string, opts ...StoreOption) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)

	s := &SQLStore{db: db, timeout: defaultQueryTimeout}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate session store: %w", err)
	}
	return s, nil
}

// buildWhere translates a coarse predicate into a WHERE clause. Only
// natively-evaluable conditions belong here.
func buildWhere(pred CoarsePredicate) (string, []any) {
	conds := make([]string, 0, 7)
	args := make([]any, 0, 6)

	if pred.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(pred.Status))
	}
	if pred.Visibility != "" {
		conds = append(conds, "visibility = ?")
		args = append(args, string(pred.Visibility))
	}
	if pred.SkillLevel != "" {
		conds = append(conds, "skill_level = ?")
		args = append(args, string(pred.SkillLevel))
	}
	if pred.CourtType != "" {
		conds = append(conds, "court_type = ?")
		args = append(args, pred.CourtType)
	}
	if pred.StartTime != nil {
		conds = append(conds, "scheduled_at >= ?")
		args = append(args, pred.StartTime.Unix())
	}
	if pred.EndTime != nil {
		conds = append(conds, "scheduled_at <= ?")
		args = append(args, pred.EndTime.Unix())
	}
	if pred.RequireCoordinates {
		conds = append(conds, "latitude IS NOT NULL AND longitude IS NOT NULL")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// FindCandidates returns the candidate page for pred.
func (s *SQLStore) FindCandidates(ctx context.Context, pred CoarsePredicate, limit, offset int) ([]model.SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	where, args := buildWhere(pred)
	query := "SELECT " + sessionColumns + " FROM sessions" + where +
		" ORDER BY scheduled_at ASC, id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("find candidates: %w: %v", ErrUpstream, err)
	}
	defer rows.Close()

	var records []model.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("scan candidate: %w: %v", ErrUpstream, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("iterate candidates: %w: %v", ErrUpstream, err)
	}
	return records, nil
}

// Count returns the total number of rows matching pred.
func (s *SQLStore) Count(ctx context.Context, pred CoarsePredicate) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	where, args := buildWhere(pred)
	var count int
	start := time.Now()
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions"+where, args...).Scan(&count)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		return 0, fmt.Errorf("count candidates: %w: %v", ErrUpstream, err)
	}
	return count, nil
}

// GetByID returns a single record or ErrNotFound.
func (s *SQLStore) GetByID(ctx context.Context, id string) (model.SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SessionRecord{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError()
		return model.SessionRecord{}, fmt.Errorf("get session %s: %w: %v", id, ErrUpstream, err)
	}
	return rec, nil
}

// Insert stores a new session record.
func (s *SQLStore) Insert(ctx context.Context, rec model.SessionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `INSERT INTO sessions
		(id, name, location, latitude, longitude, scheduled_at, max_players,
		 current_players, skill_level, court_type, visibility, status,
		 organizer_name, share_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Location,
		nullableFloat(rec.Latitude), nullableFloat(rec.Longitude),
		rec.ScheduledAt.Unix(), rec.MaxPlayers, rec.CurrentPlayers,
		nullableString(string(rec.SkillLevel)), nullableString(rec.CourtType),
		string(rec.Visibility), string(rec.Status),
		rec.OrganizerName, rec.ShareCode,
	)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("insert session %s: %w: %v", rec.ID, ErrUpstream, err)
	}
	return nil
}

// UpdateStatus transitions a session's lifecycle status.
func (s *SQLStore) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	return s.update(ctx, id, "UPDATE sessions SET status = ? WHERE id = ?", string(status), id)
}

// UpdatePlayers sets the current player count.
func (s *SQLStore) UpdatePlayers(ctx context.Context, id string, currentPlayers int) error {
	return s.update(ctx, id, "UPDATE sessions SET current_players = ? WHERE id = ?", currentPlayers, id)
}

func (s *SQLStore) update(ctx context.Context, id, query string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("update session %s: %w: %v", id, ErrUpstream, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (model.SessionRecord, error) {
	var (
		rec         model.SessionRecord
		lat, lon    sql.NullFloat64
		skill       sql.NullString
		court       sql.NullString
		visibility  string
		status      string
		scheduledAt int64
	)
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Location, &lat, &lon, &scheduledAt,
		&rec.MaxPlayers, &rec.CurrentPlayers, &skill, &court,
		&visibility, &status, &rec.OrganizerName, &rec.ShareCode,
	)
	if err != nil {
		return model.SessionRecord{}, err
	}

	if lat.Valid && lon.Valid {
		rec.Latitude = &lat.Float64
		rec.Longitude = &lon.Float64
	}
	rec.ScheduledAt = time.Unix(scheduledAt, 0).UTC()
	if skill.Valid {
		rec.SkillLevel = types.SkillLevel(skill.String)
	}
	if court.Valid {
		rec.CourtType = court.String
	}
	rec.Visibility = types.Visibility(visibility)
	rec.Status = types.Status(status)
	return rec, nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
