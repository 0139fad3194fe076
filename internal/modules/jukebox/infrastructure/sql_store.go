package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// ErrUnsupportedDatabase is returned for DATABASE_URL schemes without a driver.
var ErrUnsupportedDatabase = errors.New("unsupported database url")

// dialect captures the SQL differences between the supported backends.
type dialect struct {
	driver     string
	positional bool // $1, $2 ... instead of ?
	schema     []string
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS tracks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			artist      TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			uri         TEXT NOT NULL DEFAULT '',
			artwork_url TEXT NOT NULL DEFAULT '',
			source_name TEXT NOT NULL DEFAULT '',
			added_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			track_id           TEXT NOT NULL REFERENCES tracks(id),
			bid_amount         REAL NOT NULL,
			payment_session_id TEXT NOT NULL UNIQUE,
			status             TEXT NOT NULL DEFAULT 'pending',
			created_at         INTEGER NOT NULL,
			confirmed_at       INTEGER,
			played_at          INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status)`,
	},
}

var postgresDialect = dialect{
	driver:     "pgx",
	positional: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS tracks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			artist      TEXT NOT NULL DEFAULT '',
			duration_ms BIGINT NOT NULL DEFAULT 0,
			uri         TEXT NOT NULL DEFAULT '',
			artwork_url TEXT NOT NULL DEFAULT '',
			source_name TEXT NOT NULL DEFAULT '',
			added_at    BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id                 BIGSERIAL PRIMARY KEY,
			track_id           TEXT NOT NULL REFERENCES tracks(id),
			bid_amount         DOUBLE PRECISION NOT NULL,
			payment_session_id TEXT NOT NULL UNIQUE,
			status             TEXT NOT NULL DEFAULT 'pending',
			created_at         BIGINT NOT NULL,
			confirmed_at       BIGINT,
			played_at          BIGINT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status)`,
	},
}

// rebind rewrites ? placeholders for dialects that use positional parameters.
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore persists tracks and submissions in SQLite or PostgreSQL.
// Timestamps are stored as Unix nanoseconds so both backends behave the same.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// OpenStore opens the database named by rawURL. Supported forms are
// sqlite://path, sqlite::memory:, postgres://... and postgresql://....
func OpenStore(ctx context.Context, rawURL string) (*SQLStore, error) {
	d, dsn, err := parseDatabaseURL(rawURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if d.driver == "sqlite" {
		// A single connection keeps :memory: databases shared and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `
			PRAGMA foreign_keys = ON;
			PRAGMA journal_mode = WAL;
			PRAGMA busy_timeout = 5000;
		`); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure database: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLStore{db: db, dialect: d}, nil
}

func parseDatabaseURL(rawURL string) (dialect, string, error) {
	scheme, rest, ok := strings.Cut(rawURL, ":")
	if !ok {
		return dialect{}, "", fmt.Errorf("%w: %q", ErrUnsupportedDatabase, rawURL)
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		path := strings.TrimPrefix(rest, "//")
		if path == "" {
			return dialect{}, "", fmt.Errorf("%w: missing sqlite path", ErrUnsupportedDatabase)
		}
		return sqliteDialect, path, nil
	case "postgres", "postgresql":
		return postgresDialect, rawURL, nil
	default:
		return dialect{}, "", fmt.Errorf("%w: scheme %q", ErrUnsupportedDatabase, scheme)
	}
}

// Migrate creates the tables if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

// SaveTrack stores the track metadata, updating it if the track is already known.
func (s *SQLStore) SaveTrack(ctx context.Context, track domain.Track) error {
	_, err := s.exec(ctx, `
		INSERT INTO tracks (id, title, artist, duration_ms, uri, artwork_url, source_name, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			duration_ms = excluded.duration_ms,
			uri = excluded.uri,
			artwork_url = excluded.artwork_url,
			source_name = excluded.source_name`,
		string(track.ID),
		track.Title,
		track.Artist,
		track.Duration.Milliseconds(),
		track.URI,
		track.ArtworkURL,
		track.SourceName,
		time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save track %s: %w", track.ID, err)
	}
	return nil
}

// GetTrack returns stored track metadata.
func (s *SQLStore) GetTrack(ctx context.Context, id domain.TrackID) (*domain.Track, error) {
	var (
		track      domain.Track
		durationMs int64
		trackID    string
	)
	err := s.queryRow(ctx, `
		SELECT id, title, artist, duration_ms, uri, artwork_url, source_name
		FROM tracks WHERE id = ?`, string(id),
	).Scan(&trackID, &track.Title, &track.Artist, &durationMs, &track.URI, &track.ArtworkURL, &track.SourceName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get track %s: %w", id, err)
	}

	track.ID = domain.TrackID(trackID)
	track.Duration = time.Duration(durationMs) * time.Millisecond
	return &track, nil
}

// Create stores a new submission and assigns its ID.
func (s *SQLStore) Create(ctx context.Context, submission *domain.Submission) error {
	var id int64
	err := s.queryRow(ctx, `
		INSERT INTO submissions (track_id, bid_amount, payment_session_id, status, created_at, confirmed_at, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		string(submission.Track.ID),
		submission.BidAmount,
		submission.PaymentSessionID,
		string(submission.Status),
		submission.CreatedAt.UnixNano(),
		nullTime(submission.ConfirmedAt),
		nullTime(submission.PlayedAt),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}

	submission.ID = domain.SubmissionID(id)
	return nil
}

const selectSubmission = `
	SELECT s.id, s.bid_amount, s.payment_session_id, s.status, s.created_at, s.confirmed_at, s.played_at,
		t.id, t.title, t.artist, t.duration_ms, t.uri, t.artwork_url, t.source_name
	FROM submissions s
	JOIN tracks t ON t.id = s.track_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var (
		sub         domain.Submission
		id          int64
		status      string
		createdAt   int64
		confirmedAt sql.NullInt64
		playedAt    sql.NullInt64
		trackID     string
		durationMs  int64
	)
	err := row.Scan(
		&id, &sub.BidAmount, &sub.PaymentSessionID, &status, &createdAt, &confirmedAt, &playedAt,
		&trackID, &sub.Track.Title, &sub.Track.Artist, &durationMs, &sub.Track.URI, &sub.Track.ArtworkURL, &sub.Track.SourceName,
	)
	if err != nil {
		return nil, err
	}

	sub.ID = domain.SubmissionID(id)
	sub.Status = domain.ParseSubmissionStatus(status)
	sub.CreatedAt = time.Unix(0, createdAt).UTC()
	sub.ConfirmedAt = timeFromNull(confirmedAt)
	sub.PlayedAt = timeFromNull(playedAt)
	sub.Track.ID = domain.TrackID(trackID)
	sub.Track.Duration = time.Duration(durationMs) * time.Millisecond
	return &sub, nil
}

// GetByPaymentSession returns the submission for the payment session.
func (s *SQLStore) GetByPaymentSession(ctx context.Context, sessionID string) (*domain.Submission, error) {
	sub, err := scanSubmission(s.queryRow(ctx, selectSubmission+` WHERE s.payment_session_id = ?`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission %s: %w", sessionID, err)
	}
	return sub, nil
}

// transition moves the submission for sessionID out of pending. The
// conditional UPDATE makes concurrent confirmations race-free.
func (s *SQLStore) transition(
	ctx context.Context,
	sessionID string,
	to domain.SubmissionStatus,
	confirmedAt *time.Time,
) error {
	res, err := s.exec(ctx, `
		UPDATE submissions SET status = ?, confirmed_at = COALESCE(?, confirmed_at)
		WHERE payment_session_id = ? AND status = ?`,
		string(to), nullTime(confirmedAt), sessionID, string(domain.SubmissionPending),
	)
	if err != nil {
		return fmt.Errorf("update submission %s: %w", sessionID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission %s: %w", sessionID, err)
	}
	if n > 0 {
		return nil
	}

	if _, err := s.GetByPaymentSession(ctx, sessionID); err != nil {
		return err
	}
	return domain.ErrSubmissionNotPending
}

// Complete moves a pending submission to completed.
func (s *SQLStore) Complete(ctx context.Context, sessionID string, at time.Time) (*domain.Submission, error) {
	if err := s.transition(ctx, sessionID, domain.SubmissionCompleted, &at); err != nil {
		return nil, err
	}
	return s.GetByPaymentSession(ctx, sessionID)
}

// Fail moves a pending submission to failed.
func (s *SQLStore) Fail(ctx context.Context, sessionID string) error {
	return s.transition(ctx, sessionID, domain.SubmissionFailed, nil)
}

// RecordEnqueuedAt overwrites the confirmation time of a completed submission.
func (s *SQLStore) RecordEnqueuedAt(ctx context.Context, id domain.SubmissionID, at time.Time) error {
	res, err := s.exec(ctx, `
		UPDATE submissions SET confirmed_at = ?
		WHERE id = ? AND status = ?`,
		at.UnixNano(), int64(id), string(domain.SubmissionCompleted),
	)
	if err != nil {
		return fmt.Errorf("record enqueue time of submission %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record enqueue time of submission %d: %w", id, err)
	}
	if n == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

// MarkPlayed moves a completed submission to played.
func (s *SQLStore) MarkPlayed(ctx context.Context, id domain.SubmissionID, at time.Time) error {
	res, err := s.exec(ctx, `
		UPDATE submissions SET status = ?, played_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.SubmissionPlayed), at.UnixNano(), int64(id), string(domain.SubmissionCompleted),
	)
	if err != nil {
		return fmt.Errorf("mark submission %d played: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark submission %d played: %w", id, err)
	}
	if n == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

// ListQueued returns completed, unplayed submissions ordered by confirmation time.
func (s *SQLStore) ListQueued(ctx context.Context) ([]*domain.Submission, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(selectSubmission+`
		WHERE s.status = ?
		ORDER BY s.confirmed_at, s.id`), string(domain.SubmissionCompleted))
	if err != nil {
		return nil, fmt.Errorf("list queued submissions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(0, v.Int64).UTC()
	return &t
}

// Ensure SQLStore implements SubmissionRepository.
var _ domain.SubmissionRepository = (*SQLStore)(nil)
