package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/autoniq-extractor/internal/model"
)

// SQLStore implements the Store interface on SQLite or PostgreSQL.
type SQLStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLStore)(nil)

// driverName maps configuration names to database/sql driver names.
func driverName(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql", "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported store driver %q", driver)
	}
}

// Open connects to the archive database and runs any pending schema
// migrations. driver is "sqlite" (dsn is a file path or ":memory:") or
// "postgres" (dsn is a connection URL).
func Open(driver, dsn string) (*SQLStore, error) {
	name, err := driverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	if name == "sqlite" {
		// A single connection serializes writers and keeps ":memory:"
		// databases from splitting across the pool.
		db.SetMaxOpenConns(1)

		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}

		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}

	s := &SQLStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	return Open("sqlite", dbPath)
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order, each in its own transaction.
func (s *SQLStore) runMigrations() error {
	if _, err := s.db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	currentVersion := 0
	err := s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.db.Beginx()
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", m.version, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("applying migration v%d: %w", m.version, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// CreateRun inserts a run record. If the run has no ID, a new UUID is
// generated. The ID is returned.
func (s *SQLStore) CreateRun(ctx context.Context, run model.Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO runs (
			id, started_at, finished_at, since, watermark,
			found, parsed, rejected, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.StartedAt.UTC(), nullTime(run.FinishedAt),
		run.Since.UTC(), run.Watermark.UTC(),
		run.Found, run.Parsed, run.Rejected, run.Error,
	)
	if err != nil {
		return "", fmt.Errorf("creating run %s: %w", run.ID, err)
	}

	return run.ID, nil
}

// FinishRun records the outcome of a run.
func (s *SQLStore) FinishRun(ctx context.Context, run model.Run) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE runs SET
			finished_at = ?, watermark = ?,
			found = ?, parsed = ?, rejected = ?, error = ?
		WHERE id = ?`),
		nullTime(run.FinishedAt), run.Watermark.UTC(),
		run.Found, run.Parsed, run.Rejected, run.Error,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", run.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing run %s: %w", run.ID, sql.ErrNoRows)
	}

	return nil
}

// GetRuns returns the most recent runs first.
func (s *SQLStore) GetRuns(ctx context.Context, limit int) ([]model.Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var runs []model.Run
	if err := s.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}

	return runs, nil
}

// GetRunByID retrieves a single run.
func (s *SQLStore) GetRunByID(ctx context.Context, id string) (*model.Run, error) {
	var run model.Run
	err := s.db.GetContext(ctx, &run, s.db.Rebind(
		"SELECT "+runColumns+" FROM runs WHERE id = ?",
	), id)
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", id, err)
	}

	return &run, nil
}

// InsertListings stores a batch of listings under runID.
func (s *SQLStore) InsertListings(
	ctx context.Context,
	runID string,
	listings []model.Listing,
) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO listings (
			id, run_id, message_id, uid, received_at,
			vin, mileage, color, year, make, model,
			source_link, lifecycle, created_at
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?, ?
		)`))
	if err != nil {
		return fmt.Errorf("preparing listing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, l := range listings {
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(), runID, l.MessageID, int64(l.UID), l.ReceivedAt.UTC(),
			l.VIN, l.Mileage, l.Color, l.Year, l.Make, l.Model,
			l.SourceLink, string(l.Lifecycle), now,
		)
		if err != nil {
			return fmt.Errorf("inserting listing %s: %w", l.VIN, err)
		}
	}

	return tx.Commit()
}

// GetListings retrieves listings matching the filter, oldest first.
func (s *SQLStore) GetListings(
	ctx context.Context,
	filter ListingFilter,
) ([]model.Listing, error) {
	var conditions []string
	var args []interface{}

	if filter.RunID != nil {
		conditions = append(conditions, "run_id = ?")
		args = append(args, *filter.RunID)
	}
	if filter.VIN != nil {
		conditions = append(conditions, "vin = ?")
		args = append(args, *filter.VIN)
	}
	if filter.Lifecycle != nil {
		conditions = append(conditions, "lifecycle = ?")
		args = append(args, string(*filter.Lifecycle))
	}

	query := "SELECT " + listingColumns + " FROM listings"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, received_at, uid"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var listings []model.Listing
	if err := s.db.SelectContext(ctx, &listings, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}

	return listings, nil
}

// InsertRejections stores the messages of runID that produced no listing.
func (s *SQLStore) InsertRejections(
	ctx context.Context,
	runID string,
	rejections []model.Rejection,
) error {
	if len(rejections) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO rejections (
			id, run_id, message_id, uid, subject, kind, reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	now := time.Now().UTC()
	for _, r := range rejections {
		_, err := tx.ExecContext(ctx, query,
			uuid.New().String(), runID, r.MessageID, int64(r.UID),
			r.Subject, r.Kind, r.Reason, now,
		)
		if err != nil {
			return fmt.Errorf("inserting rejection for %s: %w", r.MessageID, err)
		}
	}

	return tx.Commit()
}

// GetRejections returns the rejections recorded for runID.
func (s *SQLStore) GetRejections(
	ctx context.Context,
	runID string,
) ([]model.Rejection, error) {
	var rejections []model.Rejection
	err := s.db.SelectContext(ctx, &rejections, s.db.Rebind(`
		SELECT message_id, uid, subject, kind, reason
		FROM rejections WHERE run_id = ? ORDER BY uid`), runID)
	if err != nil {
		return nil, fmt.Errorf("querying rejections for run %s: %w", runID, err)
	}

	return rejections, nil
}

const runColumns = `id, started_at, finished_at, since, watermark,
	found, parsed, rejected, error`

const listingColumns = `vin, mileage, color, year, make, model,
	source_link, lifecycle, message_id, uid, received_at`

// nullTime converts an optional time for storage.
func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
