package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/firesweep/internal/model"
)

// FileName is the name of the history database inside its directory.
const FileName = "firesweep.db"

// ErrSweepNotFound is returned when no sweep has the requested ID.
var ErrSweepNotFound = errors.New("sweep not found")

// SweepDB provides SQLite-based storage for sweep history.
type SweepDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SweepDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a SweepDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*SweepDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SweepDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *SweepDB) Close() error {
	return sdb.db.Close()
}

// Path returns the database file path.
func (sdb *SweepDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *SweepDB) createTables() error {
	schema := `
	-- One row per sweep
	CREATE TABLE IF NOT EXISTS sweeps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		duration_ns INTEGER NOT NULL,
		burn_pattern TEXT NOT NULL,
		experiment_json TEXT NOT NULL,
		attempted INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sweeps_started ON sweeps(started_at);

	-- Successful curve points, grouped by the curve's position in the sweep
	CREATE TABLE IF NOT EXISTS curve_points (
		sweep_id INTEGER NOT NULL REFERENCES sweeps(id) ON DELETE CASCADE,
		curve_index INTEGER NOT NULL,
		size INTEGER NOT NULL,
		point_index INTEGER NOT NULL,
		density REAL NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (sweep_id, curve_index, point_index)
	);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSweep stores sweep and its curves, sets sweep.ID and returns it.
// Per-sample results are not stored.
func (sdb *SweepDB) SaveSweep(ctx context.Context, sweep *model.Sweep) (id int64, err error) {
	expJSON, err := json.Marshal(sweep.Experiment)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize experiment: %w", err)
	}

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO sweeps (started_at, duration_ns, burn_pattern, experiment_json, attempted, failed, cancelled)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		sweep.StartedAt.UTC().Format(time.RFC3339Nano),
		int64(sweep.Duration),
		sweep.Experiment.BurnPattern().String(),
		string(expJSON),
		sweep.Attempted,
		sweep.Failed,
		sweep.Cancelled,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save sweep: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get sweep id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO curve_points (sweep_id, curve_index, size, point_index, density, value)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare curve insert: %w", err)
	}
	defer stmt.Close()

	for ci, c := range sweep.Curves {
		for pi, p := range c.Points {
			if _, err = stmt.ExecContext(ctx, id, ci, c.Size, pi, p.Density, p.Value); err != nil {
				return 0, fmt.Errorf("failed to save curve point: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sweep: %w", err)
	}

	sweep.ID = id
	return id, nil
}

// GetSweep loads the sweep with the given ID. Results is nil on the
// returned sweep. Returns ErrSweepNotFound if no such sweep exists.
func (sdb *SweepDB) GetSweep(ctx context.Context, id int64) (*model.Sweep, error) {
	var (
		startedAt string
		duration  int64
		expJSON   string
		sweep     = &model.Sweep{ID: id}
	)

	err := sdb.db.QueryRowContext(ctx, `
	SELECT started_at, duration_ns, experiment_json, attempted, failed, cancelled
	FROM sweeps WHERE id = ?
	`, id).Scan(&startedAt, &duration, &expJSON, &sweep.Attempted, &sweep.Failed, &sweep.Cancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrSweepNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sweep: %w", err)
	}

	if err := json.Unmarshal([]byte(expJSON), &sweep.Experiment); err != nil {
		return nil, fmt.Errorf("failed to parse experiment: %w", err)
	}
	sweep.StartedAt = parseTimestamp(startedAt)
	sweep.Duration = time.Duration(duration)

	curves, err := sdb.loadCurves(ctx, id, sweep.Experiment.Sizes())
	if err != nil {
		return nil, err
	}
	sweep.Curves = curves

	return sweep, nil
}

// loadCurves rebuilds one curve per configured size, in order, so that
// curves without any stored point come back empty rather than missing.
func (sdb *SweepDB) loadCurves(ctx context.Context, id int64, sizes []int) ([]model.SizeCurve, error) {
	curves := make([]model.SizeCurve, len(sizes))
	for i, size := range sizes {
		curves[i] = model.SizeCurve{Size: size}
	}

	rows, err := sdb.db.QueryContext(ctx, `
	SELECT curve_index, density, value FROM curve_points
	WHERE sweep_id = ?
	ORDER BY curve_index, point_index
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load curves: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ci int
			p  model.CurvePoint
		)
		if err := rows.Scan(&ci, &p.Density, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan curve point: %w", err)
		}
		if ci < 0 || ci >= len(curves) {
			continue
		}
		curves[ci].Points = append(curves[ci].Points, p)
	}

	return curves, rows.Err()
}

// SweepSummary is one line of sweep history, loaded without the curves.
type SweepSummary struct {
	ID          int64
	StartedAt   time.Time
	Duration    time.Duration
	Experiment  model.ExperimentConfig
	Attempted   int
	Failed      int
	Cancelled   bool
	CurvePoints int
}

// ListSweeps returns the most recent sweeps, newest first.
// A non-positive limit returns every sweep.
func (sdb *SweepDB) ListSweeps(ctx context.Context, limit int) ([]SweepSummary, error) {
	query := `
	SELECT s.id, s.started_at, s.duration_ns, s.experiment_json, s.attempted, s.failed, s.cancelled,
		(SELECT COUNT(*) FROM curve_points p WHERE p.sweep_id = s.id)
	FROM sweeps s
	ORDER BY s.id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweeps: %w", err)
	}
	defer rows.Close()

	var out []SweepSummary
	for rows.Next() {
		var (
			s         SweepSummary
			startedAt string
			duration  int64
			expJSON   string
		)
		if err := rows.Scan(&s.ID, &startedAt, &duration, &expJSON, &s.Attempted, &s.Failed, &s.Cancelled, &s.CurvePoints); err != nil {
			return nil, fmt.Errorf("failed to scan sweep: %w", err)
		}
		if err := json.Unmarshal([]byte(expJSON), &s.Experiment); err != nil {
			continue // Skip malformed rows
		}
		s.StartedAt = parseTimestamp(startedAt)
		s.Duration = time.Duration(duration)
		out = append(out, s)
	}

	return out, rows.Err()
}

// LatestSweeps loads up to n of the most recent sweeps, newest first.
func (sdb *SweepDB) LatestSweeps(ctx context.Context, n int) ([]*model.Sweep, error) {
	if n <= 0 {
		return nil, nil
	}

	summaries, err := sdb.ListSweeps(ctx, n)
	if err != nil {
		return nil, err
	}

	sweeps := make([]*model.Sweep, 0, len(summaries))
	for _, s := range summaries {
		sweep, err := sdb.GetSweep(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		sweeps = append(sweeps, sweep)
	}
	return sweeps, nil
}

// DeleteSweep removes a sweep and its curves.
// Returns ErrSweepNotFound if no such sweep exists.
func (sdb *SweepDB) DeleteSweep(ctx context.Context, id int64) error {
	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM curve_points WHERE sweep_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete curve points: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sweeps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sweep: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrSweepNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Format written by SaveSweep
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
