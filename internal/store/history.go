// Package store records scan history in SQLite by default, or in Postgres
// when a DSN is configured.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	_ "modernc.org/sqlite"             // register sqlite driver

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
)

// Dialects.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Record is one recorded scan.
type Record struct {
	ID           string    `json:"id"`
	Root         string    `json:"root"`
	CreatedAt    time.Time `json:"createdAt"`
	Passed       bool      `json:"passed"`
	Strict       bool      `json:"strict"`
	Carbon       float64   `json:"carbon"`
	Cost         float64   `json:"cost"`
	FilesScanned int       `json:"filesScanned"`
	APICalls     int       `json:"apiCalls"`
	Errors       int       `json:"errors"`
	Warnings     int       `json:"warnings"`
	Intensity    float64   `json:"intensity"`
	Hash         string    `json:"hash"`
	Score        int       `json:"score"`
	Points       int       `json:"points"`
	Badges       []string  `json:"badges,omitempty"`
	UnderBudget  bool      `json:"underBudget"`
}

// NewRecord builds a record for r with a fresh ID.
func NewRecord(r *model.ScanResult, hash string, s model.Sustainability, now time.Time) Record {
	errs, warns, _ := r.Counts()
	return Record{
		ID:           uuid.NewString(),
		Root:         r.Root,
		CreatedAt:    now.UTC(),
		Passed:       r.Passed,
		Strict:       r.Strict,
		Carbon:       r.TotalCarbon,
		Cost:         r.TotalCost,
		FilesScanned: r.FilesScanned,
		APICalls:     r.APICalls,
		Errors:       errs,
		Warnings:     warns,
		Intensity:    s.Intensity,
		Hash:         hash,
		Score:        s.Score,
		Points:       s.Points,
		Badges:       s.Badges,
		UnderBudget:  r.Budget.UnderCarbonBudget(),
	}
}

// History provides scan recording and lookup.
type History struct {
	db      *sql.DB
	dialect string
}

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "greenlint")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "greenlint")
}

// DefaultPath returns the full path to the local history database.
func DefaultPath() string {
	return filepath.Join(DataDir(), "history.db")
}

// Open opens or creates the SQLite history database at the given path.
func Open(dbPath string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	return initDB(db, SQLite)
}

// OpenPostgres connects to a Postgres history database.
func OpenPostgres(dsn string) (*History, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return initDB(db, Postgres)
}

// OpenDSN opens Postgres when dsn is set, else the local SQLite file.
func OpenDSN(dsn string) (*History, error) {
	if strings.TrimSpace(dsn) != "" {
		return OpenPostgres(dsn)
	}
	return Open(DefaultPath())
}

func initDB(db *sql.DB, dialect string) (*History, error) {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil && !columnExists(err) {
			_ = db.Close()
			return nil, fmt.Errorf("migrating schema: %w", err)
		}
	}
	return &History{db: db, dialect: dialect}, nil
}

func columnExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}

// Close closes the history database.
func (h *History) Close() error {
	return h.db.Close()
}

// Dialect reports which backend is in use.
func (h *History) Dialect() string { return h.dialect }

// rebind rewrites ? placeholders to $n for Postgres.
func (h *History) rebind(q string) string {
	if h.dialect != Postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
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

// Save stores one scan record.
func (h *History) Save(ctx context.Context, rec Record) error {
	q := h.rebind(`INSERT INTO scans (` + scanColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := h.db.ExecContext(ctx, q,
		rec.ID, rec.Root, rec.CreatedAt.UTC().Format(timeLayout),
		boolInt(rec.Passed), boolInt(rec.Strict),
		rec.Carbon, rec.Cost, rec.FilesScanned, rec.APICalls,
		rec.Errors, rec.Warnings, rec.Intensity, rec.Hash,
		rec.Score, rec.Points, strings.Join(rec.Badges, ","), boolInt(rec.UnderBudget),
	)
	if err != nil {
		return fmt.Errorf("saving scan: %w", err)
	}
	return nil
}

// Recent returns up to limit records for root, newest first. An empty root
// matches every root.
func (h *History) Recent(ctx context.Context, root string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + scanColumns + ` FROM scans`
	var args []any
	if root != "" {
		q += ` WHERE root = ?`
		args = append(args, root)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := h.db.QueryContext(ctx, h.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var (
			rec            Record
			created, badge string
			passed, strict int
			under          int
		)
		if err := rows.Scan(&rec.ID, &rec.Root, &created, &passed, &strict,
			&rec.Carbon, &rec.Cost, &rec.FilesScanned, &rec.APICalls,
			&rec.Errors, &rec.Warnings, &rec.Intensity, &rec.Hash,
			&rec.Score, &rec.Points, &badge, &under); err != nil {
			return nil, err
		}
		rec.CreatedAt = parseTime(created)
		rec.UnderBudget = under != 0
		rec.Passed = passed != 0
		rec.Strict = strict != 0
		if badge != "" {
			rec.Badges = strings.Split(badge, ",")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Baseline summarizes every earlier scan of root for scoring.
func (h *History) Baseline(ctx context.Context, root string) (model.Baseline, error) {
	var b model.Baseline
	q := h.rebind(`SELECT COUNT(*),
        COALESCE(SUM(passed), 0),
        COALESCE(SUM(under_budget), 0),
        COALESCE(SUM(CASE WHEN intensity > 0 AND intensity < ? THEN 1 ELSE 0 END), 0),
        COALESCE(SUM(points), 0)
        FROM scans WHERE root = ?`)
	row := h.db.QueryRowContext(ctx, q, config.GreenBelow, root)
	if err := row.Scan(&b.Scans, &b.PassingScans, &b.UnderBudget, &b.GreenRegion, &b.TotalPoints); err != nil {
		return b, fmt.Errorf("summarizing scans: %w", err)
	}
	if b.Scans == 0 {
		return b, nil
	}
	last, err := h.Recent(ctx, root, 1)
	if err != nil {
		return b, err
	}
	if len(last) > 0 {
		b.LastCarbon = last[0].Carbon
		b.LastIntensity = last[0].Intensity
	}
	return b, nil
}

// Count returns the number of recorded scans.
func (h *History) Count(ctx context.Context) (int, error) {
	var n int
	err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scans").Scan(&n)
	return n, err
}

// parseTime reads created_at, including rows written with RFC 3339 before
// the fixed-width layout.
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
