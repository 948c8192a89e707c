package nvd

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteRepository implements ports.CVERepository using SQLite. The
// raw NVD payload is stored verbatim as JSON text so snapshot shape
// drift never breaks the write path; parsing happens on read.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-based CVE record repository.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// GetByID retrieves a raw record by its CVE id. Returns (nil, nil)
// when no record exists.
func (r *SQLiteRepository) GetByID(ctx context.Context, cveID string) (*domain.RawRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT cve_id, full_json, created_at FROM cve_records WHERE cve_id = ?", cveID)

	var record domain.RawRecord
	var payload, createdAt string

	err := row.Scan(&record.CVEID, &payload, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	var envelope domain.RecordEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse stored payload for %s: %w", cveID, err)
	}
	record.Data = &envelope
	record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &record, nil
}

// Upsert inserts or replaces a raw record.
func (r *SQLiteRepository) Upsert(ctx context.Context, record domain.RawRecord) error {
	payload, err := json.Marshal(record.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal record payload: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cve_records (cve_id, full_json, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cve_id) DO UPDATE SET
			full_json = excluded.full_json,
			created_at = excluded.created_at
	`, record.CVEID, string(payload), createdAt.UTC().Format(time.RFC3339))

	return err
}

// Count returns the total number of stored records.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cve_records").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
