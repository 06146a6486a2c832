package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/tenderlens/pkg/tenderlens/store"
	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS tenders (
	seq INTEGER PRIMARY KEY,
	tender_id TEXT NOT NULL,
	entity TEXT NOT NULL,
	vendor TEXT NOT NULL,
	raw_entity TEXT,
	raw_vendor TEXT,
	entity_cluster TEXT,
	start_date TEXT,
	close_date TEXT,
	awarded_date TEXT,
	awarded_amount REAL NOT NULL,
	duration_days INTEGER,
	goods INTEGER NOT NULL DEFAULT 0,
	service INTEGER NOT NULL DEFAULT 0,
	construction INTEGER NOT NULL DEFAULT 0,
	raw_description TEXT,
	description TEXT
);

CREATE INDEX IF NOT EXISTS idx_tenders_id ON tenders(tender_id);

CREATE TABLE IF NOT EXISTS snapshot (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	created_at TEXT NOT NULL,
	source TEXT,
	cluster_version INTEGER,
	records INTEGER NOT NULL
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ReplaceTenders deletes the stored table and writes records in one transaction
func (s *sqliteStore) ReplaceTenders(ctx context.Context, records []tender.Record, meta store.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tenders`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO tenders (
	seq, tender_id, entity, vendor, raw_entity, raw_vendor, entity_cluster,
	start_date, close_date, awarded_date, awarded_amount, duration_days,
	goods, service, construction, raw_description, description
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		var duration sql.NullInt64
		if r.Duration != nil {
			duration = sql.NullInt64{Int64: int64(*r.Duration), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			i,
			r.TenderID,
			r.Entity,
			r.Vendor,
			r.RawEntity,
			r.RawVendor,
			nullString(r.EntityCluster),
			formatDate(r.StartDate),
			formatDate(r.CloseDate),
			formatDate(r.AwardedDate),
			r.AwardedAmount,
			duration,
			r.Goods,
			r.Service,
			r.Construction,
			r.RawDescription,
			r.Description,
		)
		if err != nil {
			return err
		}
	}

	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	const upsertMeta = `
INSERT INTO snapshot (id, created_at, source, cluster_version, records)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	created_at=excluded.created_at,
	source=excluded.source,
	cluster_version=excluded.cluster_version,
	records=excluded.records;
`
	if _, err := tx.ExecContext(ctx, upsertMeta,
		createdAt.UTC().Format(time.RFC3339), meta.Source, meta.ClusterVersion, len(records)); err != nil {
		return err
	}

	return tx.Commit()
}

const selectColumns = `
SELECT tender_id, entity, vendor, raw_entity, raw_vendor, entity_cluster,
	start_date, close_date, awarded_date, awarded_amount, duration_days,
	goods, service, construction, raw_description, description
FROM tenders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (tender.Record, error) {
	var (
		r                      tender.Record
		rawEntity, rawVendor   sql.NullString
		cluster                sql.NullString
		start, closeD, awarded sql.NullString
		duration               sql.NullInt64
		rawDescription, descr  sql.NullString
	)
	err := row.Scan(
		&r.TenderID, &r.Entity, &r.Vendor, &rawEntity, &rawVendor, &cluster,
		&start, &closeD, &awarded, &r.AwardedAmount, &duration,
		&r.Goods, &r.Service, &r.Construction, &rawDescription, &descr,
	)
	if err != nil {
		return tender.Record{}, err
	}
	r.RawEntity = rawEntity.String
	r.RawVendor = rawVendor.String
	r.EntityCluster = cluster.String
	r.StartDate = parseDate(start)
	r.CloseDate = parseDate(closeD)
	r.AwardedDate = parseDate(awarded)
	if duration.Valid {
		d := int(duration.Int64)
		r.Duration = &d
	}
	r.RawDescription = rawDescription.String
	r.Description = descr.String
	return r, nil
}

// ListTenders returns all stored tenders in insertion order
func (s *sqliteStore) ListTenders(ctx context.Context) ([]tender.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tender.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTender retrieves a tender by id
func (s *sqliteStore) GetTender(ctx context.Context, id string) (tender.Record, bool, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE tender_id = ? ORDER BY seq LIMIT 1`, id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return tender.Record{}, false, nil
	}
	if err != nil {
		return tender.Record{}, false, err
	}
	return r, true, nil
}

// Snapshot returns the stored snapshot metadata
func (s *sqliteStore) Snapshot(ctx context.Context) (store.Snapshot, bool, error) {
	var (
		meta      store.Snapshot
		createdAt string
		source    sql.NullString
		version   sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, source, cluster_version, records FROM snapshot WHERE id = 1`,
	).Scan(&createdAt, &source, &version, &meta.Records)
	if err == sql.ErrNoRows {
		return store.Snapshot{}, false, nil
	}
	if err != nil {
		return store.Snapshot{}, false, err
	}
	meta.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	meta.Source = source.String
	meta.ClusterVersion = int(version.Int64)
	return meta, true, nil
}

func formatDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseDate(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
