package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/tephra-map-etl/internal/domain"
	_ "modernc.org/sqlite"
)

// SummaryStore keeps the latest site summary table in a SQLite database.
// It implements pipeline.SummarySink.
type SummaryStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSummaryStore opens (or creates) the database at path and applies the schema.
func NewSummaryStore(path string, logger *slog.Logger) (*SummaryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open summary database: %w", err)
	}
	// Single writer; also keeps ":memory:" databases on one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping summary database: %w", err)
	}

	s := &SummaryStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate summary database: %w", err)
	}
	return s, nil
}

func (s *SummaryStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS site_summaries (
			tephra_name TEXT NOT NULL,
			site        TEXT NOT NULL,
			composition TEXT NOT NULL,
			longitude   REAL NOT NULL,
			latitude    REAL NOT NULL,
			PRIMARY KEY (tephra_name, site, composition)
		);

		CREATE INDEX IF NOT EXISTS idx_site_summaries_composition ON site_summaries(composition);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SummaryStore) Name() string { return "sqlite" }

// WriteSummary replaces the stored table with rows in one transaction.
func (s *SummaryStore) WriteSummary(ctx context.Context, rows []domain.SummaryRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin summary transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM site_summaries`); err != nil {
		return fmt.Errorf("clear site summaries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO site_summaries (tephra_name, site, composition, longitude, latitude)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare site summary insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.TephraName, r.Site, string(r.Composition), r.Longitude, r.Latitude); err != nil {
			return fmt.Errorf("insert site summary %s: %w", r.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit site summaries: %w", err)
	}
	s.logger.Info("stored summary rows", "rows", len(rows))
	return nil
}

// ListSummaries returns stored rows, optionally restricted to one tephra,
// ordered by (tephra, site, composition).
func (s *SummaryStore) ListSummaries(ctx context.Context, tephra string) ([]domain.SummaryRow, error) {
	query := `SELECT tephra_name, site, composition, longitude, latitude FROM site_summaries`
	var args []any
	if tephra != "" {
		query += ` WHERE tephra_name = ?`
		args = append(args, tephra)
	}
	query += ` ORDER BY tephra_name, site, composition`

	rs, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query site summaries: %w", err)
	}
	defer rs.Close()

	var out []domain.SummaryRow
	for rs.Next() {
		var r domain.SummaryRow
		var comp string
		if err := rs.Scan(&r.TephraName, &r.Site, &comp, &r.Longitude, &r.Latitude); err != nil {
			return nil, fmt.Errorf("scan site summary: %w", err)
		}
		r.Composition = domain.Composition(comp)
		out = append(out, r)
	}
	return out, rs.Err()
}

func (s *SummaryStore) Close() error {
	return s.db.Close()
}
