package csvfile

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/couchcryptid/tephra-map-etl/internal/domain"
	"github.com/gocarina/gocsv"
)

// summaryRecord is the on-disk layout of the site summary table.
// Coordinates are pre-formatted so the file always carries two decimals.
type summaryRecord struct {
	TephraName  string `csv:"tephra_name"`
	Site        string `csv:"site"`
	Composition string `csv:"composition"`
	Longitude   string `csv:"longitude"`
	Latitude    string `csv:"latitude"`
}

// SummaryWriter writes the site summary table to a CSV file.
// It implements pipeline.SummarySink.
type SummaryWriter struct {
	path   string
	logger *slog.Logger
}

// NewSummaryWriter creates a writer targeting path. The file is truncated on each write.
func NewSummaryWriter(path string, logger *slog.Logger) *SummaryWriter {
	return &SummaryWriter{path: path, logger: logger}
}

func (w *SummaryWriter) Name() string { return "csv" }

// WriteSummary encodes rows with a header line and replaces the target file.
func (w *SummaryWriter) WriteSummary(ctx context.Context, rows []domain.SummaryRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records := make([]*summaryRecord, len(rows))
	for i, r := range rows {
		records[i] = &summaryRecord{
			TephraName:  r.TephraName,
			Site:        r.Site,
			Composition: r.Composition.String(),
			Longitude:   formatCoordinate(r.Longitude),
			Latitude:    formatCoordinate(r.Latitude),
		}
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(records, &buf); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(w.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	w.logger.Info("wrote summary table", "path", w.path, "rows", len(rows))
	return nil
}

// ReadSummary decodes a summary table written by SummaryWriter.
func ReadSummary(path string) ([]domain.SummaryRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var records []*summaryRecord
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("parse summary %s: %w", path, err)
	}

	rows := make([]domain.SummaryRow, 0, len(records))
	for i, rec := range records {
		comp, err := domain.ParseComposition(rec.Composition)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		lon, err := parseCoordinate("longitude", rec.Longitude)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		lat, err := parseCoordinate("latitude", rec.Latitude)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		rows = append(rows, domain.SummaryRow{
			TephraName:  rec.TephraName,
			Site:        rec.Site,
			Composition: comp,
			Longitude:   lon,
			Latitude:    lat,
		})
	}
	return rows, nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
