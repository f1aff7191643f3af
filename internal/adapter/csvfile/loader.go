package csvfile

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/tephra-map-etl/internal/domain"
	"github.com/gocarina/gocsv"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// sampleRecord is the raw row layout shared by the geochemistry and
// occurrence-only tables. Columns absent from a file decode as empty strings.
type sampleRecord struct {
	TephraName string `csv:"tephra_name"`
	Site       string `csv:"site"`
	Longitude  string `csv:"longitude"`
	Latitude   string `csv:"latitude"`
	SiO2       string `csv:"SiO2"`
}

// Loader reads tephra sample tables from CSV files.
// It implements pipeline.SampleLoader.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads every path in order and concatenates the rows into one SampleSet.
// Rows without a site get a synthesized identifier. Missing files, malformed
// CSV and unparseable coordinates are errors. Missing SiO2 or tephra_name is
// not; a row with no tephra is kept and simply never lands on a map.
func (l *Loader) Load(ctx context.Context, paths []string) (domain.SampleSet, error) {
	var samples domain.SampleSet
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := readRecords(path)
		if err != nil {
			return nil, err
		}

		for i, rec := range records {
			s, err := parseRecord(rec)
			if err != nil {
				// +2: header line plus one-based numbering.
				return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
			}
			s.Row = len(samples)
			samples = append(samples, s)
		}
		l.logger.Info("loaded sample table", "path", path, "rows", len(records))
	}

	if n := domain.AssignSiteIDs(samples); n > 0 {
		l.logger.Debug("synthesized site identifiers", "count", n)
	}
	return samples, nil
}

func readRecords(path string) ([]*sampleRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sample table: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var records []*sampleRecord
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("parse sample table %s: %w", path, err)
	}
	return records, nil
}

func parseRecord(rec *sampleRecord) (domain.Sample, error) {
	lon, err := parseCoordinate("longitude", rec.Longitude)
	if err != nil {
		return domain.Sample{}, err
	}
	lat, err := parseCoordinate("latitude", rec.Latitude)
	if err != nil {
		return domain.Sample{}, err
	}

	return domain.Sample{
		TephraName: strings.TrimSpace(rec.TephraName),
		Site:       strings.TrimSpace(rec.Site),
		Longitude:  lon,
		Latitude:   lat,
		SiO2:       parseFloatOrNaN(rec.SiO2),
	}, nil
}

func parseCoordinate(field, value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("missing %s", field)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q", field, value)
	}
	return v, nil
}

// parseFloatOrNaN parses an optional numeric field, returning NaN when the
// value is empty or not a number.
func parseFloatOrNaN(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
