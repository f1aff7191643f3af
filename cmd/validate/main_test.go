package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/tephra-map-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hekla4 = "Hekla 4 Tephra"
	hekla3 = "Hekla 3 Tephra"
)

func testSamples() domain.SampleSet {
	samples := domain.SampleSet{
		{TephraName: hekla4, Site: "A", Longitude: -7.0, Latitude: 57.0, SiO2: 72.0},
		{TephraName: hekla4, Site: "A", Longitude: -7.1, Latitude: 57.1, SiO2: 73.5},
		{TephraName: hekla4, Site: "Sel", Longitude: 8.5, Latitude: 61.0, SiO2: 55.0},
		{TephraName: hekla3, Site: "B", Longitude: -3.0, Latitude: 58.0, SiO2: math.NaN()},
		{TephraName: "", Site: "C", Longitude: -4.0, Latitude: 59.0, SiO2: math.NaN()},
	}
	domain.ClassifyAll(samples)
	return samples
}

func TestValidateSummaryMeans(t *testing.T) {
	samples := testSamples()
	good, err := domain.Aggregate(samples)
	require.NoError(t, err)
	require.Len(t, good, 4)

	tests := []struct {
		name       string
		rows       func() []domain.SummaryRow
		wantErrors int
	}{
		{
			name:       "matching table",
			rows:       func() []domain.SummaryRow { return good },
			wantErrors: 0,
		},
		{
			name: "wrong longitude",
			rows: func() []domain.SummaryRow {
				rows := append([]domain.SummaryRow(nil), good...)
				rows[0].Longitude += 0.1
				return rows
			},
			wantErrors: 1,
		},
		{
			name: "wrong latitude and longitude",
			rows: func() []domain.SummaryRow {
				rows := append([]domain.SummaryRow(nil), good...)
				rows[1].Longitude = 0
				rows[1].Latitude = 0
				return rows
			},
			wantErrors: 2,
		},
		{
			name: "within rounding",
			rows: func() []domain.SummaryRow {
				rows := append([]domain.SummaryRow(nil), good...)
				rows[2].Latitude += 0.004
				return rows
			},
			wantErrors: 0,
		},
		{
			name: "extra key",
			rows: func() []domain.SummaryRow {
				return append(append([]domain.SummaryRow(nil), good...),
					domain.SummaryRow{TephraName: "Katla 1918", Site: "X", Composition: domain.Basalt})
			},
			wantErrors: 2, // row count and unknown key
		},
		{
			name: "duplicate key",
			rows: func() []domain.SummaryRow {
				return append(append([]domain.SummaryRow(nil), good...), good[0])
			},
			wantErrors: 2, // row count and duplicate
		},
		{
			name:       "missing group",
			rows:       func() []domain.SummaryRow { return good[1:] },
			wantErrors: 1,
		},
		{
			name:       "empty table",
			rows:       func() []domain.SummaryRow { return nil },
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validateSummaryMeans(samples, tt.rows())
			assert.Len(t, p.errors, tt.wantErrors, "%v", p.errors)
			assert.Equal(t, tt.wantErrors == 0, p.passed())
		})
	}
}

func TestValidatePartition(t *testing.T) {
	compositions := []domain.Composition{domain.Rhyolite, domain.Dacite}

	tests := []struct {
		name       string
		samples    func() domain.SampleSet
		tephras    []string
		wantErrors int
	}{
		{
			name:       "classified samples",
			samples:    testSamples,
			tephras:    []string{hekla4, hekla3},
			wantErrors: 0,
		},
		{
			name:       "tephra with no samples",
			samples:    testSamples,
			tephras:    []string{"Katla 1918"},
			wantErrors: 0,
		},
		{
			name: "missing SiO2 labelled as a rock type",
			samples: func() domain.SampleSet {
				samples := testSamples()
				samples[3].Composition = domain.Rhyolite
				return samples
			},
			tephras:    []string{hekla3},
			wantErrors: 2, // no-data count off for each composition
		},
		{
			name: "unclassified samples",
			samples: func() domain.SampleSet {
				samples := testSamples()
				for i := range samples {
					samples[i].Composition = ""
				}
				return samples
			},
			tephras:    []string{hekla4, hekla3},
			wantErrors: 2, // Hekla 3's no-data sample is never bucketed as no-data
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validatePartition(tt.samples(), tt.tephras, compositions)
			assert.Len(t, p.errors, tt.wantErrors, "%v", p.errors)
		})
	}
}

func TestValidateMapFiles(t *testing.T) {
	dir := t.TempDir()
	compositions := []domain.Composition{domain.Rhyolite, domain.Dacite}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Hekla 4 Tephra Rhyolite.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Hekla 4 Tephra Dacite.png"), nil, 0o644))

	p := validateMapFiles(dir, []string{hekla4}, compositions)
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "empty file")

	p = validateMapFiles(dir, []string{hekla3}, compositions)
	assert.Len(t, p.errors, 2)
}
