// Command validate checks the outputs of a finished etl run against its inputs:
// the summary table's group means, the three-way map partition of every
// configured tephra and composition, and the presence of every map image.
//
// Defaults come from the same environment as cmd/etl; flags override them.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -inputs hekla3and4_distal_geochemistry.csv,hekla3and4_without_geochemistry.csv \
//	  -summary summary_sites_and_compositions.csv \
//	  -output-dir maps
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/tephra-map-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/tephra-map-etl/internal/config"
	"github.com/couchcryptid/tephra-map-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	inputs := flag.String("inputs", strings.Join(cfg.InputFiles, ","), "comma-separated input sample tables")
	summary := flag.String("summary", cfg.SummaryPath, "summary CSV written by the etl run")
	outputDir := flag.String("output-dir", cfg.OutputDir, "directory holding the rendered maps")
	flag.Parse()

	if code := run(config.SplitList(*inputs), *summary, *outputDir, cfg.Tephras, cfg.Compositions); code != 0 {
		os.Exit(code)
	}
}

func run(inputs []string, summaryPath, outputDir string, tephras []string, compositions []domain.Composition) int {
	fmt.Println("=== Tephra Map Output Validation ===")
	fmt.Println()

	loader := csvfile.NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
	samples, err := loader.Load(context.Background(), inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load samples: %v\n", err)
		return 1
	}
	domain.ClassifyAll(samples)

	rows, err := csvfile.ReadSummary(summaryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load summary: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSummaryMeans(samples, rows),
		validatePartition(samples, tephras, compositions),
		validateMapFiles(outputDir, tephras, compositions),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d samples, %d summary rows, %d expected maps\n",
		len(samples), len(rows), len(tephras)*len(compositions))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: summary means ──

type coords struct {
	lons []float64
	lats []float64
}

// validateSummaryMeans recomputes every group mean with gonum and compares it
// to the summary table at the table's two-decimal precision.
func validateSummaryMeans(samples domain.SampleSet, rows []domain.SummaryRow) *phase {
	p := &phase{name: "Summary means (gonum recomputation)"}

	groups := make(map[string]*coords)
	for _, s := range samples {
		key := domain.SummaryRow{TephraName: s.TephraName, Site: s.Site, Composition: s.Composition}.Key()
		g, ok := groups[key]
		if !ok {
			g = &coords{}
			groups[key] = g
		}
		g.lons = append(g.lons, s.Longitude)
		g.lats = append(g.lats, s.Latitude)
	}

	if len(rows) != len(groups) {
		p.errorf("summary has %d rows, inputs have %d (tephra, site, composition) groups", len(rows), len(groups))
	}

	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		key := r.Key()
		if seen[key] {
			p.errorf("duplicate summary key %q", key)
			continue
		}
		seen[key] = true

		g, ok := groups[key]
		if !ok {
			p.errorf("summary key %q has no input samples", key)
			continue
		}
		if want := round2(stat.Mean(g.lons, nil)); !floatEq(want, r.Longitude) {
			p.errorf("%s: longitude %.2f, recomputed %.2f", key, r.Longitude, want)
		}
		if want := round2(stat.Mean(g.lats, nil)); !floatEq(want, r.Latitude) {
			p.errorf("%s: latitude %.2f, recomputed %.2f", key, r.Latitude, want)
		}
	}
	return p
}

// ── Phase 2: partition law ──

func validatePartition(samples domain.SampleSet, tephras []string, compositions []domain.Composition) *phase {
	p := &phase{name: "Map layers partition each tephra"}

	for _, tephra := range tephras {
		total, noData := 0, 0
		byComp := make(map[domain.Composition]int)
		for _, s := range samples {
			if s.TephraName != tephra {
				continue
			}
			total++
			byComp[s.Composition]++
			if !s.HasGeochemistry() {
				noData++
			}
		}

		for _, c := range compositions {
			b := domain.Partition(samples, tephra, c)
			label := tephra + " / " + c.String()
			if b.Len() != total {
				p.errorf("%s: layers hold %d points, tephra has %d samples", label, b.Len(), total)
			}
			if len(b.Matched) != byComp[c] {
				p.errorf("%s: %d matched points, %d samples classified %s", label, len(b.Matched), byComp[c], c)
			}
			if len(b.NoData) != noData {
				p.errorf("%s: %d no-data points, %d samples without SiO2", label, len(b.NoData), noData)
			}
		}
	}
	return p
}

// ── Phase 3: map files ──

func validateMapFiles(outputDir string, tephras []string, compositions []domain.Composition) *phase {
	p := &phase{name: "Map images present"}

	for _, tephra := range tephras {
		for _, c := range compositions {
			name := domain.MapRequest{Tephra: tephra, Composition: c}.FileName()
			info, err := os.Stat(filepath.Join(outputDir, name))
			switch {
			case err != nil:
				p.errorf("%s: %v", name, err)
			case info.Size() == 0:
				p.errorf("%s: empty file", name)
			}
		}
	}
	return p
}

// ── Helpers ──

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 0.005+1e-9
}
