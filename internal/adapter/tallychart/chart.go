package tallychart

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/tephra-map-etl/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
)

// Renderer draws one bar chart per tephra with the number of samples in each composition.
// It implements pipeline.TallyRenderer.
type Renderer struct {
	outDir string
	logger *slog.Logger
}

// NewRenderer creates a Renderer writing into outDir.
func NewRenderer(outDir string, logger *slog.Logger) *Renderer {
	return &Renderer{outDir: outDir, logger: logger}
}

// RenderTally writes "<tephra> compositions.png" and returns its path.
func (r *Renderer) RenderTally(ctx context.Context, tephra string, counts map[domain.Composition]int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	bars := make([]chart.Value, 0, len(domain.Compositions()))
	maxCount := 0
	for _, c := range domain.Compositions() {
		n := counts[c]
		if n > maxCount {
			maxCount = n
		}
		bars = append(bars, chart.Value{Value: float64(n), Label: shortLabel(c)})
	}

	graph := chart.BarChart{
		Title:      tephra + " compositions",
		Width:      700,
		Height:     400,
		BarWidth:   60,
		BarSpacing: 40,
		XAxis:      chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			// An explicit range keeps all-zero and single-value tallies renderable.
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount + 1)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return "", fmt.Errorf("render tally for %q: %w", tephra, err)
	}

	name := strings.NewReplacer("/", "-", `\`, "-").Replace(tephra) + " compositions.png"
	path := filepath.Join(r.outDir, name)
	if err := os.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write tally for %q: %w", tephra, err)
	}

	r.logger.Debug("wrote composition tally", "tephra", tephra, "path", path)
	return path, nil
}

func shortLabel(c domain.Composition) string {
	if c == domain.NoGeochemistryData {
		return "No data"
	}
	return c.String()
}
