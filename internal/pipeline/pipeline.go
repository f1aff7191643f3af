package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/tephra-map-etl/internal/domain"
	"github.com/couchcryptid/tephra-map-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// SampleLoader reads and concatenates the input sample tables.
type SampleLoader interface {
	Load(ctx context.Context, paths []string) (domain.SampleSet, error)
}

// MapRenderer draws one (tephra, composition) map and returns the written path.
type MapRenderer interface {
	Render(ctx context.Context, req domain.MapRequest) (string, error)
}

// TallyRenderer draws the per-composition sample counts of one tephra.
type TallyRenderer interface {
	RenderTally(ctx context.Context, tephra string, counts map[domain.Composition]int) (string, error)
}

// SummarySink receives the site summary table once per run.
type SummarySink interface {
	Name() string
	WriteSummary(ctx context.Context, rows []domain.SummaryRow) error
}

// RunSpec selects the inputs and the maps of one run.
type RunSpec struct {
	Paths        []string
	Tephras      []string // empty means every tephra present in the samples, first-seen order
	Compositions []domain.Composition
}

// Report describes a finished run.
type Report struct {
	Samples     int
	SummaryRows int
	Maps        []string
	Charts      []string
	Duration    time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the time source used for run timing.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithTallyRenderer enables the per-tephra composition bar charts.
func WithTallyRenderer(t TallyRenderer) Option {
	return func(p *Pipeline) { p.tally = t }
}

// Pipeline orchestrates load, classify, aggregate, summary output and map rendering.
type Pipeline struct {
	loader   SampleLoader
	renderer MapRenderer
	tally    TallyRenderer
	sinks    []SummarySink
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
}

// New creates a Pipeline with the given stages and observability.
func New(l SampleLoader, r MapRenderer, sinks []SummarySink, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader:   l,
		renderer: r,
		sinks:    sinks,
		logger:   logger,
		metrics:  metrics,
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one full pass. The first error aborts the run; outputs already
// written stay on disk.
func (p *Pipeline) Run(ctx context.Context, spec RunSpec) (Report, error) {
	start := p.clock.Now()
	var report Report

	samples, err := p.loader.Load(ctx, spec.Paths)
	if err != nil {
		return report, fmt.Errorf("load samples: %w", err)
	}
	report.Samples = len(samples)
	p.metrics.SamplesLoaded.Add(float64(len(samples)))
	p.logger.Info("samples loaded", "samples", len(samples), "files", len(spec.Paths))

	domain.ClassifyAll(samples)
	for _, s := range samples {
		p.metrics.SamplesClassified.WithLabelValues(s.TephraName, s.Composition.String()).Inc()
	}

	rows, err := domain.Aggregate(samples)
	if err != nil {
		return report, fmt.Errorf("aggregate samples: %w", err)
	}
	report.SummaryRows = len(rows)
	p.metrics.SummaryRows.Set(float64(len(rows)))

	if err := p.writeSummary(ctx, rows); err != nil {
		return report, err
	}

	tephras := spec.Tephras
	if len(tephras) == 0 {
		tephras = samples.Tephras()
	}

	for _, tephra := range tephras {
		for _, comp := range spec.Compositions {
			path, err := p.renderMap(ctx, samples, tephra, comp)
			if err != nil {
				return report, err
			}
			report.Maps = append(report.Maps, path)
		}
	}

	if p.tally != nil {
		for _, tephra := range tephras {
			path, err := p.tally.RenderTally(ctx, tephra, samples.CountByComposition(tephra))
			if err != nil {
				return report, fmt.Errorf("render tally %q: %w", tephra, err)
			}
			report.Charts = append(report.Charts, path)
		}
	}

	report.Duration = p.clock.Since(start)
	p.metrics.RunDuration.Observe(report.Duration.Seconds())
	p.metrics.LastSuccessTimestamp.Set(float64(p.clock.Now().Unix()))
	p.logger.Info("run complete",
		"samples", report.Samples,
		"summary_rows", report.SummaryRows,
		"maps", len(report.Maps),
		"charts", len(report.Charts),
		"duration", report.Duration,
	)
	return report, nil
}

func (p *Pipeline) writeSummary(ctx context.Context, rows []domain.SummaryRow) error {
	for _, sink := range p.sinks {
		if err := sink.WriteSummary(ctx, rows); err != nil {
			p.metrics.SinkWrites.WithLabelValues(sink.Name(), "error").Inc()
			return fmt.Errorf("write summary to %s: %w", sink.Name(), err)
		}
		p.metrics.SinkWrites.WithLabelValues(sink.Name(), "success").Inc()
	}
	return nil
}

func (p *Pipeline) renderMap(ctx context.Context, samples domain.SampleSet, tephra string, comp domain.Composition) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	bucket := domain.Partition(samples, tephra, comp)
	p.logger.Info("plotting",
		"tephra", tephra,
		"composition", comp.String(),
		"matched", len(bucket.Matched),
		"other_known", len(bucket.OtherKnown),
		"no_data", len(bucket.NoData),
	)

	path, err := p.renderer.Render(ctx, domain.MapRequest{Tephra: tephra, Composition: comp, Bucket: bucket})
	if err != nil {
		return "", fmt.Errorf("render map %q %q: %w", tephra, comp, err)
	}
	p.metrics.MapsRendered.Inc()
	return path, nil
}
