package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/tephra-map-etl/internal/domain"
)

const (
	defaultInputFiles   = "hekla3and4_distal_geochemistry.csv,hekla3and4_without_geochemistry.csv"
	defaultTephras      = "Hekla 4 Tephra,Hekla 3 Tephra"
	defaultCompositions = "Rhyolite,Dacite,Andesite,Basaltic andesite"

	maxMapDPI = 600
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	InputFiles        []string
	SummaryPath       string
	OutputDir         string
	Tephras           []string
	Compositions      []domain.Composition
	MapDPI            int
	CompositionCharts bool

	LogLevel        string
	LogFormat       string
	MetricsTextfile string
	ShutdownTimeout time.Duration

	// Optional summary sinks; empty disables them.
	SummaryDBPath     string
	KafkaBrokers      []string
	KafkaSummaryTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	compositions, err := parseCompositions(sharedcfg.EnvOrDefault("COMPOSITIONS", defaultCompositions))
	if err != nil {
		return nil, err
	}

	dpi, err := parseMapDPI()
	if err != nil {
		return nil, err
	}

	charts := false
	if v := os.Getenv("COMPOSITION_CHARTS"); v != "" {
		charts, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid COMPOSITION_CHARTS: must be a boolean")
		}
	}

	cfg := &Config{
		InputFiles:        SplitList(sharedcfg.EnvOrDefault("INPUT_FILES", defaultInputFiles)),
		SummaryPath:       sharedcfg.EnvOrDefault("SUMMARY_PATH", "summary_sites_and_compositions.csv"),
		OutputDir:         sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),
		Tephras:           SplitList(sharedcfg.EnvOrDefault("TEPHRAS", defaultTephras)),
		Compositions:      compositions,
		MapDPI:            dpi,
		CompositionCharts: charts,
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		MetricsTextfile:   os.Getenv("METRICS_TEXTFILE"),
		ShutdownTimeout:   shutdownTimeout,
		SummaryDBPath:     os.Getenv("SUMMARY_DB_PATH"),
		KafkaBrokers:      sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "tephra-site-summaries"),
	}

	if len(cfg.InputFiles) == 0 {
		return nil, errors.New("INPUT_FILES is required")
	}
	if len(cfg.Tephras) == 0 {
		return nil, errors.New("TEPHRAS is required")
	}
	if strings.TrimSpace(cfg.SummaryPath) == "" {
		return nil, errors.New("SUMMARY_PATH is required")
	}

	return cfg, nil
}

// KafkaEnabled reports whether summary rows should also be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// SplitList splits a comma-separated list, trimming whitespace and dropping empty entries.
func SplitList(value string) []string {
	return sharedcfg.ParseBrokers(value)
}

func parseCompositions(value string) ([]domain.Composition, error) {
	labels := SplitList(value)
	if len(labels) == 0 {
		return nil, errors.New("COMPOSITIONS is required")
	}
	out := make([]domain.Composition, 0, len(labels))
	for _, label := range labels {
		c, err := domain.ParseComposition(label)
		if err != nil {
			return nil, fmt.Errorf("invalid COMPOSITIONS: %w", err)
		}
		if !c.IsKnown() {
			return nil, fmt.Errorf("invalid COMPOSITIONS: %q is not a rock composition", label)
		}
		out = append(out, c)
	}
	return out, nil
}

// parseMapDPI reads MAP_DPI. Default: 100. Range: 1-600.
func parseMapDPI() (int, error) {
	s := os.Getenv("MAP_DPI")
	if s == "" {
		return 100, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxMapDPI {
		return 0, fmt.Errorf("invalid MAP_DPI: must be 1-%d", maxMapDPI)
	}
	return n, nil
}
