package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/tephra-map-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"hekla3and4_distal_geochemistry.csv", "hekla3and4_without_geochemistry.csv"}, cfg.InputFiles)
	assert.Equal(t, "summary_sites_and_compositions.csv", cfg.SummaryPath)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, []string{"Hekla 4 Tephra", "Hekla 3 Tephra"}, cfg.Tephras)
	assert.Equal(t, []domain.Composition{domain.Rhyolite, domain.Dacite, domain.Andesite, domain.BasalticAndesite}, cfg.Compositions)
	assert.Equal(t, 100, cfg.MapDPI)
	assert.False(t, cfg.CompositionCharts)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.SummaryDBPath)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "tephra-site-summaries", cfg.KafkaSummaryTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("INPUT_FILES", " a.csv , b.csv ,")
	t.Setenv("SUMMARY_PATH", "out/summary.csv")
	t.Setenv("OUTPUT_DIR", "maps")
	t.Setenv("TEPHRAS", "Hekla 1104")
	t.Setenv("COMPOSITIONS", "Basalt,Rhyolite")
	t.Setenv("MAP_DPI", "300")
	t.Setenv("COMPOSITION_CHARTS", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METRICS_TEXTFILE", "/var/lib/node_exporter/tephra.prom")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SUMMARY_DB_PATH", "summaries.db")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SUMMARY_TOPIC", "custom-summaries")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"a.csv", "b.csv"}, cfg.InputFiles)
	assert.Equal(t, "out/summary.csv", cfg.SummaryPath)
	assert.Equal(t, "maps", cfg.OutputDir)
	assert.Equal(t, []string{"Hekla 1104"}, cfg.Tephras)
	assert.Equal(t, []domain.Composition{domain.Basalt, domain.Rhyolite}, cfg.Compositions)
	assert.Equal(t, 300, cfg.MapDPI)
	assert.True(t, cfg.CompositionCharts)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "/var/lib/node_exporter/tephra.prom", cfg.MetricsTextfile)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "summaries.db", cfg.SummaryDBPath)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-summaries", cfg.KafkaSummaryTopic)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"shutdown timeout not a duration", "SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"unknown composition", "COMPOSITIONS", "Rhyolite,Granite", "COMPOSITIONS"},
		{"composition wrong case", "COMPOSITIONS", "rhyolite", "COMPOSITIONS"},
		{"sentinel composition", "COMPOSITIONS", "No geochemistry data", "COMPOSITIONS"},
		{"only separators in compositions", "COMPOSITIONS", " , ", "COMPOSITIONS"},
		{"dpi not a number", "MAP_DPI", "high", "MAP_DPI"},
		{"dpi zero", "MAP_DPI", "0", "MAP_DPI"},
		{"dpi too large", "MAP_DPI", "601", "MAP_DPI"},
		{"charts not a bool", "COMPOSITION_CHARTS", "sometimes", "COMPOSITION_CHARTS"},
		{"only separators in input files", "INPUT_FILES", ",,", "INPUT_FILES"},
		{"only separators in tephras", "TEPHRAS", " ,", "TEPHRAS"},
		{"blank summary path", "SUMMARY_PATH", "   ", "SUMMARY_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DPIBounds(t *testing.T) {
	for _, v := range []string{"1", "600"} {
		t.Setenv("MAP_DPI", v)
		_, err := Load()
		require.NoError(t, err, "MAP_DPI=%s", v)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a.csv,b.csv", []string{"a.csv", "b.csv"}},
		{" Hekla 4 Tephra , Hekla 3 Tephra ,", []string{"Hekla 4 Tephra", "Hekla 3 Tephra"}},
		{"", nil},
		{" , ,", nil},
	}
	for _, tt := range tests {
		got := SplitList(tt.in)
		if len(tt.want) == 0 {
			assert.Empty(t, got, "input %q", tt.in)
			continue
		}
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
