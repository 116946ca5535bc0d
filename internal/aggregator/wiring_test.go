package aggregator

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-aggregator/internal/config"
	"github.com/helixir/paper-aggregator/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		PaperSources: config.PaperSourcesConfig{
			ScholarGraph:     config.PaperSourceConfig{Enabled: true, TrustWeight: 1.0},
			WorkIndex:        config.PaperSourceConfig{Enabled: true, TrustWeight: 0.9, Mailto: "ops@example.org"},
			CitationRegistry: config.PaperSourceConfig{Enabled: false, TrustWeight: 0.75},
			PreprintArchive:  config.PaperSourceConfig{Enabled: true, TrustWeight: 0.6},
		},
		Aggregator: config.AggregatorConfig{DefaultLimit: 10, MaxLimit: 25, MinQueryLength: 3},
		Graph:      config.GraphConfig{EdgeThreshold: 0.6, VectorDimensions: 64},
	}
}

func TestNewRegistryFromConfig(t *testing.T) {
	registry := NewRegistryFromConfig(testConfig(), zerolog.Nop())

	sources := registry.AllSources()
	require.Len(t, sources, 3)
	assert.Equal(t, domain.SourceTypeScholarGraph, sources[0].SourceType())
	assert.Equal(t, domain.SourceTypeWorkIndex, sources[1].SourceType())
	assert.Equal(t, domain.SourceTypePreprintArchive, sources[2].SourceType())
	assert.Nil(t, registry.Get(domain.SourceTypeCitationRegistry))

	trust := registry.TrustTable()
	assert.Equal(t, 1.0, trust[domain.SourceTypeScholarGraph])
	assert.Equal(t, 0.6, trust[domain.SourceTypePreprintArchive])
}

func TestNewServiceFromConfig(t *testing.T) {
	cfg := testConfig()
	svc := NewServiceFromConfig(cfg, NewRegistryFromConfig(cfg, zerolog.Nop()), zerolog.Nop())

	assert.Equal(t, 10, svc.ClampLimit(0))
	assert.Equal(t, 25, svc.ClampLimit(100))
	assert.Equal(t, 0.6, svc.scorer.Threshold())
}
