package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "http://localhost:11434/v1", cfg.GeneratorHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.NotEmpty(t, cfg.GeneratorModel)
	assert.NotEmpty(t, cfg.EmbeddingModel)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://example.com"),
		WithGeneratorModel("gpt-4o-mini"),
		WithEmbeddingModel("text-embedding-3-small"),
	)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://example.com/v1", cfg.GeneratorHost)
	assert.Equal(t, "http://example.com/v1", cfg.EmbeddingHost)
	assert.Equal(t, "gpt-4o-mini", cfg.GeneratorModel)
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "adds v1 suffix", host: "http://localhost:11434", want: "http://localhost:11434/v1"},
		{name: "strips trailing slash", host: "http://localhost:11434/", want: "http://localhost:11434/v1"},
		{name: "keeps existing v1", host: "http://localhost:11434/v1", want: "http://localhost:11434/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.GeneratorHost)
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
		})
	}
}

func TestConfig_Validate_Missing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing generator host", mutate: func(c *Config) { c.GeneratorHost = "" }},
		{name: "missing embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }},
		{name: "missing generator model", mutate: func(c *Config) { c.GeneratorModel = "" }},
		{name: "missing embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
