package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "CATALOGUE_SOURCE", "PAGE_TOKEN_TTL", "CORS_ORIGINS", "UNPARSED_POLICY"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, ModeOffline, c.Mode)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "fs", c.CatalogueSource)
	assert.Equal(t, 8*time.Hour, c.PageTokenTTL)
	assert.Equal(t, "well_formed", c.UnparsedPolicy)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:4000"}, c.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("PAGE_TOKEN_TTL", "30m")
	t.Setenv("PAGE_IDLE_TTL", "bogus")
	t.Setenv("UNPARSED_POLICY", "always")

	c := FromEnv()
	assert.Equal(t, ModeOnline, c.Mode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.Equal(t, 30*time.Minute, c.PageTokenTTL)
	assert.Equal(t, 2*time.Hour, c.PageIdleTTL)
	assert.Equal(t, "always", c.UnparsedPolicy)
}

func TestLoadDotenvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(f, []byte("HTTP_ADDR=:9999\nLOG_LEVEL=debug\n"), 0o644))
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	c := Load(f)
	assert.Equal(t, ":7000", c.HTTPAddr)
	assert.Equal(t, "debug", c.LogLevel)
}
