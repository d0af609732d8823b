package config

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFiles(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(path.Join(dir, "public.yaml"), []byte(public), 0o644))
	require.NoError(t, os.WriteFile(path.Join(dir, "private.yaml"), []byte(private), 0o644))
	return dir
}

func TestMustLoad(t *testing.T) {
	dir := writeConfigFiles(t, `
address: ":9090"
threads_per_page: 15
thread_cache_ttl: 60
max_body_length: 5000
author_country: true
log_level: "debug"
log_json: true
`, `
pg:
  host: "localhost"
  port: 5432
  user: "ochan"
  password: "secret"
  dbname: "ochan"
author_id_key: "pepper"
`)

	cfg := MustLoad(dir)

	assert.Equal(t, ":9090", cfg.Public.Address)
	assert.Equal(t, 15, cfg.Public.ThreadsPerPage)
	assert.Equal(t, time.Duration(60), cfg.Public.ThreadCacheTTL)
	assert.Equal(t, 5000, cfg.Public.MaxBodyLength)
	assert.True(t, cfg.Public.AuthorCountry)
	assert.Equal(t, "debug", cfg.Public.LogLevel)
	assert.True(t, cfg.Public.LogJSON)

	assert.Equal(t, "localhost", cfg.Private.Pg.Host)
	assert.Equal(t, 5432, cfg.Private.Pg.Port)
	assert.Equal(t, "pepper", cfg.AuthorIdKey())
}

func TestMustLoadDefaults(t *testing.T) {
	dir := writeConfigFiles(t, "{}", "{}")

	cfg := MustLoad(dir)

	assert.Equal(t, ":8080", cfg.Public.Address)
	assert.Equal(t, 10, cfg.Public.ThreadsPerPage)
	assert.Equal(t, time.Duration(30), cfg.Public.ThreadCacheTTL)
	assert.Equal(t, 20000, cfg.Public.MaxBodyLength)
	assert.Equal(t, "", cfg.AuthorIdKey())
}

func TestMustLoadMissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(t.TempDir()) })
}

func TestMustLoadMalformedYaml(t *testing.T) {
	dir := writeConfigFiles(t, "address: [unclosed", "{}")
	assert.Panics(t, func() { MustLoad(dir) })
}
