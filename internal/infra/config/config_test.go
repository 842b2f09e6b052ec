package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromFileWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
faq:
  primaryLanguage: en
  languages: [en, fr, de]
  listActiveOnly: true
cache:
  backend: valkey
  addr: localhost:6379
  ttl: 30m
auth:
  secret: file-secret
  editors:
    - username: alice
      passwordHash: "$2a$10$abcdefghijklmnopqrstuv"
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("FAQ_CACHE_TIMEOUT", "100ms")
	t.Setenv("TRANSLATION_API_KEY", "sk-test")
	t.Setenv("FAQ_LANGUAGES", "en, fr ,es")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.True(t, cfg.FAQ.ListActiveOnly)
	require.Equal(t, []string{"en", "fr", "es"}, cfg.FAQ.Languages)
	require.Equal(t, CacheBackendValkey, cfg.Cache.Backend)
	require.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	require.Equal(t, 100*time.Millisecond, cfg.Cache.Timeout)
	require.Equal(t, "faq", cfg.Cache.Prefix)
	require.Equal(t, "sk-test", cfg.Translation.APIKey)
	require.Len(t, cfg.Auth.Editors, 1)
	require.Equal(t, "alice", cfg.Auth.Editors[0].Username)
}

func TestValidateRejectsBadCache(t *testing.T) {
	cfg := defaultConfig()
	cfg.Auth.Secret = "s"
	require.NoError(t, cfg.Validate())

	cfg.Cache.Backend = CacheBackendRedis
	require.Error(t, cfg.Validate())

	cfg.Cache.Backend = "memcached"
	require.Error(t, cfg.Validate())

	cfg.Cache.Backend = CacheBackendMemory
	cfg.Cache.TTL = 500 * time.Millisecond
	require.Error(t, cfg.Validate())
}

func TestValidateRequiresAuthSecret(t *testing.T) {
	cfg := defaultConfig()
	require.Error(t, cfg.Validate())
}

func TestParseEditors(t *testing.T) {
	editors := parseEditors("alice:$2a$10$hash1, bob:$2a$10$hash2, broken, :nohash")
	require.Equal(t, []EditorConfig{
		{Username: "alice", PasswordHash: "$2a$10$hash1"},
		{Username: "bob", PasswordHash: "$2a$10$hash2"},
	}, editors)
}

func TestObjectStoreEnabled(t *testing.T) {
	require.False(t, ObjectStoreConfig{}.Enabled())
	require.True(t, ObjectStoreConfig{Endpoint: "http://minio:9000", Bucket: "exports"}.Enabled())
}
