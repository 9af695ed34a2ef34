package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	writeFile(t, file, "server:\n  http-port: \":9100\"\n")

	cfg, realpath, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, file, realpath)
	assert.Equal(t, ":9100", cfg.Server.HttpPort)
	assert.Equal(t, ":9001", cfg.Server.PrivateHttpListen)
	assert.Equal(t, 8, cfg.App.ImageResolveConcurrency)
	assert.Equal(t, service.MissingImageFail, cfg.App.MissingImagePolicy)
	assert.False(t, cfg.App.DeleteRollback)
	assert.Equal(t, "@every 10m", cfg.App.RefreshSpec)
	assert.Equal(t, RecordStoreGraphQL, cfg.RecordStore.Type)
	assert.Equal(t, "localfs", cfg.BlobStore.Type)
	assert.Equal(t, "storage/uploads", cfg.BlobStore.SavePath)
	assert.Equal(t, 15*time.Minute, cfg.GetBlobURLExpiry())
	assert.Equal(t, 7*24*time.Hour, cfg.GetTokenExpiry())
	assert.Equal(t, 60*time.Second, cfg.GetContextTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetGraphQLConfig().Timeout)
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	writeFile(t, filepath.Join(dir, ".env"), "PIN_NOTES_TEST_API_KEY=da2-from-dotenv\n")
	t.Setenv("PIN_NOTES_TEST_ENDPOINT", "https://api.example.com/graphql")
	writeFile(t, file, `
record-store:
  type: graphql
  graphql:
    endpoint: ${PIN_NOTES_TEST_ENDPOINT}
    api-key: ${PIN_NOTES_TEST_API_KEY}
    timeout: 5s
blob-store:
  type: s3
  bucket-name: notes
  region: eu-west-1
  url-expiry: 1h
app:
  missing-image-policy: omit
  delete-rollback: true
auth:
  users:
    - username: alice
      password-hash: "$2a$10$abcdefghijklmnopqrstuv"
`)
	t.Cleanup(func() { _ = os.Unsetenv("PIN_NOTES_TEST_API_KEY") })

	cfg, _, err := LoadConfig(file)
	require.NoError(t, err)

	gql := cfg.GetGraphQLConfig()
	assert.Equal(t, "https://api.example.com/graphql", gql.Endpoint)
	assert.Equal(t, "da2-from-dotenv", gql.APIKey)
	assert.Equal(t, 5*time.Second, gql.Timeout)
	assert.Equal(t, "notes", cfg.BlobStore.BucketName)
	assert.Equal(t, time.Hour, cfg.GetBlobURLExpiry())

	svc := cfg.GetServiceConfig()
	assert.Equal(t, service.MissingImageOmit, svc.App.MissingImagePolicy)
	assert.True(t, svc.App.DeleteRollback)
	assert.Equal(t, "$2a$10$abcdefghijklmnopqrstuv", svc.Auth.Users["alice"], "bcrypt hashes are not env expanded")

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *AppConfig {
		cfg, _, err := LoadConfig(writeTemp(t, `
record-store:
  type: database
auth:
  users:
    - username: alice
      password-hash: x
`))
		require.NoError(t, err)
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"graphql without endpoint", func(c *AppConfig) { c.RecordStore.Type = RecordStoreGraphQL }},
		{"unknown record store", func(c *AppConfig) { c.RecordStore.Type = "dynamodb" }},
		{"unknown blob store", func(c *AppConfig) { c.BlobStore.Type = "ftp" }},
		{"unknown image policy", func(c *AppConfig) { c.App.MissingImagePolicy = "retry" }},
		{"no users", func(c *AppConfig) { c.Auth.Users = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, file, content)
	return file
}
