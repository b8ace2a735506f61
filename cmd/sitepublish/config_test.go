package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := newPublishCmd(nil)
	addClientFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestInitConfig_Flags(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newTestCmd(t,
		"--source", "./public",
		"--bucket", "www",
		"--prefix", "docs",
		"--exclude", "drafts/,*.tmp",
		"--delete=false",
		"--rate", "12.5",
		"--multipart-policy", "size-only",
	)
	v, err := initConfig(cmd)
	require.NoError(t, err)

	cfg := getConfig(v)
	assert.Equal(t, "./public", cfg.Source)
	assert.Equal(t, "www", cfg.Bucket)
	assert.Equal(t, "docs", cfg.Prefix)
	assert.Equal(t, []string{"drafts/", "*.tmp"}, cfg.Exclude)
	assert.False(t, cfg.DeleteExtra)
	assert.Equal(t, 12.5, cfg.Rate)
	assert.Equal(t, "size-only", cfg.MultipartPolicy)
	assert.Equal(t, 3, cfg.MaxRetries)
	require.NoError(t, cfg.Validate())
}

func TestInitConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := initConfig(newTestCmd(t))
	require.NoError(t, err)

	cfg := getConfig(v)
	assert.True(t, cfg.DeleteExtra)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "reupload", cfg.MultipartPolicy)
	assert.Zero(t, cfg.Parallelism)
}

func TestInitConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SITEPUBLISH_BUCKET", "env-bucket")
	t.Setenv("SITEPUBLISH_CACHE_CONTROL", "max-age=60")

	v, err := initConfig(newTestCmd(t, "--source", "site"))
	require.NoError(t, err)

	cfg := getConfig(v)
	assert.Equal(t, "env-bucket", cfg.Bucket)
	assert.Equal(t, "max-age=60", cfg.CacheControl)
}

func TestInitConfig_FlagOverridesEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SITEPUBLISH_BUCKET", "env-bucket")

	v, err := initConfig(newTestCmd(t, "--bucket", "flag-bucket"))
	require.NoError(t, err)
	assert.Equal(t, "flag-bucket", getConfig(v).Bucket)
}

func TestInitConfig_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := "source: ./dist\nbucket: file-bucket\nparallelism: 16\nsniff: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sitepublish.yaml"), []byte(content), 0o644))

	v, err := initConfig(newTestCmd(t))
	require.NoError(t, err)

	cfg := getConfig(v)
	assert.Equal(t, "./dist", cfg.Source)
	assert.Equal(t, "file-bucket", cfg.Bucket)
	assert.Equal(t, 16, cfg.Parallelism)
	assert.True(t, cfg.Sniff)
}

func TestInitConfig_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bucket: custom\n"), 0o644))

	v, err := initConfig(newTestCmd(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "custom", getConfig(v).Bucket)
}

func TestInitConfig_MissingExplicitConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := initConfig(newTestCmd(t, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	require.NoError(t, err)
	assert.Empty(t, getConfig(v).Bucket)
}

func TestInitConfig_MalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sitepublish.yaml"), []byte("bucket: [unclosed\n"), 0o644))

	_, err := initConfig(newTestCmd(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config read")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{Source: "site", Bucket: "www", MultipartPolicy: "reupload"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty policy", mutate: func(c *Config) { c.MultipartPolicy = "" }},
		{name: "missing source", mutate: func(c *Config) { c.Source = "" }, wantErr: "source"},
		{name: "missing bucket", mutate: func(c *Config) { c.Bucket = "" }, wantErr: "bucket"},
		{name: "negative parallelism", mutate: func(c *Config) { c.Parallelism = -1 }, wantErr: "parallelism"},
		{name: "negative rate", mutate: func(c *Config) { c.Rate = -2 }, wantErr: "rate"},
		{name: "negative burst", mutate: func(c *Config) { c.Burst = -1 }, wantErr: "burst"},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: "retries"},
		{name: "unknown policy", mutate: func(c *Config) { c.MultipartPolicy = "etag" }, wantErr: "multipart policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Options(t *testing.T) {
	cfg := &Config{
		Region:      "eu-west-1",
		Endpoint:    "http://localhost:9000",
		Parallelism: 4,
	}
	assert.Len(t, cfg.clientOptions(nil), 6)
	assert.Len(t, (&Config{}).clientOptions(nil), 3)
	assert.Len(t, cfg.publishOptions(), 12)
}
