package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/input-output-hk/sitepublish/pubtypes"
)

const envPrefix = "SITEPUBLISH"

// Config holds the settings of one CLI invocation.
// Priority: flags > SITEPUBLISH_* env vars > config file > defaults.
type Config struct {
	Source          string
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	PathStyle       bool
	MaxRetries      int
	Timeout         time.Duration
	DryRun          bool
	DeleteExtra     bool
	Include         []string
	Exclude         []string
	Parallelism     int
	Rate            float64
	Burst           int
	MultipartPolicy string
	Sniff           bool
	CacheControl    string
	StorageClass    string
	BatchDelete     bool
	JSON            bool
	Verbose         bool
}

// Validate checks the configuration before any I/O happens.
func (c *Config) Validate() error {
	if c.Source == "" {
		return errors.New("source directory is required (--source)")
	}
	if c.Bucket == "" {
		return errors.New("bucket is required (--bucket)")
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative: %d", c.Parallelism)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative: %v", c.Rate)
	}
	if c.Burst < 0 {
		return fmt.Errorf("burst must not be negative: %d", c.Burst)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative: %d", c.MaxRetries)
	}
	switch pubtypes.MultipartPolicy(c.MultipartPolicy) {
	case "", pubtypes.MultipartReupload, pubtypes.MultipartSizeOnly:
	default:
		return fmt.Errorf("unknown multipart policy %q (want %q or %q)",
			c.MultipartPolicy, pubtypes.MultipartReupload, pubtypes.MultipartSizeOnly)
	}
	return nil
}

// addPublishFlags registers the flags shared by publish and plan.
func addPublishFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.SortFlags = false
	f.StringP("source", "s", "", "local directory to publish")
	f.StringP("bucket", "b", "", "target S3 bucket")
	f.StringP("prefix", "p", "", "key prefix inside the bucket")
	f.StringSlice("include", nil, "only publish keys matching these globs")
	f.StringSlice("exclude", nil, "never publish or delete keys matching these globs")
	f.Bool("delete", true, "delete remote keys that no longer exist locally")
	f.Int("parallelism", 0, "concurrent requests (0 uses the client default)")
	f.Float64("rate", 0, "max mutating requests per second (0 disables pacing)")
	f.Int("burst", 0, "rate limiter burst")
	f.String("multipart-policy", string(pubtypes.MultipartReupload), "how to compare multipart ETags: reupload or size-only")
	f.Bool("sniff", false, "sniff content type when the extension is unknown")
	f.String("cache-control", "", "Cache-Control header for uploads")
	f.String("storage-class", "", "storage class for uploads")
	f.Bool("batch-delete", false, "delete with DeleteObjects in batches of 1000")
	f.Bool("json", false, "print the report as JSON")
}

// addClientFlags registers the persistent connection flags.
func addClientFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringP("config", "c", "", "config file (default ./sitepublish.yaml)")
	f.String("region", "", "AWS region")
	f.String("endpoint", "", "custom S3 endpoint URL")
	f.Bool("path-style", false, "use path-style bucket addressing")
	f.Int("max-retries", 3, "max attempts per request made by the SDK")
	f.Duration("timeout", 0, "per-request timeout (0 disables)")
	f.BoolP("verbose", "v", false, "enable debug logging")
}

// initConfig builds a viper instance for cmd from its flags, the environment
// and an optional config file.
func initConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("sitepublish")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	return v, nil
}

// getConfig extracts the configuration from viper.
func getConfig(v *viper.Viper) *Config {
	return &Config{
		Source:          v.GetString("source"),
		Bucket:          v.GetString("bucket"),
		Prefix:          v.GetString("prefix"),
		Region:          v.GetString("region"),
		Endpoint:        v.GetString("endpoint"),
		PathStyle:       v.GetBool("path-style"),
		MaxRetries:      v.GetInt("max-retries"),
		Timeout:         v.GetDuration("timeout"),
		DryRun:          v.GetBool("dry-run"),
		DeleteExtra:     v.GetBool("delete"),
		Include:         v.GetStringSlice("include"),
		Exclude:         v.GetStringSlice("exclude"),
		Parallelism:     v.GetInt("parallelism"),
		Rate:            v.GetFloat64("rate"),
		Burst:           v.GetInt("burst"),
		MultipartPolicy: v.GetString("multipart-policy"),
		Sniff:           v.GetBool("sniff"),
		CacheControl:    v.GetString("cache-control"),
		StorageClass:    v.GetString("storage-class"),
		BatchDelete:     v.GetBool("batch-delete"),
		JSON:            v.GetBool("json"),
		Verbose:         v.GetBool("verbose"),
	}
}
