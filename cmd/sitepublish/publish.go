package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/sitepublish"
	"github.com/input-output-hk/sitepublish/pubtypes"
)

func newPublishCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload changed files and delete stale keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, logger, false)
		},
	}
	addPublishFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "only report what would change")
	return cmd
}

func newPlanCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what publish would change without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, logger, true)
		},
	}
	addPublishFlags(cmd)
	return cmd
}

func run(cmd *cobra.Command, logger *slog.Logger, plan bool) error {
	v, err := initConfig(cmd)
	if err != nil {
		return err
	}
	cfg := getConfig(v)
	if plan {
		cfg.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := sitepublish.New(cfg.clientOptions(logger)...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	logger.Debug("starting publish",
		"source", cfg.Source,
		"bucket", cfg.Bucket,
		"prefix", cfg.Prefix,
		"dry_run", cfg.DryRun)

	report, err := client.Publish(cmd.Context(), cfg.Source, cfg.Bucket, cfg.publishOptions()...)
	if err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), report, cfg.JSON); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if report.HasFailures() {
		return &exitError{
			code: 2,
			err:  fmt.Errorf("%d keys failed: %v", report.Failed, report.FailedKeys()),
		}
	}
	return nil
}

func (c *Config) clientOptions(logger *slog.Logger) []pubtypes.Option {
	opts := []pubtypes.Option{
		sitepublish.WithLogger(logger),
		sitepublish.WithMaxRetries(c.MaxRetries),
		sitepublish.WithForcePathStyle(c.PathStyle),
	}
	if c.Region != "" {
		opts = append(opts, sitepublish.WithRegion(c.Region))
	}
	if c.Endpoint != "" {
		opts = append(opts, sitepublish.WithEndpoint(c.Endpoint))
	}
	if c.Timeout > 0 {
		opts = append(opts, sitepublish.WithTimeout(c.Timeout))
	}
	if c.Parallelism > 0 {
		opts = append(opts, sitepublish.WithConcurrency(c.Parallelism))
	}
	return opts
}

func (c *Config) publishOptions() []pubtypes.PublishOption {
	return []pubtypes.PublishOption{
		sitepublish.WithPublishPrefix(c.Prefix),
		sitepublish.WithDryRun(c.DryRun),
		sitepublish.WithDeleteExtra(c.DeleteExtra),
		sitepublish.WithInclude(c.Include...),
		sitepublish.WithExclude(c.Exclude...),
		sitepublish.WithParallelism(c.Parallelism),
		sitepublish.WithRequestRate(c.Rate, c.Burst),
		sitepublish.WithMultipartPolicy(pubtypes.MultipartPolicy(c.MultipartPolicy)),
		sitepublish.WithContentSniffing(c.Sniff),
		sitepublish.WithCacheControl(c.CacheControl),
		sitepublish.WithStorageClass(c.StorageClass),
		sitepublish.WithBatchDelete(c.BatchDelete),
	}
}
