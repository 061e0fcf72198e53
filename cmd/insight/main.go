// Package main provides the CLI entry point for the insight analytics
// pipeline.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wellside/insight/internal/airtable/client"
	"github.com/wellside/insight/internal/config"
	"github.com/wellside/insight/internal/dataset"
	"github.com/wellside/insight/internal/export"
	"github.com/wellside/insight/internal/score"
)

// version is set at build time via ldflags.
var version = "dev"

// datasets maps CLI names to their declarations.
var datasets = map[string]dataset.Dataset{
	"utilization": dataset.Utilization(),
	"pnl":         dataset.PnL(),
	"sow":         dataset.SOW(),
	"kpi":         dataset.KPI(),
}

func datasetNames() []string {
	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "insight",
		Short: "Analytics pipeline for operational Airtable data",
		Long: `Fetches appointment utilization, P&L, SOW, and daily KPI records from
Airtable, reconciles drifting schemas into canonical columns, derives rate
metrics, and computes weighted leader performance scores.`,
		Version: version,
	}

	var configPath string
	var debug bool
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	if err := rootCmd.MarkPersistentFlagRequired("config"); err != nil {
		panic(err)
	}

	pullCmd := &cobra.Command{
		Use:       "pull <dataset>",
		Short:     "Fetch one dataset and emit its processed rows as JSON",
		Long:      fmt.Sprintf("Fetch, flatten, reconcile, and coerce one dataset.\nDatasets: %v.", datasetNames()),
		Args:      cobra.ExactArgs(1),
		ValidArgs: datasetNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(cmd.Context(), configPath, debug, args[0])
		},
	}

	scoreCmd := &cobra.Command{
		Use:   "score",
		Short: "Compute leader performance scores from the KPI dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			exportKey, _ := cmd.Flags().GetString("export-to")
			return runScore(cmd.Context(), configPath, debug, exportKey)
		},
	}
	scoreCmd.Flags().String("export-to", "", "Dataset key of a configured base to write scores back to")

	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(scoreCmd)

	return rootCmd
}

func setup(configPath string, debug bool) (*config.Config, client.Client, client.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := client.NewWriterLogger(os.Stderr, debug)

	clientCfg := client.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.Timeout = cfg.Timeout
	clientCfg.MaxRetries = cfg.MaxRetries
	clientCfg.Logger = logger

	c, err := client.New(clientCfg)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, c, logger, nil
}

func runPull(ctx context.Context, configPath string, debug bool, name string) error {
	ds, ok := datasets[name]
	if !ok {
		return fmt.Errorf("unknown dataset %q (expected one of %v)", name, datasetNames())
	}

	cfg, c, logger, err := setup(configPath, debug)
	if err != nil {
		return err
	}

	base, err := cfg.BaseFor(ds.Key)
	if err != nil {
		return err
	}

	pipe := dataset.New(c, logger)
	t, stats, err := pipe.Run(ctx, ds, base.BaseID, base.TableID, client.ListQuery{MaxRecords: cfg.PageSize})
	if err != nil {
		return err
	}

	for field, reason := range stats.Diag.UnmappedFields {
		fmt.Fprintf(os.Stderr, "could not map field %s: %s\n", field, reason)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, row := range t.Rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("encoding row: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "%s: fetched %d records, skipped %d, %d rows emitted\n",
		ds.Name, stats.Fetched, stats.Skipped, t.Len())
	return nil
}

func runScore(ctx context.Context, configPath string, debug bool, exportKey string) error {
	cfg, c, logger, err := setup(configPath, debug)
	if err != nil {
		return err
	}

	ds := dataset.KPI()
	base, err := cfg.BaseFor(ds.Key)
	if err != nil {
		return err
	}

	pipe := dataset.New(c, logger)
	t, stats, err := pipe.Run(ctx, ds, base.BaseID, base.TableID, client.ListQuery{MaxRecords: cfg.PageSize})
	if err != nil {
		return err
	}

	opts := dataset.KPIScoringDefaults()
	if len(cfg.Scoring.Weights) > 0 {
		opts.Weights = cfg.Scoring.Weights
	}
	if len(cfg.Scoring.Minimums) > 0 {
		opts.Minimums = cfg.Scoring.Minimums
	}
	if cfg.Scoring.BlendCompliance > 0 || cfg.Scoring.BlendMagnitude > 0 {
		opts.BlendCompliance = cfg.Scoring.BlendCompliance
		opts.BlendMagnitude = cfg.Scoring.BlendMagnitude
	}

	records := score.Score(t, opts)

	fmt.Printf("%-4s %-24s %8s %8s %12s\n", "Rank", "Leader", "Score", "Events", "MinimumsMet")
	for _, rec := range records {
		fmt.Printf("%-4d %-24s %8.1f %8d %11.0f%%\n",
			rec.Rank, rec.Entity, rec.PerformanceScore, rec.EventCount, rec.MinimumsMet*100)
	}

	fmt.Fprintf(os.Stderr, "kpi: fetched %d records, skipped %d, scored %d leaders\n",
		stats.Fetched, stats.Skipped, len(records))

	if exportKey != "" {
		target, err := cfg.BaseFor(exportKey)
		if err != nil {
			return err
		}
		exp := export.New(c, logger, cfg.WriteRPS)
		res, err := exp.ExportScores(ctx, target.BaseID, target.TableID, records)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "export: wrote %d records, %d failed\n", res.Written, res.Failed)
	}

	return nil
}

func main() {
	ctx := context.Background()
	rootCmd := buildRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
