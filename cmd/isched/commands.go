package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/engine"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/logging"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/output"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/policy"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/providers/aws/fleet"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/providers/aws/metrics"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/reconcile"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/runlock"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "isched",
		Short: "Tag-driven start/stop scheduler for AWS compute resources",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		policyFile       string
		profile          string
		regions          []string
		includeRDS       bool
		instanceIDs      []string
		tagFilters       []string
		workers          int
		timeout          time.Duration
		dryRun           bool
		reportFmt        string
		outputPath       string
		metricsNamespace string
		lockFile         string
		logLevel         string
		colored          bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Perform one inventory, evaluate, reconcile pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.Setup(logLevel)
			ctx := cmd.Context()

			policies, err := policy.Load(policyFile)
			if err != nil {
				return err
			}

			filters, err := parseTagFilters(tagFilters)
			if err != nil {
				return err
			}

			if lockFile != "" {
				lock, err := runlock.Acquire(lockFile)
				if err != nil {
					return err
				}
				defer lock.Release()
			}

			provider := common.NewDefaultAWSClientProvider()
			profileCfg, err := provider.LoadProfile(ctx, profile)
			if err != nil {
				return err
			}

			if len(regions) == 0 {
				regions, err = provider.GetActiveRegions(ctx, profileCfg)
				if err != nil {
					return err
				}
			}

			collectorOpts := []fleet.CollectorOption{}
			if includeRDS {
				collectorOpts = append(collectorOpts, fleet.WithRDS())
			}
			if len(instanceIDs) > 0 {
				collectorOpts = append(collectorOpts, fleet.WithInstanceIDs(instanceIDs))
			}
			if len(filters) > 0 {
				collectorOpts = append(collectorOpts, fleet.WithTagFilters(filters))
			}
			collector := fleet.NewCollector(profileCfg, provider, regions, logger, collectorOpts...)

			reconciler := reconcile.New(collector, logger,
				reconcile.WithWorkers(workers),
				reconcile.WithTimeout(timeout),
			)

			eng := engine.NewDefaultEngine(collector, reconciler, policies, logger)

			summary, err := eng.Run(ctx, engine.RunOptions{DryRun: dryRun})
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}
			summary.AccountID = profileCfg.AccountID
			summary.Profile = profileCfg.ProfileName
			summary.Regions = regions

			if summary.Failed > 0 {
				logger.Warn().
					Strs("failed_ids", summary.FailedIDs()).
					Msg("some transitions failed; they will be retried on the next trigger")
			}

			if metricsNamespace != "" && !dryRun {
				publisher := metrics.NewPublisher(
					provider.ConfigForRegion(profileCfg, profileCfg.Region),
					metricsNamespace,
				)
				if err := publisher.Publish(ctx, summary); err != nil {
					// Best-effort: metric delivery never fails the run.
					logger.Warn().Err(err).Msg("metrics publish failed")
				}
			}

			if outputPath != "" {
				if err := writeSummaryToFile(outputPath, summary); err != nil {
					return err
				}
			}

			if reportFmt == "json" {
				return printJSON(summary)
			}
			output.RenderTable(os.Stdout, summary, output.TableOptions{Colored: colored})

			// Per-resource failures are recorded in the summary; the batch
			// was still processed, so the exit code stays zero.
			return nil
		},
	}

	cmd.Flags().StringVar(&policyFile, "policy-file", "schedule.yaml", "Path to the YAML schedule-policy document")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().StringSliceVar(&regions, "region", nil, "AWS region(s) to schedule (default: all active regions)")
	cmd.Flags().BoolVar(&includeRDS, "include-rds", false, "Also schedule RDS database instances")
	cmd.Flags().StringSliceVar(&instanceIDs, "instance-id", nil, "Restrict the EC2 inventory to specific instance IDs")
	cmd.Flags().StringSliceVar(&tagFilters, "tag", nil, "Inventory tag filter as key=value (repeatable; all must match)")
	cmd.Flags().IntVar(&workers, "workers", 8, "Maximum concurrent transitions")
	cmd.Flags().DurationVar(&timeout, "transition-timeout", 2*time.Minute, "Per-resource transition timeout")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute and report transitions without issuing them")
	cmd.Flags().StringVar(&reportFmt, "report", "table", "Output format: json or table")
	cmd.Flags().StringVar(&outputPath, "output", "", "Write the full JSON summary to this file path (in addition to stdout output)")
	cmd.Flags().StringVar(&metricsNamespace, "metrics-namespace", "", "Publish run counters to CloudWatch under this namespace")
	cmd.Flags().StringVar(&lockFile, "lock-file", "", "Pidfile guarding against overlapping runs (empty disables)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&colored, "color", false, "Colorize the outcome table")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var policyFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a schedule-policy document and report every problem found",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := policy.Parse(policyFile)
			if err != nil {
				return err
			}

			if errs := policy.Validate(cfg); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", e)
				}
				return fmt.Errorf("%s: %d problem(s) found", policyFile, len(errs))
			}

			if _, err := policy.Compile(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d policies)\n", policyFile, len(cfg.Policies))
			return nil
		},
	}

	cmd.Flags().StringVar(&policyFile, "policy-file", "schedule.yaml", "Path to the YAML schedule-policy document")
	return cmd
}

// parseTagFilters converts repeated key=value flags into a map.
func parseTagFilters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --tag %q; expected key=value", pair)
		}
		filters[key] = value
	}
	return filters, nil
}

// printJSON writes the summary as indented JSON to stdout.
func printJSON(summary *models.RunSummary) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// writeSummaryToFile serialises summary as indented JSON and writes it to
// path, creating or overwriting the file. It does not affect stdout output.
func writeSummaryToFile(path string, summary *models.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary file %q: %w", path, err)
	}
	return nil
}
