package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordex/internal/catalog"
)

func newStatsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats [path]",
		Short: "Show statistics for the latest index run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runStats(cmd, path, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Index directory (default: <path>/.wordex)")

	return cmd
}

func runStats(cmd *cobra.Command, path, output string) error {
	outDir, err := resolveOutputDir(path, output)
	if err != nil {
		return err
	}

	cat, err := catalog.Open(outDir)
	if err != nil {
		return err
	}
	defer cat.Close()

	run, found, err := cat.LatestRun()
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no index runs recorded in %s", outDir)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run #%d (%s) at %s\n", run.ID, run.State, run.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "  Documents: %d indexed, %d skipped\n", run.Documents, run.Skipped)
	fmt.Fprintf(out, "  Words:     %d distinct, %d total\n", run.Words, run.WordCount)
	fmt.Fprintf(out, "  Duration:  %s\n", run.Duration.Round(time.Millisecond))

	buckets, err := cat.Buckets(run.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  Buckets:   %d\n", len(buckets))
	for _, b := range buckets {
		fmt.Fprintf(out, "    %-4s %6d words %10d bytes\n", b.Key, b.Words, b.Bytes)
	}

	skips, err := cat.Skips(run.ID)
	if err != nil {
		return err
	}
	if len(skips) > 0 {
		fmt.Fprintf(out, "  Skipped:\n")
		for _, s := range skips {
			fmt.Fprintf(out, "    %s [%s]\n", s.Path, s.Code)
		}
	}
	return nil
}
