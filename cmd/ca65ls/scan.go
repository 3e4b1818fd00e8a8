package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ca65ls/internal/buildpipeline"
	"ca65ls/internal/project"
)

var scanCmd = &cobra.Command{
	Use:   "scan [roots...]",
	Short: "Scan a workspace once and report file counts and timings",
	Long:  "scan performs the two-pass workspace initialization (discover, then per-file scan and include integration) and reports the result, with a live terminal progress display when stdout is a terminal.",
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	for i, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return err
		}
		roots[i] = abs
	}

	uiFlag, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	showTimings, _ := cmd.Flags().GetBool("timings")

	req := &buildpipeline.ScanRequest{Roots: roots}

	var res buildpipeline.ScanResult
	if shouldUseTUI(mode) {
		found, discErr := project.Discover(roots, project.DefaultConfig())
		if discErr != nil {
			return discErr
		}
		res, err = runScanWithUI("ca65ls scan", found.Files, req)
	} else {
		res, err = buildpipeline.Scan(req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scanned %d file(s) under %s\n", res.FileCount, res.IncludeRoot)
	if res.LoadErrors != nil && res.LoadErrors.Len() > 0 {
		fmt.Fprintf(out, "%d file(s) failed to load\n", res.LoadErrors.Len())
	}
	if showTimings {
		for _, p := range res.Report.Phases {
			fmt.Fprintf(out, "  %-12s %8.2f ms\n", p.Name, p.DurationMS)
		}
		fmt.Fprintf(out, "  %-12s %8.2f ms\n", "total", res.Report.TotalMS)
	}
	return nil
}
