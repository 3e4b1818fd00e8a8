package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ca65ls/internal/buildpipeline"
	"ca65ls/internal/source"
	"ca65ls/internal/symbols"
	"ca65ls/internal/workspace"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Render a scanned workspace's resolved state for offline debugging",
}

func init() {
	dumpCmd.AddCommand(dumpSymbolsCmd, dumpIncludesCmd, dumpExportsCmd, dumpPerfCmd)
}

func scanForDump(args []string) (buildpipeline.ScanResult, error) {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	for i, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return buildpipeline.ScanResult{}, err
		}
		roots[i] = abs
	}
	return buildpipeline.Scan(&buildpipeline.ScanRequest{Roots: roots})
}

var dumpSymbolsCmd = &cobra.Command{
	Use:   "symbols [roots...]",
	Short: "Dump the scoped symbol table outline for every scanned file",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := scanForDump(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, file := range res.Workspace.Files.All() {
			src := res.Workspace.Files.Get(file)
			if src == nil {
				continue
			}
			fmt.Fprintln(out, fileHeaderColor.Sprint(relPath(res.Workspace, src.Path)))
			entries := res.Workspace.Outline(file)
			dumpOutline(out, entries, 1)
		}
		return nil
	},
}

func dumpOutline(out io.Writer, entries []workspace.OutlineEntry, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		label := e.Name
		if e.IsScope {
			label = scopeColor.Sprintf("%s %s", e.ScopeKind.String(), e.Name)
		} else {
			label = symbolColor.Sprintf("%s %s", e.SymbolKind.String(), e.Name)
		}
		fmt.Fprintf(out, "%s%s\n", indent, label)
		dumpOutline(out, e.Children, depth+1)
	}
}

var dumpIncludesCmd = &cobra.Command{
	Use:   "includes [roots...]",
	Short: "Dump the resolved includes graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := scanForDump(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, file := range res.Workspace.Files.All() {
			src := res.Workspace.Files.Get(file)
			if src == nil {
				continue
			}
			targets := res.Workspace.Graph.Includes(file)
			if len(targets) == 0 {
				continue
			}
			fmt.Fprintln(out, fileHeaderColor.Sprint(relPath(res.Workspace, src.Path)))
			for _, t := range targets {
				tsrc := res.Workspace.Files.Get(t)
				if tsrc == nil {
					continue
				}
				fmt.Fprintf(out, "  -> %s\n", relPath(res.Workspace, tsrc.Path))
			}
		}
		return nil
	},
}

var dumpExportsCmd = &cobra.Command{
	Use:   "exports [roots...]",
	Short: "Dump the workspace-wide exported-name map",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := scanForDump(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range res.Workspace.Exports.Names() {
			label, ok := res.Workspace.Interner.Lookup(name)
			if !ok {
				continue
			}
			entries := res.Workspace.Exports.Lookup(name)
			fmt.Fprintln(out, symbolColor.Sprint(label))
			for _, e := range entries {
				src := res.Workspace.Files.Get(e.File)
				if src == nil {
					continue
				}
				fmt.Fprintf(out, "  %s (%s)\n", relPath(res.Workspace, src.Path), exportKindLabel(e.Kind))
			}
		}
		return nil
	},
}

var dumpPerfCmd = &cobra.Command{
	Use:   "perf [roots...]",
	Short: "Dump the scan pipeline's phase timings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := scanForDump(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d file(s)\n", res.FileCount)
		for _, p := range res.Report.Phases {
			fmt.Fprintf(out, "  %-12s %8.2f ms\n", p.Name, p.DurationMS)
		}
		fmt.Fprintf(out, "  %-12s %8.2f ms\n", "total", res.Report.TotalMS)
		return nil
	},
}

var (
	fileHeaderColor = color.New(color.FgCyan, color.Bold)
	scopeColor      = color.New(color.FgYellow)
	symbolColor     = color.New(color.FgGreen)
)

func exportKindLabel(k symbols.ExportKind) string {
	switch k {
	case symbols.ExportGlobal:
		return "global"
	case symbols.ExportPlain:
		return "export"
	default:
		return "unknown"
	}
}

func relPath(ws *workspace.Workspace, path string) string {
	if ws.Root == "" {
		return path
	}
	if rel, err := source.RelativePath(path, ws.Root); err == nil && rel != "" {
		return rel
	}
	return path
}
