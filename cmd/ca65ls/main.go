package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ca65ls/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ca65ls",
	Short: "ca65 assembly language server and workspace tools",
	Long:  `ca65ls resolves scoped symbols across a ca65 assembly workspace and serves editor queries over it.`,
}

// main registers subcommands and persistent flags, then executes the root
// command. A non-nil error from Execute exits the process with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("ui", "auto", "live progress display (auto|on|off)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this path")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this path")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to this path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
