package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise and inspect heapkit heaps",
	Long: `heapctl drives a heapkit allocator from a small command script and
reports the block layout it produces. It can run against an in-memory arena,
an anonymous memory mapping, or a file-backed mapping.`,
	Version: "0.1.0",
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printStep prints one script step: its line, operation, name and either the
// resulting address or the error it produced.
func printStep(s stepResult) {
	switch {
	case s.Err != "":
		printInfo("%4d  %-7s %-8s error: %s\n", s.Line, s.Op, s.Name, s.Err)
	case s.Addr != "":
		printInfo("%4d  %-7s %-8s %s\n", s.Line, s.Op, s.Name, s.Addr)
	default:
		printInfo("%4d  %-7s %s\n", s.Line, s.Op, s.Name)
	}
}

// printBlock prints one row of a block layout.
func printBlock(b layoutBlock) {
	printInfo("  %s  data=%s  size=%-8d %s\n", b.Header, b.Data, b.Size, blockState(b.Free))
}

func blockState(free bool) string {
	if free {
		return "free"
	}
	return "used"
}

// blockTotals sums usable bytes by state. Header overhead is not counted.
func blockTotals(blocks []layoutBlock) (used, free uint64) {
	for _, b := range blocks {
		if b.Free {
			free += b.Size
		} else {
			used += b.Size
		}
	}
	return used, free
}
