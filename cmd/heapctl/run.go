package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/brk"
)

var (
	runBackend string
	runLimit   int
	runBase    uint64
	runFile    string
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&runBackend, "backend", "arena", "Break backend: arena, mmap or file")
	cmd.Flags().IntVar(&runLimit, "limit", 1<<20, "Maximum heap size in bytes")
	cmd.Flags().Uint64Var(&runBase, "base", uint64(brk.DefaultBase), "Logical base address")
	cmd.Flags().StringVar(&runFile, "file", "", "Backing file for the file backend (default: heap.bin in a temp dir)")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Replay an allocation script",
		Long: `The run command executes an allocation script against a fresh heap and
prints every step followed by the final block layout.

Script commands, one per line (# starts a comment):
  malloc <name> <size>
  calloc <name> <count> <size>
  realloc <name> <size>
  free <name>
  write <name> <text>
  check

Example:
  heapctl run trace.txt
  heapctl run trace.txt --backend mmap --limit 1048576
  heapctl run trace.txt --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(args)
		},
	}
	return cmd
}

// layoutBlock is the JSON form of one block.
type layoutBlock struct {
	Header string `json:"header"`
	Data   string `json:"data"`
	Size   uint64 `json:"size"`
	Free   bool   `json:"free"`
}

// runReport is the JSON output of the run command.
type runReport struct {
	Backend  string        `json:"backend"`
	Steps    []stepResult  `json:"steps"`
	Blocks   []layoutBlock `json:"blocks"`
	Base     string        `json:"base"`
	Boundary string        `json:"boundary"`
}

func runScript(args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	cmds, err := parseScript(f)
	if err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}
	printVerbose("Parsed %d commands from %s\n", len(cmds), args[0])

	b, closeBreak, err := openBreak(runBackend)
	if err != nil {
		return err
	}
	defer closeBreak()

	h, err := alloc.New(b, &alloc.Options{Logger: newLogger()})
	if err != nil {
		return err
	}

	results, runErr := newSession(h).run(cmds)

	report := runReport{
		Backend:  runBackend,
		Steps:    results,
		Base:     b.Base().String(),
		Boundary: b.Current().String(),
	}
	walkErr := h.Walk(func(blk alloc.Block) bool {
		report.Blocks = append(report.Blocks, layoutBlock{
			Header: blk.Addr.String(),
			Data:   blk.Data.String(),
			Size:   blk.Size,
			Free:   blk.Free,
		})
		return true
	})
	if runErr == nil {
		runErr = walkErr
	}

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
		return runErr
	}
	printReport(report)
	return runErr
}

// openBreak creates the break named by backend and a func that releases it.
func openBreak(backend string) (brk.Break, func(), error) {
	switch backend {
	case "arena":
		a, err := brk.NewArena(brk.ArenaOptions{Base: brk.Addr(runBase), Limit: runLimit})
		if err != nil {
			return nil, nil, err
		}
		return a, func() {}, nil
	case "mmap":
		m, err := brk.NewMapped(brk.MappedOptions{Base: brk.Addr(runBase), Limit: runLimit})
		if err != nil {
			return nil, nil, err
		}
		return m, func() { _ = m.Close() }, nil
	case "file":
		path := runFile
		if path == "" {
			dir, err := os.MkdirTemp("", "heapctl-")
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(dir, "heap.bin")
		}
		fb, err := brk.OpenFile(brk.FileOptions{Path: path, Base: brk.Addr(runBase), Limit: runLimit})
		if err != nil {
			return nil, nil, err
		}
		printVerbose("Backing file: %s\n", fb.Path())
		return fb, func() {
			_ = fb.Sync()
			_ = fb.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("%w %q (want arena, mmap or file)", errUnknownBackend, backend)
	}
}

// newLogger sends allocator debug events to stderr in verbose mode.
func newLogger() *slog.Logger {
	if verbose && !quiet {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func printReport(r runReport) {
	for _, s := range r.Steps {
		printStep(s)
	}

	printInfo("\nHeap [%s, %s) on %s, %d block(s)\n", r.Base, r.Boundary, r.Backend, len(r.Blocks))
	for _, blk := range r.Blocks {
		printBlock(blk)
	}
	used, free := blockTotals(r.Blocks)
	printInfo("  %d byte(s) used, %d byte(s) free\n", used, free)
}
