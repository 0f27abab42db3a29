// Command m4 runs the macro-expansion engine over one or more input
// files, or stdin if none are given — a flag-driven CLI rather than a
// config-file one, matching GNU m4's own interface and the teacher's
// cobra-based cli/main.go root-command layout (SPEC_FULL.md §2.3).
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/m4go/m4/core/value"
	"github.com/m4go/m4/runtime/engine"
	"github.com/m4go/m4/runtime/primitives"
	"github.com/m4go/m4/runtime/state"
)

func main() {
	os.Exit(run())
}

// runOptions collects every cobra flag into one value so expandOnce can
// be called repeatedly by --watch without re-parsing argv each time.
type runOptions struct {
	files        []string
	defines      []string
	undefines    []string
	traces       []string
	nestingLimit int
	noGNU        bool
	posixMode    bool
	debugBits    int
	maxArgLen    int
	reloadPath   string
	freezePath   string
	verbose      bool
}

func run() int {
	var (
		opts    runOptions
		watch   bool
		noColor bool
	)

	rootCmd := &cobra.Command{
		Use:           "m4 [file...]",
		Short:         "Expand m4-style macros in the given files, or stdin if none are given",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.files = args
			useColor := shouldUseColor(noColor)

			if err := expandOnce(os.Stdout, opts); err != nil {
				cmd.SilenceUsage = true
				printError(os.Stderr, err, useColor)
				return err
			}
			if !watch {
				return nil
			}
			if err := watchAndReprocess(opts, useColor); err != nil {
				cmd.SilenceUsage = true
				printError(os.Stderr, err, useColor)
				return err
			}
			return nil
		},
	}

	def := engine.DefaultConfig()
	rootCmd.Flags().StringArrayVarP(&opts.defines, "define", "D", nil, "define name=value before processing (repeatable)")
	rootCmd.Flags().StringArrayVarP(&opts.undefines, "undefine", "U", nil, "undefine name before processing (repeatable)")
	rootCmd.Flags().StringArrayVarP(&opts.traces, "trace", "t", nil, "enable call tracing for name (repeatable)")
	rootCmd.Flags().IntVarP(&opts.nestingLimit, "nesting-limit", "L", def.NestingLimit, "expansion nesting limit")
	rootCmd.Flags().BoolVar(&opts.noGNU, "no-gnu-extensions", false, "disable GNU extensions (named-parameter bodies, unbounded $N)")
	rootCmd.Flags().BoolVar(&opts.posixMode, "posix", false, "strict POSIX semantics")
	rootCmd.Flags().IntVarP(&opts.debugBits, "debug", "d", 0, "debug bits: 1=argcount, 2=refcount increases, 4=refcount decreases")
	rootCmd.Flags().IntVar(&opts.maxArgLen, "trace-arg-length", 0, "truncate traced arguments to this many bytes (0 = unlimited)")
	rootCmd.Flags().StringVarP(&opts.reloadPath, "reload-state", "R", "", "reload frozen state from file before processing")
	rootCmd.Flags().StringVarP(&opts.freezePath, "freeze-state", "F", "", "freeze state to file after processing")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run expansion whenever an input file changes on disk")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "suggest close macro names when a Word token fails symbol lookup")

	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// expandOnce builds a fresh Engine, applies -D/-U/-t/-R, runs the given
// files (or stdin) through it, and applies -F. Building a fresh Engine
// per call keeps --watch's repeated reprocessing free of state leaking
// between runs, the same way re-invoking m4 from a shell loop would be.
func expandOnce(out io.Writer, opts runOptions) error {
	cfg := engine.DefaultConfig()
	cfg.NestingLimit = opts.nestingLimit
	cfg.GNUExtensions = !opts.noGNU
	cfg.POSIXMode = opts.posixMode
	cfg.DebugBits = opts.debugBits
	cfg.MaxDebugArgLength = opts.maxArgLen
	cfg.SuggestUnknownMacros = opts.verbose

	e := engine.New(cfg, out, nil)
	primitives.Register(e.Table())

	if opts.reloadPath != "" {
		f, err := os.Open(opts.reloadPath)
		if err != nil {
			return fmt.Errorf("reload state: %w", err)
		}
		loadErr := state.Load(e.Table(), f, primitives.Lookup)
		_ = f.Close()
		if loadErr != nil {
			return fmt.Errorf("reload state: %w", loadErr)
		}
	}

	for _, d := range opts.defines {
		name, val, _ := strings.Cut(d, "=")
		e.Table().Define(name, value.NewText([]byte(val), 0))
	}
	for _, u := range opts.undefines {
		e.Table().Undefine(u)
	}
	for _, t := range opts.traces {
		e.Table().SetTraced(t, true)
	}

	if len(opts.files) == 0 {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		e.PushFile("stdin", content)
	} else {
		// The input stack is LIFO: push in reverse so the first-named
		// file ends up on top and is read first.
		for i := len(opts.files) - 1; i >= 0; i-- {
			content, err := os.ReadFile(opts.files[i])
			if err != nil {
				return fmt.Errorf("reading %s: %w", opts.files[i], err)
			}
			e.PushFile(opts.files[i], content)
		}
	}

	if err := e.Run(); err != nil {
		return err
	}

	if opts.freezePath != "" {
		f, err := os.Create(opts.freezePath)
		if err != nil {
			return fmt.Errorf("freeze state: %w", err)
		}
		saveErr := state.Save(e.Table(), f)
		closeErr := f.Close()
		if saveErr != nil {
			return fmt.Errorf("freeze state: %w", saveErr)
		}
		if closeErr != nil {
			return fmt.Errorf("freeze state: %w", closeErr)
		}
	}
	return nil
}

// watchAndReprocess re-runs expandOnce whenever a watched input file is
// written, an ergonomic CLI addition in the teacher's own idiom rather
// than anything spec.md names (SPEC_FULL.md §3's fsnotify entry).
func watchAndReprocess(opts runOptions, useColor bool) error {
	if len(opts.files) == 0 {
		return fmt.Errorf("--watch requires at least one input file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	for _, f := range opts.files {
		if err := watcher.Add(f); err != nil {
			return fmt.Errorf("watch %s: %w", f, err)
		}
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := expandOnce(os.Stdout, opts); err != nil {
				printError(os.Stderr, err, useColor)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", werr)
		}
	}
}
