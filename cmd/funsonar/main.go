package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/funsonar/internal/analyzer"
	"github.com/funvibe/funsonar/internal/config"
	"github.com/funvibe/funsonar/internal/diagnostics"
	"github.com/funvibe/funsonar/internal/export"
	"github.com/funvibe/funsonar/internal/modules"
	"github.com/funvibe/funsonar/internal/pipeline"
)

const usage = `Usage: funsonar [options] <dump|dir|bundle.txtar>...

Options:
  --config <file>   read options from file instead of searching for funsonar.yaml
  -o <file>         write the snapshot to file (format from extension: .json, .yaml, .db)
  --debug-types     print interval bounds and literal values in types
  --unused          report unused variables
  --summary         print run counters
  --debug           log progress to stderr
  --help            show this help
`

type cliArgs struct {
	configPath string
	outputs    []string
	paths      []string
	debug      bool
	debugTypes bool
	unused     bool
	summary    bool
}

func parseArgs(args []string) (*cliArgs, error) {
	c := &cliArgs{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-debug", "--debug":
			c.debug = true
		case "--debug-types":
			c.debugTypes = true
		case "--unused":
			c.unused = true
		case "--summary":
			c.summary = true
		case "--config", "-o":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			i++
			if arg == "-o" {
				c.outputs = append(c.outputs, args[i])
			} else {
				c.configPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown option %s", arg)
			}
			c.paths = append(c.paths, arg)
		}
	}
	if len(c.paths) == 0 {
		return nil, fmt.Errorf("no input given")
	}
	return c, nil
}

// loadOptions reads the explicit config file or the nearest funsonar.yaml
// above the first input, then applies command-line overrides.
func loadOptions(c *cliArgs) (*config.Options, error) {
	path := c.configPath
	if path == "" {
		dir := c.paths[0]
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			dir = filepath.Dir(dir)
		}
		found, err := config.FindOptions(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	opts := config.DefaultOptions()
	if path != "" {
		var err error
		if opts, err = config.LoadOptions(path); err != nil {
			return nil, err
		}
	}
	opts.DebugTypes = opts.DebugTypes || c.debugTypes
	opts.ReportUnused = opts.ReportUnused || c.unused
	for _, out := range c.outputs {
		format := config.FormatFromPath(out)
		if format == "" {
			return nil, fmt.Errorf("cannot tell export format of %s", out)
		}
		opts.Export = append(opts.Export, config.ExportSpec{Format: format, Path: out})
	}
	return opts, nil
}

// colorEnabled follows the NO_COLOR convention and requires a terminal.
func colorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printDiagnostics(w io.Writer, diags []*diagnostics.DiagnosticError, color bool) {
	for _, d := range diags {
		if !color {
			fmt.Fprintln(w, d.Error())
			continue
		}
		code := "\x1b[33m"
		if d.Severity == diagnostics.Fatal {
			code = "\x1b[31m"
		}
		fmt.Fprintf(w, "%s: %s%s[%s]\x1b[0m: %s\n", d.Pos, code, d.Severity, d.Code, d.Message)
	}
}

func run(args []string, stdout, stderr *os.File) int {
	c, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n\n%s", err, usage)
		return 2
	}
	opts, err := loadOptions(c)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 2
	}

	ctx := pipeline.NewPipelineContext(opts, c.paths...)
	if c.debug {
		ctx.Logger = log.New(stderr, "funsonar: ", log.Ltime)
	}
	processingPipeline := pipeline.New(
		&modules.LoaderProcessor{},
		&analyzer.AnalyzerProcessor{},
		&export.ExportProcessor{},
	)
	finalContext := processingPipeline.Run(ctx)

	printDiagnostics(stdout, finalContext.Diagnostics, colorEnabled(stdout))
	if c.summary {
		if a, ok := finalContext.Session.(*analyzer.Analyzer); ok {
			fmt.Fprint(stdout, a.Summary().String())
		}
	}
	if finalContext.Failed() {
		for _, err := range finalContext.Errors {
			if _, isDiag := err.(*diagnostics.DiagnosticError); isDiag {
				continue
			}
			fmt.Fprintf(stderr, "Error: %s\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if os.Getenv("FUNSONAR_TEST_MODE") == "1" {
		config.IsTestMode = true
	}

	args := os.Args[1:]
	for _, arg := range args {
		if arg == "-help" || arg == "--help" || arg == "help" {
			fmt.Print(usage)
			return
		}
	}
	os.Exit(run(args, os.Stdout, os.Stderr))
}
