package pipeline

import (
	"io"
	"log"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/config"
	"github.com/funvibe/funsonar/internal/diagnostics"
)

// PipelineContext carries the state shared between processing stages.
// Stage-specific values are stored as interfaces to keep the stage
// packages free of import cycles.
type PipelineContext struct {
	Options *config.Options
	Logger  *log.Logger

	// Paths are the command-line inputs: dump files, directories or bundles.
	Paths []string

	// Modules are the decoded inputs, in load order.
	Modules []*ast.Module

	Loader   interface{} // *modules.Loader
	Session  interface{} // *analyzer.Analyzer
	Snapshot interface{} // *export.Snapshot

	// Errors are failures that stop the run: unreadable inputs, fatal
	// analysis errors, export failures.
	Errors []error

	// Diagnostics are the sorted findings of the analysis.
	Diagnostics []*diagnostics.DiagnosticError
}

// NewPipelineContext creates a context for the given inputs. A nil opts
// means defaults.
func NewPipelineContext(opts *config.Options, paths ...string) *PipelineContext {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	return &PipelineContext{
		Options: opts,
		Logger:  log.New(io.Discard, "", 0),
		Paths:   paths,
	}
}

// Failed reports whether a stage recorded an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}
