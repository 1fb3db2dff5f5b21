package analyzer

import (
	"github.com/funvibe/funsonar/internal/export"
	"github.com/funvibe/funsonar/internal/pipeline"
)

// AnalyzerProcessor runs inference over the loaded modules and stores the
// session and its snapshot in the context.
type AnalyzerProcessor struct{}

func (ap *AnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Modules) == 0 {
		return ctx
	}
	options := []Option{WithLogger(ctx.Logger)}
	// Use the shared loader so imports resolve against the same inputs
	if loader, ok := ctx.Loader.(ModuleLoader); ok {
		options = append(options, WithLoader(loader))
	}
	a := New(ctx.Options, options...)
	ctx.Session = a

	if err := a.Analyze(ctx.Modules...); err != nil {
		ctx.Errors = append(ctx.Errors, err)
	}
	ctx.Diagnostics = a.Diagnostics.All()
	ctx.Snapshot = export.Build(a.ID, a.u, a.Index, ctx.Diagnostics)
	return ctx
}
