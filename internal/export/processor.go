package export

import (
	"github.com/funvibe/funsonar/internal/pipeline"
)

// ExportProcessor writes the snapshot to every output listed in the options.
type ExportProcessor struct{}

func (ep *ExportProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	snap, ok := ctx.Snapshot.(*Snapshot)
	if !ok || ctx.Options == nil {
		return ctx
	}
	for _, spec := range ctx.Options.Export {
		if err := WriteFile(spec.Format, spec.Path, snap); err != nil {
			ctx.Errors = append(ctx.Errors, err)
			continue
		}
		if ctx.Logger != nil {
			ctx.Logger.Printf("wrote %s export to %s", spec.Format, spec.Path)
		}
	}
	return ctx
}
