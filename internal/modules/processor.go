package modules

import (
	"github.com/funvibe/funsonar/internal/pipeline"
)

// LoaderProcessor decodes the inputs named in the context. The loader is
// stored in the context so the analyzer resolves imports through it.
type LoaderProcessor struct{}

func (lp *LoaderProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	loader, ok := ctx.Loader.(*Loader)
	if !ok {
		loader = NewLoader()
		ctx.Loader = loader
	}
	if ctx.Options != nil {
		for _, dir := range ctx.Options.LoadPath {
			loader.AddRoot(dir)
		}
	}
	seen := make(map[string]bool)
	for _, path := range ctx.Paths {
		mods, err := loader.Load(path)
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			continue
		}
		for _, m := range mods {
			if !seen[m.File] {
				seen[m.File] = true
				ctx.Modules = append(ctx.Modules, m)
			}
		}
		if ctx.Logger != nil {
			ctx.Logger.Printf("loaded %d modules from %s", len(mods), path)
		}
	}
	return ctx
}
