package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordProcessor struct {
	name  string
	trace *[]string
	fail  bool
}

func (p *recordProcessor) Process(ctx *PipelineContext) *PipelineContext {
	*p.trace = append(*p.trace, p.name)
	if p.fail {
		ctx.Errors = append(ctx.Errors, errors.New(p.name+" failed"))
	}
	return ctx
}

func TestPipelineRunsEveryStage(t *testing.T) {
	var trace []string
	p := New(
		&recordProcessor{name: "load", trace: &trace},
		&recordProcessor{name: "analyze", trace: &trace, fail: true},
		&recordProcessor{name: "export", trace: &trace},
	)
	ctx := p.Run(NewPipelineContext(nil, "a.ast.json"))

	assert.Equal(t, []string{"load", "analyze", "export"}, trace)
	require.True(t, ctx.Failed())
	assert.EqualError(t, ctx.Errors[0], "analyze failed")
}

func TestNewPipelineContextDefaults(t *testing.T) {
	ctx := NewPipelineContext(nil, "x", "y")
	require.NotNil(t, ctx.Options)
	require.NotNil(t, ctx.Logger)
	assert.Equal(t, []string{"x", "y"}, ctx.Paths)
	assert.False(t, ctx.Failed())
}
