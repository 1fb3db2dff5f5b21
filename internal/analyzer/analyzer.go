// Package analyzer runs whole-program, flow-sensitive type inference over
// decoded syntax trees. Functions are analyzed per call with the argument
// types seen at the call site; results are cached per argument tuple.
package analyzer

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/config"
	"github.com/funvibe/funsonar/internal/diagnostics"
	"github.com/funvibe/funsonar/internal/state"
	"github.com/funvibe/funsonar/internal/typesystem"
)

// ModuleLoader finds the syntax tree of an imported module by dotted name.
// It returns nil, nil when no such module exists.
type ModuleLoader interface {
	LoadModule(name string) (*ast.Module, error)
}

// Analyzer is one analysis session. Every type, scope and binding it
// creates belongs to the session; nothing is shared between sessions.
type Analyzer struct {
	ID          uuid.UUID
	Options     *config.Options
	Index       *binding.Index
	Diagnostics *diagnostics.List

	arena    *state.Arena
	u        *typesystem.Universe
	global   *state.State
	builtins *builtinTable
	loader   ModuleLoader
	log      *log.Logger

	calls       callStack
	uncalled    *set.Set[*ast.FunctionDef]
	uncalledFns map[*ast.FunctionDef]*typesystem.Func
	queue       []*ast.FunctionDef
	calledDefs  *set.Set[*ast.FunctionDef]

	modules   map[string]*typesystem.Module // by file
	byName    map[string]*typesystem.Module
	pending   map[string]*ast.Module
	modBinds  map[*typesystem.Module]*binding.Binding
	importing *set.Set[string]
	files     []string

	cursor  ast.Pos
	names   int
	applied int
	swept   int
	started time.Time
	elapsed time.Duration
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLoader sets the resolver used for imports of modules that were not
// passed to Analyze directly.
func WithLoader(l ModuleLoader) Option {
	return func(a *Analyzer) { a.loader = l }
}

// WithLogger sets the progress logger. Logging is discarded by default.
func WithLogger(l *log.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates a session with the builtin module installed.
func New(opts *config.Options, options ...Option) *Analyzer {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	a := &Analyzer{
		Options:     opts,
		Index:       binding.NewIndex(),
		Diagnostics: diagnostics.NewList(),
		log:         log.New(io.Discard, "", 0),
		uncalled:    set.New[*ast.FunctionDef](16),
		uncalledFns: make(map[*ast.FunctionDef]*typesystem.Func),
		calledDefs:  set.New[*ast.FunctionDef](16),
		modules:     make(map[string]*typesystem.Module),
		byName:      make(map[string]*typesystem.Module),
		pending:     make(map[string]*ast.Module),
		modBinds:    make(map[*typesystem.Module]*binding.Binding),
		importing:   set.New[string](4),
	}
	if config.IsTestMode {
		a.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("funsonar"))
	} else {
		a.ID = uuid.New()
	}
	for _, o := range options {
		o(a)
	}
	a.arena = state.NewArena(a.Index)
	a.u = a.arena.Universe()
	a.u.Debug = opts.DebugTypes
	a.global = a.arena.New(nil, state.Global)
	a.installBuiltins()
	return a
}

// Universe is the session's type universe.
func (a *Analyzer) Universe() *typesystem.Universe { return a.u }

// Global is the outermost scope, holding the builtins.
func (a *Analyzer) Global() *state.State { return a.global }

// Arena resolves table handles held by class, instance and module types.
func (a *Analyzer) Arena() *state.Arena { return a.arena }

// Module returns the loaded module for file, or nil.
func (a *Analyzer) Module(file string) *typesystem.Module { return a.modules[file] }

// ModuleState returns the top-level scope of a loaded file, or nil.
func (a *Analyzer) ModuleState(file string) *state.State {
	if m := a.modules[file]; m != nil {
		return a.arena.Get(m.Table)
	}
	return nil
}

// Files lists loaded files in load order.
func (a *Analyzer) Files() []string { return a.files }

// TypeString prints t with the session's printer settings.
func (a *Analyzer) TypeString(t typesystem.Type) string { return a.u.Print(t) }

// Analyze loads every module, then analyzes functions that were never
// called. It returns the fatal diagnostic that stopped the run, if any.
// Warnings are collected in Diagnostics.
func (a *Analyzer) Analyze(mods ...*ast.Module) error {
	a.started = time.Now()
	defer func() { a.elapsed = time.Since(a.started) }()
	for _, m := range mods {
		a.pending[moduleName(m)] = m
	}
	for _, m := range mods {
		if err := a.AnalyzeModule(m); err != nil {
			return err
		}
	}
	return a.Finish()
}

// AnalyzeModule loads one module into the session.
func (a *Analyzer) AnalyzeModule(m *ast.Module) (err error) {
	defer a.boundary(&err)
	a.loadModule(m)
	return nil
}

// Finish applies every function that no call reached, with unknown
// arguments, and reports unused variables when enabled.
func (a *Analyzer) Finish() (err error) {
	defer a.boundary(&err)
	a.applyUncalled()
	if a.Options.ReportUnused {
		a.reportUnused()
	}
	a.log.Printf("[%s] analyzed %d files, %d bindings, %d references", a.shortID(), len(a.files), len(a.Index.Bindings()), len(a.Index.References()))
	return nil
}

// boundary turns a fatal abort into a returned error.
func (a *Analyzer) boundary(err *error) {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case diagnostics.Abort:
		a.Diagnostics.Add(v.Err)
		*err = v.Err
	case *typesystem.NarrowingError:
		d := diagnostics.NewError(diagnostics.ErrF001, a.cursor, v.Error())
		a.Diagnostics.Add(d)
		*err = d
	default:
		panic(r)
	}
}

func (a *Analyzer) warn(code diagnostics.ErrorCode, node ast.Node, args ...interface{}) {
	pos := a.cursor
	if node != nil {
		pos = node.GetPos()
	}
	if a.Diagnostics.Add(diagnostics.NewError(code, pos, args...)) {
		a.log.Printf("[%s] %s %s at %s", a.shortID(), code, fmt.Sprintf("%v", args), pos)
	}
}

func (a *Analyzer) fatal(code diagnostics.ErrorCode, node ast.Node, args ...interface{}) {
	diagnostics.Raise(diagnostics.NewError(code, node.GetPos(), args...))
}

func (a *Analyzer) shortID() string {
	return a.ID.String()[:8]
}

// moduleName is the dotted name of m, derived from its file when unset.
func moduleName(m *ast.Module) string {
	if m.Name != "" {
		return m.Name
	}
	base := filepath.Base(m.File)
	for _, ext := range config.DumpFileExtensions {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
