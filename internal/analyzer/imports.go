package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/config"
	"github.com/funvibe/funsonar/internal/diagnostics"
	"github.com/funvibe/funsonar/internal/state"
	"github.com/funvibe/funsonar/internal/typesystem"
)

// loadModule analyzes a module's top level once. A module that is imported
// while it is still loading is returned half-built.
func (a *Analyzer) loadModule(m *ast.Module) *typesystem.Module {
	name := moduleName(m)
	if mt, ok := a.modules[m.File]; ok {
		return mt
	}
	ms := a.arena.New(a.global, state.Module)
	ms.Path = a.global.ExtendPath(name)
	mt := &typesystem.Module{Name: name, File: m.File, QName: ms.Path, Table: ms.Ref()}
	ms.Type = mt
	a.modules[m.File] = mt
	a.byName[name] = mt
	delete(a.pending, name)

	b := binding.New(name, m, mt, binding.Module)
	b.QName = mt.QName
	a.Index.Register(b)
	a.modBinds[mt] = b

	a.files = append(a.files, m.File)
	a.names += countNames(m)
	a.log.Printf("[%s] loading %s (%s)", a.shortID(), name, m.File)

	a.importing.Insert(name)
	defer a.importing.Remove(name)
	a.block(m.Body, ms)
	return mt
}

func countNames(m *ast.Module) int {
	n := 0
	ast.Inspect(m, func(node ast.Node) bool {
		if _, ok := node.(*ast.Name); ok {
			n++
		}
		return true
	})
	return n
}

// resolveModule returns the module with the dotted name, loading it if
// needed. Intermediate packages without a file become empty namespaces.
func (a *Analyzer) resolveModule(name string, node ast.Node) *typesystem.Module {
	if mt, ok := a.byName[name]; ok {
		if a.importing.Contains(name) {
			a.log.Printf("[%s] import cycle through %s", a.shortID(), name)
		}
		return mt
	}
	if m, ok := a.pending[name]; ok {
		return a.loadModule(m)
	}
	if a.loader != nil {
		m, err := a.loader.LoadModule(name)
		if err != nil {
			a.log.Printf("[%s] loading %s: %v", a.shortID(), name, err)
		}
		if m != nil {
			if m.Name == "" {
				m.Name = name
			}
			return a.loadModule(m)
		}
	}
	return nil
}

func (a *Analyzer) namespace(name string) *typesystem.Module {
	if mt, ok := a.byName[name]; ok {
		return mt
	}
	ms := a.arena.New(a.global, state.Module)
	ms.Path = name
	mt := &typesystem.Module{Name: name, QName: name, Table: ms.Ref()}
	ms.Type = mt
	a.byName[name] = mt
	return mt
}

// importPath resolves each prefix of a dotted import, linking every module
// into its parent's table. It returns the modules along the path; the last
// is nil when the full path is not found.
func (a *Analyzer) importPath(alias *ast.Alias) []*typesystem.Module {
	var out []*typesystem.Module
	var prefix []string
	for i, seg := range alias.Name {
		prefix = append(prefix, seg.ID)
		dotted := strings.Join(prefix, ".")
		mt := a.resolveModule(dotted, seg)
		if mt == nil {
			if i == len(alias.Name)-1 {
				a.warn(diagnostics.ErrW007, seg, dotted)
				return append(out, nil)
			}
			mt = a.namespace(dotted)
		}
		if b := a.modBinds[mt]; b != nil {
			a.Index.PutRef(seg, []*binding.Binding{b})
		}
		if i > 0 && out[i-1] != nil {
			parent := a.arena.Get(out[i-1].Table)
			if len(parent.LookupLocal(seg.ID)) == 0 {
				parent.Insert(seg.ID, seg, mt, binding.Module)
			}
		}
		out = append(out, mt)
	}
	return out
}

// importStmt binds `import a.b` as a, and `import a.b as c` as c.
func (a *Analyzer) importStmt(n *ast.Import, s *state.State) {
	for _, alias := range n.Names {
		path := a.importPath(alias)
		if len(path) == 0 {
			continue
		}
		if alias.AsName != nil {
			var t typesystem.Type = a.u.Unknown
			if last := path[len(path)-1]; last != nil {
				t = last
			}
			s.Insert(alias.AsName.ID, alias.AsName, t, binding.Variable)
			continue
		}
		var t typesystem.Type = a.u.Unknown
		if path[0] != nil {
			t = path[0]
		}
		s.Insert(alias.Name[0].ID, alias.Name[0], t, binding.Variable)
	}
}

// importFrom binds names from a module. The imported names share the
// module's bindings so their references resolve to the original definitions.
func (a *Analyzer) importFrom(n *ast.ImportFrom, s *state.State) {
	module := a.absoluteModule(n.Module, a.moduleOf(s))
	mt := a.resolveModule(module, n)
	if mt == nil {
		a.warn(diagnostics.ErrW007, n, module)
		for _, alias := range n.Names {
			if name := boundName(alias); name != nil && name.ID != "*" {
				s.Insert(name.ID, name, a.u.Unknown, binding.Variable)
			}
		}
		return
	}
	ms := a.arena.Get(mt.Table)
	for _, alias := range n.Names {
		if len(alias.Name) == 1 && alias.Name[0].ID == "*" {
			for _, name := range ms.Names() {
				if !strings.HasPrefix(name, "_") {
					s.UpdateAll(name, ms.LookupLocal(name))
				}
			}
			continue
		}
		id := alias.Dotted()
		bs := ms.LookupLocal(id)
		if len(bs) == 0 {
			if sub := a.resolveModule(module+"."+id, alias); sub != nil {
				bs = []*binding.Binding{ms.Insert(id, alias.Name[0], sub, binding.Module)}
			}
		}
		target := boundName(alias)
		if len(bs) == 0 {
			a.warn(diagnostics.ErrW004, alias, id, a.u.Print(mt))
			s.Insert(target.ID, target, a.u.Unknown, binding.Variable)
			continue
		}
		a.Index.PutRef(alias.Name[0], bs)
		s.UpdateAll(target.ID, bs)
	}
}

// moduleOf is the module whose top level encloses s, or nil for the
// global scope.
func (a *Analyzer) moduleOf(s *state.State) *typesystem.Module {
	for ; s != nil; s = s.Parent {
		if s.Kind == state.Module {
			return typesystem.MustModule(s.Type)
		}
	}
	return nil
}

// absoluteModule resolves a relative module name such as ".util" or
// "..common" against the package of the importing module. Absolute names
// are returned unchanged.
func (a *Analyzer) absoluteModule(module string, from *typesystem.Module) string {
	dots := len(module) - len(strings.TrimLeft(module, "."))
	if dots == 0 {
		return module
	}
	var pkg []string
	if from != nil {
		pkg = strings.Split(from.Name, ".")
		if !isPackageInit(from.File) {
			pkg = pkg[:len(pkg)-1]
		}
	}
	if up := dots - 1; up <= len(pkg) {
		pkg = pkg[:len(pkg)-up]
	} else {
		pkg = nil
	}
	if rest := module[dots:]; rest != "" {
		pkg = append(pkg, rest)
	}
	return strings.Join(pkg, ".")
}

func isPackageInit(file string) bool {
	base := filepath.Base(file)
	for _, ext := range config.DumpFileExtensions {
		if base == config.PackageInitName+ext {
			return true
		}
	}
	return false
}

func boundName(alias *ast.Alias) *ast.Name {
	if alias.AsName != nil {
		return alias.AsName
	}
	if len(alias.Name) == 0 {
		return nil
	}
	return alias.Name[len(alias.Name)-1]
}
