// Package modules finds and decodes syntax tree dumps: single files,
// directories of dumps, and txtar bundles holding several dumps.
package modules

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/txtar"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/config"
)

// Loader handles loading modules and resolving imports by dotted name.
type Loader struct {
	LoadPath      []string               // Roots searched for imported modules
	LoadedModules map[string]*ast.Module // Cache of loaded modules by file
	ModulesByName map[string]*ast.Module // Index by dotted module name
}

func NewLoader(loadPath ...string) *Loader {
	l := &Loader{
		LoadedModules: make(map[string]*ast.Module),
		ModulesByName: make(map[string]*ast.Module),
	}
	for _, p := range loadPath {
		l.AddRoot(p)
	}
	return l
}

// AddRoot appends dir to the load path unless it is already there.
func (l *Loader) AddRoot(dir string) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	for _, p := range l.LoadPath {
		if p == abs {
			return
		}
	}
	l.LoadPath = append(l.LoadPath, abs)
}

// IsDumpFile reports whether name has a recognized dump extension.
func IsDumpFile(name string) bool {
	return dumpExt(name) != ""
}

func dumpExt(name string) string {
	for _, ext := range config.DumpFileExtensions {
		if strings.HasSuffix(name, ext) {
			return ext
		}
	}
	return ""
}

// ModuleName derives the dotted module name of a dump at rel, a path
// relative to its root. A package's __init__ dump names the package.
func ModuleName(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, dumpExt(rel))
	parts := strings.Split(rel, "/")
	if len(parts) > 1 && parts[len(parts)-1] == config.PackageInitName {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}

// Load reads a dump file, every dump under a directory, or a bundle.
// Modules come back sorted by file name.
func (l *Loader) Load(path string) ([]*ast.Module, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	switch {
	case info.IsDir():
		l.AddRoot(path)
		return l.loadDir(path)
	case strings.HasSuffix(path, config.BundleFileExt):
		return l.loadBundle(path)
	}
	l.AddRoot(filepath.Dir(path))
	mod, err := l.LoadFile(path, ModuleName(filepath.Base(path)))
	if err != nil {
		return nil, err
	}
	return []*ast.Module{mod}, nil
}

// LoadFile decodes one dump and registers it under name unless the dump
// names itself.
func (l *Loader) LoadFile(path, name string) (*ast.Module, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if mod, ok := l.LoadedModules[absPath]; ok {
		return mod, nil
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	return l.register(data, absPath, name)
}

func (l *Loader) register(data []byte, file, name string) (*ast.Module, error) {
	mod, err := ast.Decode(data, file)
	if err != nil {
		return nil, err
	}
	if mod.Name == "" {
		mod.Name = name
	}
	l.LoadedModules[file] = mod
	if _, exists := l.ModulesByName[mod.Name]; !exists {
		l.ModulesByName[mod.Name] = mod
	}
	return mod, nil
}

// loadDir loads every dump below absPath. Names are relative to absPath.
func (l *Loader) loadDir(dir string) ([]*ast.Module, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	err = filepath.WalkDir(absPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != absPath && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && IsDumpFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Sort for deterministic processing order
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", strings.Join(config.DumpFileExtensions, "/"), absPath)
	}

	var out []*ast.Module
	for _, f := range files {
		rel, err := filepath.Rel(absPath, f)
		if err != nil {
			return nil, err
		}
		mod, err := l.LoadFile(f, ModuleName(rel))
		if err != nil {
			return nil, err
		}
		out = append(out, mod)
	}
	return out, nil
}

// loadBundle loads every dump member of a txtar archive. Member names are
// relative paths; other members are ignored.
func (l *Loader) loadBundle(path string) ([]*ast.Module, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	archive, err := txtar.ParseFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading bundle %s: %w", path, err)
	}
	var out []*ast.Module
	for _, f := range archive.Files {
		if !IsDumpFile(f.Name) {
			continue
		}
		file := absPath + "/" + f.Name
		if mod, ok := l.LoadedModules[file]; ok {
			out = append(out, mod)
			continue
		}
		mod, err := l.register(f.Data, file, ModuleName(f.Name))
		if err != nil {
			return nil, err
		}
		out = append(out, mod)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("bundle %s holds no dumps", path)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}

// LoadModule resolves an import. Modules already loaded are found by name;
// otherwise each root of the load path is searched for a module file or a
// package __init__ dump. It returns nil, nil when nothing matches.
func (l *Loader) LoadModule(name string) (*ast.Module, error) {
	if mod, ok := l.ModulesByName[name]; ok {
		return mod, nil
	}
	rel := filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))
	for _, root := range l.LoadPath {
		for _, ext := range config.DumpFileExtensions {
			for _, candidate := range []string{
				filepath.Join(root, rel+ext),
				filepath.Join(root, rel, config.PackageInitName+ext),
			} {
				if _, err := os.Stat(candidate); err != nil {
					continue
				}
				return l.LoadFile(candidate, name)
			}
		}
	}
	return nil, nil
}
