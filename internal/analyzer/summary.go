package analyzer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/diagnostics"
)

// Summary holds the counters reported at the end of a run.
type Summary struct {
	Files       int
	Bindings    int
	References  int
	Names       int
	Unresolved  int
	Calls       int
	Uncalled    int
	Rejected    int
	Warnings    int
	Fatal       bool
	Elapsed     time.Duration
	ScopeNodes  int
	BindingKind map[string]int
}

// Summary collects the counters of the run so far.
func (a *Analyzer) Summary() Summary {
	s := Summary{
		Files:       len(a.files),
		Bindings:    len(a.Index.Bindings()),
		References:  len(a.Index.References()),
		Names:       a.names,
		Calls:       a.applied,
		Uncalled:    a.swept,
		Rejected:    a.Index.Rejected(),
		Elapsed:     a.elapsed,
		ScopeNodes:  a.arena.Len(),
		BindingKind: make(map[string]int),
	}
	for _, d := range a.Diagnostics.All() {
		switch {
		case d.Severity == diagnostics.Fatal:
			s.Fatal = true
		case d.Code == diagnostics.ErrW003:
			s.Unresolved++
			s.Warnings++
		default:
			s.Warnings++
		}
	}
	for _, b := range a.Index.Bindings() {
		if !b.IsBuiltin() {
			s.BindingKind[b.Kind.String()]++
		}
	}
	return s
}

func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "files: %d\n", s.Files)
	fmt.Fprintf(&sb, "bindings: %d\n", s.Bindings)
	kinds := make([]string, 0, len(s.BindingKind))
	for k := range s.BindingKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&sb, "  %s: %d\n", strings.ToLower(k), s.BindingKind[k])
	}
	fmt.Fprintf(&sb, "references: %d of %d names resolved, %d unresolved\n", s.References, s.Names, s.Unresolved)
	fmt.Fprintf(&sb, "calls analyzed: %d (%d never called)\n", s.Calls, s.Uncalled)
	fmt.Fprintf(&sb, "warnings: %d\n", s.Warnings)
	fmt.Fprintf(&sb, "time: %s\n", s.Elapsed.Round(time.Millisecond))
	return sb.String()
}

// reportUnused warns about variables no reference resolved to. A definition
// analyzed several times yields one binding per analysis; it counts as used
// when any of them has references.
func (a *Analyzer) reportUnused() {
	type site struct {
		file  string
		start int
	}
	used := make(map[site]bool)
	var order []*binding.Binding
	seen := make(map[site]bool)
	for _, b := range a.Index.Bindings() {
		if b.Kind != binding.Variable || b.IsBuiltin() || strings.HasPrefix(b.Name, "_") {
			continue
		}
		k := site{b.File(), b.Pos.Start}
		if len(b.Refs()) > 0 {
			used[k] = true
		}
		if !seen[k] {
			seen[k] = true
			order = append(order, b)
		}
	}
	for _, b := range order {
		if !used[site{b.File(), b.Pos.Start}] {
			a.warn(diagnostics.ErrW010, b.Node, b.Name)
		}
	}
}
