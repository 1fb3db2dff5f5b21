// Package export turns the result of a run into a flat snapshot of
// bindings, references and diagnostics, and writes it as JSON, YAML or a
// SQLite database.
package export

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/funsonar/internal/ast"
	"github.com/funvibe/funsonar/internal/binding"
	"github.com/funvibe/funsonar/internal/diagnostics"
	"github.com/funvibe/funsonar/internal/typesystem"
)

// Snapshot is the exported form of one run.
type Snapshot struct {
	RunID       string           `json:"run_id" yaml:"run_id"`
	Created     time.Time        `json:"created" yaml:"created"`
	Files       []string         `json:"files" yaml:"files"`
	Bindings    []BindingInfo    `json:"bindings" yaml:"bindings"`
	References  []ReferenceInfo  `json:"references" yaml:"references"`
	Diagnostics []DiagnosticInfo `json:"diagnostics" yaml:"diagnostics"`
}

// Span locates a node in its file.
type Span struct {
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Line  int    `json:"line" yaml:"line"`
	Col   int    `json:"col" yaml:"col"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

func spanOf(p ast.Pos) Span {
	return Span{File: p.File, Line: p.Line, Col: p.Col, Start: p.Start, End: p.End}
}

// BindingInfo is one definition. Bindings created for the same definition
// by several analyses of its enclosing function are merged; Type is the
// union of their types.
type BindingInfo struct {
	ID      int    `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	QName   string `json:"qname" yaml:"qname"`
	Kind    string `json:"kind" yaml:"kind"`
	Type    string `json:"type" yaml:"type"`
	Span    Span   `json:"span" yaml:"span"`
	Body    Span   `json:"body" yaml:"body"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Builtin bool   `json:"builtin" yaml:"builtin"`
	Refs    int    `json:"refs" yaml:"refs"`
}

// ReferenceInfo is one resolved use site and the bindings it may denote.
type ReferenceInfo struct {
	Name    string `json:"name" yaml:"name"`
	Span    Span   `json:"span" yaml:"span"`
	Targets []int  `json:"targets" yaml:"targets"`
}

type DiagnosticInfo struct {
	Code     string `json:"code" yaml:"code"`
	Severity string `json:"severity" yaml:"severity"`
	Span     Span   `json:"span" yaml:"span"`
	Message  string `json:"message" yaml:"message"`
}

type bindingKey struct {
	file  string
	start int
	qname string
}

// Build flattens a finished run. Builtin bindings are exported only when a
// reference resolves to them.
func Build(runID uuid.UUID, u *typesystem.Universe, ix *binding.Index, diags []*diagnostics.DiagnosticError) *Snapshot {
	snap := &Snapshot{RunID: runID.String(), Created: time.Now().UTC()}

	refs := ix.References()
	referenced := make(map[*binding.Binding]bool)
	for _, r := range refs {
		for _, b := range r.Bindings {
			referenced[b] = true
		}
	}

	ids := make(map[*binding.Binding]int)
	byKey := make(map[bindingKey]int)
	types := make(map[int]typesystem.Type)
	files := make(map[string]bool)
	for _, b := range ix.Bindings() {
		if b.IsBuiltin() && !referenced[b] {
			continue
		}
		k := bindingKey{b.File(), b.Pos.Start, b.QName}
		if id, ok := byKey[k]; ok {
			ids[b] = id
			types[id] = u.Union(types[id], b.Type)
			snap.Bindings[id].Refs += len(b.Refs())
			continue
		}
		id := len(snap.Bindings)
		byKey[k] = id
		ids[b] = id
		types[id] = b.Type
		if b.File() != "" {
			files[b.File()] = true
		}
		snap.Bindings = append(snap.Bindings, BindingInfo{
			ID:      id,
			Name:    b.Name,
			QName:   b.QName,
			Kind:    b.Kind.String(),
			Span:    spanOf(b.Pos),
			Body:    spanOf(b.Body),
			URL:     b.URL,
			Builtin: b.IsBuiltin(),
			Refs:    len(b.Refs()),
		})
	}
	for id, t := range types {
		snap.Bindings[id].Type = u.Print(t)
	}

	for _, r := range refs {
		ri := ReferenceInfo{Name: refName(r.Node), Span: spanOf(r.Node.GetPos())}
		seen := make(map[int]bool)
		for _, b := range r.Bindings {
			id, ok := ids[b]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			ri.Targets = append(ri.Targets, id)
		}
		sort.Ints(ri.Targets)
		snap.References = append(snap.References, ri)
	}

	for _, d := range diags {
		snap.Diagnostics = append(snap.Diagnostics, DiagnosticInfo{
			Code:     string(d.Code),
			Severity: d.Severity.String(),
			Span:     spanOf(d.Pos),
			Message:  d.Message,
		})
	}

	for f := range files {
		snap.Files = append(snap.Files, f)
	}
	sort.Strings(snap.Files)
	return snap
}

func refName(n ast.Node) string {
	switch x := n.(type) {
	case *ast.Name:
		return x.ID
	case *ast.Call:
		if name, ok := x.Func.(*ast.Name); ok {
			return name.ID
		}
		if attr, ok := x.Func.(*ast.Attribute); ok {
			return attr.Attr.ID
		}
	}
	return ""
}
