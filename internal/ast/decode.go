package ast

import (
	"fmt"
	"math/big"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Decode reads a module dump. The dump is YAML or JSON (JSON is valid YAML)
// with one mapping per node: a "type" key, position keys start, end, line
// and col, and per-kind fields. file names the source the dump came from and
// is used when the dump itself carries no "file" key.
func Decode(data []byte, file string) (mod *Module, err error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", file, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("decoding %s: empty document", file)
	}

	d := &decoder{file: file}
	defer func() {
		if r := recover(); r != nil {
			de, ok := r.(decodeError)
			if !ok {
				panic(r)
			}
			mod, err = nil, fmt.Errorf("decoding %s: %w", file, de.err)
		}
	}()
	return d.module(doc.Content[0]), nil
}

type decodeError struct{ err error }

type decoder struct {
	file    string
	lambdas int
}

func (d *decoder) fail(n *yaml.Node, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	panic(decodeError{fmt.Errorf("line %d: %s", n.Line, msg)})
}

type fields map[string]*yaml.Node

func (d *decoder) mapping(n *yaml.Node) fields {
	if n.Kind != yaml.MappingNode {
		d.fail(n, "expected a node mapping")
	}
	f := make(fields, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		f[n.Content[i].Value] = n.Content[i+1]
	}
	return f
}

func (d *decoder) str(f fields, key string) string {
	if v, ok := f[key]; ok && v.Kind == yaml.ScalarNode {
		return v.Value
	}
	return ""
}

func (d *decoder) num(f fields, key string) int {
	v, ok := f[key]
	if !ok {
		return 0
	}
	i, err := strconv.Atoi(v.Value)
	if err != nil {
		d.fail(v, "%s: %v", key, err)
	}
	return i
}

func (d *decoder) pos(f fields) Pos {
	file := d.str(f, "file")
	if file == "" {
		file = d.file
	}
	return Pos{
		File:  file,
		Start: d.num(f, "start"),
		End:   d.num(f, "end"),
		Line:  d.num(f, "line"),
		Col:   d.num(f, "col"),
	}
}

func (d *decoder) module(n *yaml.Node) *Module {
	f := d.mapping(n)
	if t := d.str(f, "type"); t != "module" {
		d.fail(n, "root node is %q, want module", t)
	}
	if file := d.str(f, "file"); file != "" {
		d.file = file
	}
	return &Module{
		Pos:  d.pos(f),
		Name: d.str(f, "name"),
		Body: d.block(f["body"]),
		Doc:  d.str(f, "doc"),
	}
}

func (d *decoder) block(n *yaml.Node) []Statement {
	if n == nil || n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		d.fail(n, "expected a list of statements")
	}
	out := make([]Statement, 0, len(n.Content))
	for _, c := range n.Content {
		out = append(out, d.stmt(c))
	}
	return out
}

func (d *decoder) exprList(n *yaml.Node) []Expression {
	if n == nil || n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		d.fail(n, "expected a list of expressions")
	}
	out := make([]Expression, 0, len(n.Content))
	for _, c := range n.Content {
		out = append(out, d.expr(c))
	}
	return out
}

func (d *decoder) required(f fields, key string, parent *yaml.Node) Expression {
	v := f[key]
	if v == nil || v.Tag == "!!null" {
		d.fail(parent, "%s node is missing %q", d.str(f, "type"), key)
	}
	return d.expr(v)
}

func (d *decoder) requiredName(f fields, key string, parent *yaml.Node) *Name {
	v := f[key]
	if v == nil || v.Tag == "!!null" {
		d.fail(parent, "%s node is missing %q", d.str(f, "type"), key)
	}
	return d.name(v)
}

func (d *decoder) optExpr(n *yaml.Node) Expression {
	if n == nil || n.Tag == "!!null" {
		return nil
	}
	return d.expr(n)
}

func (d *decoder) name(n *yaml.Node) *Name {
	if n == nil || n.Tag == "!!null" {
		return nil
	}
	nm, ok := d.expr(n).(*Name)
	if !ok {
		d.fail(n, "expected a name node")
	}
	return nm
}

func (d *decoder) names(n *yaml.Node) []*Name {
	if n == nil || n.Tag == "!!null" {
		return nil
	}
	out := make([]*Name, 0, len(n.Content))
	for _, c := range n.Content {
		out = append(out, d.name(c))
	}
	return out
}

func (d *decoder) expr(n *yaml.Node) Expression {
	s := d.stmt(n)
	e, ok := s.(Expression)
	if !ok {
		d.fail(n, "statement used where an expression is expected")
	}
	return e
}

func (d *decoder) stmt(n *yaml.Node) Statement {
	f := d.mapping(n)
	p := d.pos(f)
	switch kind := d.str(f, "type"); kind {
	case "expr":
		return d.required(f, "value", n)
	case "name":
		return &Name{Pos: p, ID: d.str(f, "id")}
	case "attribute":
		return &Attribute{Pos: p, Target: d.required(f, "target", n), Attr: d.requiredName(f, "attr", n)}
	case "call":
		c := &Call{
			Pos:    p,
			Func:   d.required(f, "func", n),
			Args:   d.exprList(f["args"]),
			Star:   d.optExpr(f["star"]),
			KwStar: d.optExpr(f["kwstar"]),
		}
		if kws := f["keywords"]; kws != nil {
			for _, k := range kws.Content {
				kf := d.mapping(k)
				c.Keywords = append(c.Keywords, &Keyword{Pos: d.pos(kf), Arg: d.str(kf, "arg"), Value: d.required(kf, "value", k)})
			}
		}
		return c
	case "function", "lambda":
		fd := &FunctionDef{
			Pos:        p,
			Name:       d.name(f["name"]),
			Params:     d.names(f["params"]),
			Defaults:   d.exprList(f["defaults"]),
			Vararg:     d.name(f["vararg"]),
			Kwarg:      d.name(f["kwarg"]),
			Decorators: d.exprList(f["decorators"]),
			Doc:        d.str(f, "doc"),
		}
		if kind == "lambda" {
			d.lambdas++
			fd.IsLambda = true
			fd.Name = &Name{Pos: p, ID: fmt.Sprintf("lambda%d", d.lambdas)}
			body := d.required(f, "body", n)
			fd.Body = []Statement{&Return{Pos: body.GetPos(), Value: body}}
		} else {
			fd.Body = d.block(f["body"])
		}
		if fd.Name == nil {
			d.fail(n, "function without a name")
		}
		return fd
	case "class":
		cd := &ClassDef{
			Pos:   p,
			Name:  d.name(f["name"]),
			Bases: d.exprList(f["bases"]),
			Body:  d.block(f["body"]),
			Doc:   d.str(f, "doc"),
		}
		if cd.Name == nil {
			d.fail(n, "class without a name")
		}
		return cd
	case "return":
		return &Return{Pos: p, Value: d.optExpr(f["value"])}
	case "assign":
		targets := d.exprList(f["targets"])
		if t := f["target"]; t != nil {
			targets = append(targets, d.expr(t))
		}
		return &Assign{Pos: p, Targets: targets, Value: d.required(f, "value", n)}
	case "augassign":
		return &AugAssign{Pos: p, Target: d.required(f, "target", n), Op: Op(d.str(f, "op")), Value: d.required(f, "value", n)}
	case "if":
		return &If{Pos: p, Test: d.required(f, "test", n), Body: d.block(f["body"]), Orelse: d.block(f["orelse"])}
	case "while":
		return &While{Pos: p, Test: d.required(f, "test", n), Body: d.block(f["body"]), Orelse: d.block(f["orelse"])}
	case "for":
		return &For{Pos: p, Target: d.required(f, "target", n), Iter: d.required(f, "iter", n), Body: d.block(f["body"]), Orelse: d.block(f["orelse"])}
	case "binop", "compare":
		return &BinOp{Pos: p, Op: Op(d.str(f, "op")), Left: d.required(f, "left", n), Right: d.required(f, "right", n)}
	case "boolop":
		return &BoolOp{Pos: p, Op: Op(d.str(f, "op")), Values: d.exprList(f["values"])}
	case "unaryop":
		return &UnaryOp{Pos: p, Op: Op(d.str(f, "op")), Operand: d.required(f, "operand", n)}
	case "subscript":
		return &Subscript{Pos: p, Value: d.required(f, "value", n), Index: d.required(f, "index", n)}
	case "int":
		v, ok := new(big.Int).SetString(d.str(f, "value"), 0)
		if !ok {
			d.fail(n, "bad integer literal %q", d.str(f, "value"))
		}
		return &IntLit{Pos: p, Value: v}
	case "float":
		v, err := strconv.ParseFloat(d.str(f, "value"), 64)
		if err != nil {
			d.fail(n, "bad float literal: %v", err)
		}
		return &FloatLit{Pos: p, Value: v}
	case "str":
		return &StrLit{Pos: p, Value: d.str(f, "value")}
	case "bool":
		return &BoolLit{Pos: p, Value: d.str(f, "value") == "true"}
	case "nil":
		return &NilLit{Pos: p}
	case "list":
		return &ListLit{Pos: p, Elts: d.exprList(f["elts"])}
	case "tuple":
		return &TupleLit{Pos: p, Elts: d.exprList(f["elts"])}
	case "dict":
		return &DictLit{Pos: p, Keys: d.exprList(f["keys"]), Values: d.exprList(f["values"])}
	case "import":
		return &Import{Pos: p, Names: d.aliases(f["names"])}
	case "importfrom":
		return &ImportFrom{Pos: p, Module: d.str(f, "module"), Names: d.aliases(f["names"])}
	case "pass":
		return &Pass{Pos: p}
	case "break":
		return &Break{Pos: p}
	case "continue":
		return &Continue{Pos: p}
	case "raise":
		return &Raise{Pos: p, Exc: d.optExpr(f["exc"])}
	case "try":
		t := &Try{Pos: p, Body: d.block(f["body"]), Orelse: d.block(f["orelse"]), Finally: d.block(f["finally"])}
		if hs := f["handlers"]; hs != nil {
			for _, h := range hs.Content {
				hf := d.mapping(h)
				t.Handlers = append(t.Handlers, &Handler{
					Pos:  d.pos(hf),
					Type: d.optExpr(hf["exc_type"]),
					Name: d.name(hf["name"]),
					Body: d.block(hf["body"]),
				})
			}
		}
		return t
	default:
		d.fail(n, "unknown node type %q", kind)
		return nil
	}
}

// aliases accepts either full alias mappings or bare dotted strings.
func (d *decoder) aliases(n *yaml.Node) []*Alias {
	if n == nil {
		return nil
	}
	var out []*Alias
	for _, c := range n.Content {
		if c.Kind == yaml.ScalarNode {
			p := Pos{File: d.file, Line: c.Line, Col: c.Column}
			out = append(out, &Alias{Pos: p, Name: splitDotted(c.Value, p)})
			continue
		}
		f := d.mapping(c)
		a := &Alias{Pos: d.pos(f), AsName: d.name(f["asname"])}
		if seg := f["name"]; seg != nil && seg.Kind == yaml.ScalarNode {
			a.Name = splitDotted(seg.Value, a.Pos)
		} else {
			a.Name = d.names(seg)
		}
		out = append(out, a)
	}
	return out
}

func splitDotted(s string, p Pos) []*Name {
	var out []*Name
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			out = append(out, &Name{Pos: p, ID: s[start:i]})
			start = i + 1
		}
	}
	return out
}
