package ast

import (
	"strings"
	"testing"
)

const sampleDump = `
type: module
name: sample
file: sample.py
body:
  - type: assign
    targets: [{type: name, id: x, start: 0, end: 1, line: 1, col: 1}]
    value: {type: int, value: "123456789012345678901234567890", start: 4, end: 34, line: 1, col: 5}
  - type: function
    name: {type: name, id: f, start: 40, end: 41, line: 2, col: 5}
    params:
      - {type: name, id: n, line: 2, col: 7}
    defaults:
      - {type: int, value: 0}
    body:
      - type: return
        value:
          type: compare
          op: "<"
          left: {type: name, id: n}
          right: {type: float, value: "2.5"}
  - type: expr
    value:
      type: call
      func: {type: lambda, body: {type: nil}}
      keywords:
        - {arg: k, value: {type: str, value: hi}}
  - type: importfrom
    module: pkg.util
    names: ["helper", {name: other, asname: {type: name, id: o}}]
`

func TestDecodeModule(t *testing.T) {
	mod, err := Decode([]byte(sampleDump), "ignored.py")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mod.Name != "sample" || mod.File != "sample.py" {
		t.Errorf("module = %q in %q", mod.Name, mod.File)
	}
	if len(mod.Body) != 4 {
		t.Fatalf("got %d statements, want 4", len(mod.Body))
	}

	assign, ok := mod.Body[0].(*Assign)
	if !ok {
		t.Fatalf("statement 0 is %T", mod.Body[0])
	}
	lit := assign.Value.(*IntLit)
	if lit.Value.String() != "123456789012345678901234567890" {
		t.Errorf("big literal decoded as %s", lit.Value)
	}
	if target := assign.Targets[0].(*Name); target.File != "sample.py" || target.Line != 1 || target.End != 1 {
		t.Errorf("target position = %+v", target.Pos)
	}

	fn := mod.Body[1].(*FunctionDef)
	if fn.Name.ID != "f" || len(fn.Params) != 1 || len(fn.Defaults) != 1 {
		t.Errorf("function decoded as %+v", fn)
	}
	cmp := fn.Body[0].(*Return).Value.(*BinOp)
	if cmp.Op != OpLt || !cmp.Op.IsComparison() {
		t.Errorf("compare op = %q", cmp.Op)
	}

	call := mod.Body[2].(*Call)
	lambda := call.Func.(*FunctionDef)
	if !lambda.IsLambda || lambda.Name.ID != "lambda1" {
		t.Errorf("lambda decoded as %+v", lambda)
	}
	if call.Keywords[0].Arg != "k" {
		t.Errorf("keyword = %+v", call.Keywords[0])
	}

	from := mod.Body[3].(*ImportFrom)
	if from.Module != "pkg.util" || len(from.Names) != 2 {
		t.Fatalf("import from = %+v", from)
	}
	if from.Names[0].Dotted() != "helper" || from.Names[1].AsName.ID != "o" {
		t.Errorf("aliases = %s, %+v", from.Names[0].Dotted(), from.Names[1].AsName)
	}
}

func TestDecodeJSON(t *testing.T) {
	src := `{"type": "module", "name": "j", "body": [
		{"type": "expr", "value": {"type": "name", "id": "y", "start": 3, "end": 4}}
	]}`
	mod, err := Decode([]byte(src), "j.py")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	n := mod.Body[0].(*Name)
	if n.ID != "y" || n.File != "j.py" || n.Start != 3 {
		t.Errorf("name = %+v", n)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown kind", "type: module\nbody:\n  - type: goto\n", `unknown node type "goto"`},
		{"wrong root", "type: name\nid: x\n", "root node"},
		{"bad int", "type: module\nbody:\n  - {type: int, value: abc}\n", "bad integer literal"},
		{"statement as expression", "type: module\nbody:\n  - {type: return, value: {type: pass}}\n", "statement used where"},
		{"assign without value", "type: module\nbody:\n  - type: assign\n    targets: [{type: name, id: x}]\n", `assign node is missing "value"`},
		{"attribute without attr", "type: module\nbody:\n  - {type: expr, value: {type: attribute, target: {type: name, id: o}}}\n", `attribute node is missing "attr"`},
		{"null operand", "type: module\nbody:\n  - {type: expr, value: {type: unaryop, op: not, operand: null}}\n", `unaryop node is missing "operand"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.src), "bad.py")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestInspectVisitsNames(t *testing.T) {
	mod, err := Decode([]byte(sampleDump), "sample.py")
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	Inspect(mod, func(n Node) bool {
		if nm, ok := n.(*Name); ok {
			ids = append(ids, nm.ID)
		}
		return true
	})
	got := strings.Join(ids, ",")
	want := "x,f,n,n,lambda1,helper,other,o"
	if got != want {
		t.Errorf("names visited = %s, want %s", got, want)
	}
}
