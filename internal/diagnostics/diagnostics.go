// Package diagnostics defines the problems reported while analyzing a program.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/funvibe/funsonar/internal/ast"
)

type Severity int

const (
	// Warning is recoverable: the offending expression evaluates to Unknown.
	Warning Severity = iota
	// Fatal aborts the run.
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "FATAL"
	}
	return "WARNING"
}

type ErrorCode string

const (
	ErrW001 ErrorCode = "W001" // not callable
	ErrW002 ErrorCode = "W002" // arity
	ErrW003 ErrorCode = "W003" // unbound name
	ErrW004 ErrorCode = "W004" // missing attribute
	ErrW005 ErrorCode = "W005" // attribute set on unsupported target
	ErrW006 ErrorCode = "W006" // missing return
	ErrW007 ErrorCode = "W007" // module not found
	ErrW008 ErrorCode = "W008" // destructuring size
	ErrW009 ErrorCode = "W009" // multiple inheritance
	ErrW010 ErrorCode = "W010" // unused variable
	ErrW011 ErrorCode = "W011" // infeasible branch
	ErrF001 ErrorCode = "F001" // internal invariant
	ErrF002 ErrorCode = "F002" // unsupported node
)

var templates = map[ErrorCode]string{
	ErrW001: "calling non-callable value of type %s",
	ErrW002: "wrong number of arguments for %s: %s",
	ErrW003: "unbound variable %s",
	ErrW004: "attribute %s not found in type %s",
	ErrW005: "cannot set attribute %s on value of type %s",
	ErrW006: "function %s does not always return a value",
	ErrW007: "module not found: %s",
	ErrW008: "cannot unpack %d values into %d targets",
	ErrW009: "class %s: multiple inheritance is not supported, using %s",
	ErrW010: "unused variable %s",
	ErrW011: "condition can never be %s",
	ErrF001: "%s",
	ErrF002: "unsupported node %T",
}

// Severity derives the severity from the code prefix.
func (c ErrorCode) Severity() Severity {
	if len(c) > 0 && c[0] == 'F' {
		return Fatal
	}
	return Warning
}

// DiagnosticError is one reported problem bound to a source span.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Pos      ast.Pos
	Message  string
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: %s[%s]: %s", e.Pos, e.Severity, e.Code, e.Message)
}

// NewError formats the message template of code with args.
func NewError(code ErrorCode, pos ast.Pos, args ...interface{}) *DiagnosticError {
	msg := string(code)
	if tmpl, ok := templates[code]; ok {
		msg = fmt.Sprintf(tmpl, args...)
	}
	return &DiagnosticError{Code: code, Severity: code.Severity(), Pos: pos, Message: msg}
}

// List collects diagnostics, deduplicated by file, line, column and code.
type List struct {
	set map[string]*DiagnosticError
}

func NewList() *List {
	return &List{set: make(map[string]*DiagnosticError)}
}

// Add records err unless an error with the same key exists. It reports
// whether err was new.
func (l *List) Add(err *DiagnosticError) bool {
	key := fmt.Sprintf("%s:%d:%d:%s", err.Pos.File, err.Pos.Line, err.Pos.Col, err.Code)
	if _, ok := l.set[key]; ok {
		return false
	}
	l.set[key] = err
	return true
}

func (l *List) Len() int { return len(l.set) }

// All returns the diagnostics sorted by file, line and column.
func (l *List) All() []*DiagnosticError {
	result := make([]*DiagnosticError, 0, len(l.set))
	for _, err := range l.set {
		result = append(result, err)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Pos, result[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return result[i].Code < result[j].Code
	})
	return result
}

// ForFile returns the sorted diagnostics reported in file.
func (l *List) ForFile(file string) []*DiagnosticError {
	var out []*DiagnosticError
	for _, err := range l.All() {
		if err.Pos.File == file {
			out = append(out, err)
		}
	}
	return out
}

// HasFatal reports whether any recorded diagnostic aborted the run.
func (l *List) HasFatal() bool {
	for _, err := range l.set {
		if err.Severity == Fatal {
			return true
		}
	}
	return false
}
