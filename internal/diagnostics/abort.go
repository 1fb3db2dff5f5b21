package diagnostics

// Abort is the panic value that unwinds a run on a fatal diagnostic.
type Abort struct {
	Err *DiagnosticError
}

// Raise panics with an Abort carrying err.
func Raise(err *DiagnosticError) {
	panic(Abort{Err: err})
}
