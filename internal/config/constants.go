package config

// Recognized AST dump extensions, checked in this order.
var DumpFileExtensions = []string{".ast.json", ".ast.yaml", ".ast.yml"}

// BundleFileExt marks a txtar archive holding several dumps.
const BundleFileExt = ".txtar"

// Config file names looked up by FindOptions, in order.
var ConfigFileNames = []string{"funsonar.yaml", "funsonar.yml"}

// IsTestMode indicates if the program is running under tests.
// Set once at startup; it makes the session ID deterministic.
var IsTestMode = false

// Receiver and constructor names.
const (
	SelfName        = "self"
	InitMethodName  = "__init__"
	InitializerName = "initialize"
	PackageInitName = "__init__"
)

// Decorators that make a method class-level.
const (
	StaticMethodDecorator = "staticmethod"
	ClassMethodDecorator  = "classmethod"
)

// BuiltinsModuleName is the module holding builtin functions and classes.
const BuiltinsModuleName = "builtins"

// DefaultDocsURL is the base of builtin documentation links.
const DefaultDocsURL = "https://docs.python.org/3/library/"

// DefaultMaxCallDepth caps how often one callee may be re-entered on the call stack.
const DefaultMaxCallDepth = 8
