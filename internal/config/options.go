package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options controls one analysis run. It is read from funsonar.yaml.
type Options struct {
	// DebugTypes prints interval bounds and literal values in type strings.
	DebugTypes bool `yaml:"debug_types,omitempty"`

	// ReportUnused reports local variables that are never read.
	ReportUnused bool `yaml:"report_unused,omitempty"`

	// MaxCallDepth bounds re-entry of one callee during a call chain.
	MaxCallDepth int `yaml:"max_call_depth,omitempty"`

	// LoadPath lists extra directories searched for imported modules.
	// Relative entries are resolved against the config file's directory.
	LoadPath []string `yaml:"load_path,omitempty"`

	// DocsURL is the base of documentation links for builtins.
	DocsURL string `yaml:"docs_url,omitempty"`

	// Export lists the outputs written after analysis.
	Export []ExportSpec `yaml:"export,omitempty"`
}

// ExportSpec names one output file.
type ExportSpec struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

var exportFormats = []string{"json", "yaml", "sqlite"}

// DefaultOptions are used when no config file exists.
func DefaultOptions() *Options {
	o := &Options{}
	o.setDefaults()
	return o
}

// LoadOptions reads and validates a config file.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseOptions(data, path)
}

// ParseOptions parses config data. path is used for messages and to resolve
// relative paths.
func ParseOptions(data []byte, path string) (*Options, error) {
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := o.validate(path); err != nil {
		return nil, err
	}
	o.setDefaults()

	dir := filepath.Dir(path)
	for i, p := range o.LoadPath {
		if !filepath.IsAbs(p) {
			o.LoadPath[i] = filepath.Join(dir, p)
		}
	}
	for i, e := range o.Export {
		if !filepath.IsAbs(e.Path) {
			o.Export[i].Path = filepath.Join(dir, e.Path)
		}
	}
	return &o, nil
}

// FindOptions searches dir and its parents for a config file. It returns an
// empty path and no error when none exists.
func FindOptions(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (o *Options) validate(path string) error {
	if o.MaxCallDepth < 0 {
		return fmt.Errorf("%s: max_call_depth must not be negative", path)
	}
	for i, e := range o.Export {
		if e.Path == "" {
			return fmt.Errorf("%s: export[%d]: path is required", path, i)
		}
		if !validFormat(e.Format) {
			return fmt.Errorf("%s: export[%d]: unknown format %q (want one of %s)",
				path, i, e.Format, strings.Join(exportFormats, ", "))
		}
	}
	return nil
}

func validFormat(f string) bool {
	for _, known := range exportFormats {
		if f == known {
			return true
		}
	}
	return false
}

func (o *Options) setDefaults() {
	if o.MaxCallDepth == 0 {
		o.MaxCallDepth = DefaultMaxCallDepth
	}
	if o.DocsURL == "" {
		o.DocsURL = DefaultDocsURL
	}
	if !strings.HasSuffix(o.DocsURL, "/") {
		o.DocsURL += "/"
	}
}

// FormatFromPath guesses an export format from a file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	}
	return ""
}
