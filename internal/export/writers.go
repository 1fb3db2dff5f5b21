package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteJSON writes the snapshot as indented JSON.
func WriteJSON(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// WriteYAML writes the snapshot as a YAML document.
func WriteYAML(w io.Writer, snap *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return err
	}
	return enc.Close()
}

// WriteFile writes snap to path in the named format.
func WriteFile(format, path string, snap *Snapshot) error {
	if format == "sqlite" {
		return WriteSQLite(path, snap)
	}
	var write func(io.Writer, *Snapshot) error
	switch format {
	case "json":
		write = WriteJSON
	case "yaml":
		write = WriteYAML
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
