package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/funvibe/funsonar/internal/config"
)

// TestFunctional runs every bundle under testdata through the command and
// compares its output with the bundle's "want" member. File names in the
// output are made relative to the bundle.
func TestFunctional(t *testing.T) {
	config.IsTestMode = true
	defer func() { config.IsTestMode = false }()

	bundles, err := filepath.Glob(filepath.Join("testdata", "*"+config.BundleFileExt))
	if err != nil {
		t.Fatalf("listing testdata: %v", err)
	}
	if len(bundles) == 0 {
		t.Skip("no bundles in testdata")
	}

	for _, bundle := range bundles {
		name := strings.TrimSuffix(filepath.Base(bundle), config.BundleFileExt)
		t.Run(name, func(t *testing.T) {
			absPath, err := filepath.Abs(bundle)
			if err != nil {
				t.Fatalf("Failed to get absolute path: %v", err)
			}
			archive, err := txtar.ParseFile(absPath)
			if err != nil {
				t.Fatalf("reading %s: %v", bundle, err)
			}
			var want string
			for _, f := range archive.Files {
				if f.Name == "want" {
					want = strings.TrimSpace(string(f.Data))
				}
			}

			stdout, err := os.CreateTemp(t.TempDir(), "stdout")
			if err != nil {
				t.Fatal(err)
			}
			defer stdout.Close()
			run([]string{absPath}, stdout, os.Stderr)

			data, err := os.ReadFile(stdout.Name())
			if err != nil {
				t.Fatal(err)
			}
			got := strings.ReplaceAll(strings.TrimSpace(string(data)), absPath+"/", "")
			if got != want {
				t.Errorf("output mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
			}
		})
	}
}
