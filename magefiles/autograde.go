//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Release stubs the solution regions of every notebook under source/ and
// writes the student versions to release/.
func Release() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "autograde-text", "source", "--output-dir", "release")
}

// Validate checks every notebook under source/ against the nbformat schema.
func Validate() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "validate", "source")
}
