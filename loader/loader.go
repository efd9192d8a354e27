// Package loader owns the file boundary of the assembler: reading
// source text from disk and persisting the assembled image. The core
// pipeline never touches files.
package loader

import (
	"os"

	"github.com/pkg/errors"
)

// DefaultOutputName is the image file name used when none is given
const DefaultOutputName = "output.c8"

// ReadSource loads an assembly source file
func ReadSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, errors.Wrapf(err, "reading source file %s", path)
	}
	return data, nil
}

// WriteImage persists the assembled program image
func WriteImage(path string, image []byte) error {
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return errors.Wrapf(err, "writing image file %s", path)
	}
	return nil
}
