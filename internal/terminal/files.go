package terminal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/straye-as/toolshelf/internal/form"
)

// ReadFile loads a file from disk for a form slot. The content type is
// detected from the file's bytes.
func ReadFile(path string) (form.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return form.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return form.File{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}
