package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileSource reads content from a JSON or YAML file. The format follows the
// extension; a missing file is an empty catalog.
type FileSource struct {
	path string
}

// NewFileSource creates a source for path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// List reads and decodes the file on every call
func (f *FileSource) List(ctx context.Context) ([]Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Content{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	var items []Content
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &items)
	default:
		err = json.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	if items == nil {
		items = []Content{}
	}
	return items, nil
}
