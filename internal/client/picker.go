package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// PathPicker selects a file from the local filesystem. An empty Path means
// nothing has been selected.
type PathPicker struct {
	Path string
}

func (p PathPicker) Selected(_ context.Context) (SelectedFile, bool, error) {
	if p.Path == "" {
		return SelectedFile{}, false, nil
	}
	f, err := os.Open(p.Path)
	if err != nil {
		return SelectedFile{}, false, fmt.Errorf("open %s: %w", p.Path, err)
	}
	return SelectedFile{Name: filepath.Base(p.Path), Content: f}, true, nil
}
