package app

import (
	"os"
	"path/filepath"

	"github.com/ludo-technologies/ccgate/internal/config"
)

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// ResolveReportPath returns path unchanged unless it names a directory, in
// which case the default report file inside it is used
func (h *FileHelper) ResolveReportPath(path string) string {
	if path == "" {
		return config.DefaultReportPath
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, config.DefaultReportPath)
	}
	return path
}
