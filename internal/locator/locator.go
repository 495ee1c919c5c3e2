// Package locator resolves the configured ZAP report inside a project directory.
package locator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// ResourceUnavailableError means the report could not be opened. Callers treat it as "no report yet".
type ResourceUnavailableError struct {
	Path string
	Err  error
}

func (e *ResourceUnavailableError) Error() string {
	return fmt.Sprintf("report %q is not available: %v", e.Path, e.Err)
}

func (e *ResourceUnavailableError) Unwrap() error {
	return e.Err
}

// FileLocator opens a report file relative to a project directory.
type FileLocator struct {
	BaseDir string
	Path    string
	logger  hclog.Logger
}

// NewFileLocator creates a FileLocator. A nil logger discards output.
func NewFileLocator(baseDir, path string, logger hclog.Logger) *FileLocator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FileLocator{BaseDir: baseDir, Path: path, logger: logger}
}

// ExpandPath resolves paths that include a tilde (~) to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/")), nil
	}
	return path, nil
}

// Resolve returns the cleaned report path; relative paths are joined to BaseDir.
func (l *FileLocator) Resolve() (string, error) {
	if strings.TrimSpace(l.Path) == "" {
		return "", fmt.Errorf("report path is empty")
	}

	path, err := ExpandPath(l.Path)
	if err != nil {
		return "", fmt.Errorf("failed to expand report path %q: %w", l.Path, err)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	baseDir, err := ExpandPath(l.BaseDir)
	if err != nil {
		return "", fmt.Errorf("failed to expand project directory %q: %w", l.BaseDir, err)
	}
	return filepath.Join(baseDir, path), nil
}

// Locate opens the report. A missing or unreadable file is returned as *ResourceUnavailableError;
// a path that exists but is not a regular file is a configuration error.
func (l *FileLocator) Locate() (io.ReadCloser, error) {
	path, err := l.Resolve()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		l.logger.Debug("report file not found", "path", path, "error", err)
		return nil, &ResourceUnavailableError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, fmt.Errorf("report path %q is a directory, not a file", path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("report path %q is not a regular file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		l.logger.Warn("report file cannot be opened", "path", path, "error", err)
		return nil, &ResourceUnavailableError{Path: path, Err: err}
	}
	l.logger.Debug("report file located", "path", path, "size", info.Size())
	return file, nil
}
