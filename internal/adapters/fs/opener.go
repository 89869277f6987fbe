// Package fs provides filesystem adapters for the dispatcher.
package fs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// AppendOpener implements ports.FileOpener on the local filesystem.
type AppendOpener struct {
	// Mode is used when the file is created. Defaults to 0o644.
	Mode os.FileMode
}

// NewAppendOpener creates an AppendOpener with default permissions.
func NewAppendOpener() *AppendOpener {
	return &AppendOpener{Mode: 0o644}
}

// OpenAppend opens path for appending, creating the file and its parent
// directory if needed.
func (o *AppendOpener) OpenAppend(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	mode := o.Mode
	if mode == 0 {
		mode = 0o644
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, mode)
}

// FileSize returns the size of path in human-readable form, "0 B" if the
// file does not exist.
func FileSize(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return humanize.Bytes(0), nil
		}
		return "", err
	}
	return humanize.Bytes(uint64(info.Size())), nil
}
