package ports

import "io"

// FileOpener opens files for the degraded-mode fallback path.
type FileOpener interface {
	// OpenAppend opens path for appending, creating it if needed.
	OpenAppend(path string) (io.WriteCloser, error)
}
