// Package storage defines the export workspace file-system abstraction.
package storage

// Provider is the interface for workspace file operations.
// All paths are relative to the workspace root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// WriteJSON atomically writes v as indented JSON to path.
	WriteJSON(path string, v any) error
	// RemoveAll removes path and everything below it.
	RemoveAll(path string) error
	// CopyDir copies the directory tree at src (an absolute path outside
	// the workspace) to dst.
	CopyDir(src, dst string) error
	// Abs returns the absolute location of path.
	Abs(path string) (string, error)
}
