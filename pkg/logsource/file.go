package logsource

import (
	"fmt"
	"os"
)

// File is a Source reading from a file it owns.
type File struct {
	*Source
	f *os.File
}

// Open opens path and prepares a Source over it.
func Open(path string, cfg Config) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	s, err := New(f, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Source: s, f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}
