package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink persists a finished document under its file name
type Sink interface {
	Save(ctx context.Context, name string, data []byte) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, name string, data []byte) error

// Save calls f
func (f SinkFunc) Save(ctx context.Context, name string, data []byte) error {
	return f(ctx, name, data)
}

// DirSink writes documents into a directory. A file only appears under its
// final name once it is completely written.
type DirSink struct {
	Dir string
}

// Save writes data to Dir/name through a temporary file and a rename
func (s DirSink) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := s.Dir
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, ".invoice-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return nil
}

// BufferSink keeps the last saved document in memory
type BufferSink struct {
	mu   sync.Mutex
	name string
	data []byte
}

// Save stores a copy of data
func (s *BufferSink) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.data = append([]byte(nil), data...)
	return nil
}

// Name returns the name of the last saved document
func (s *BufferSink) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Bytes returns the last saved document
func (s *BufferSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}
