// SPDX-License-Identifier: MPL-2.0

// Package storage reads and writes solution archives through viant/afs, so
// archive locations may be plain paths or any URL scheme afs supports.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

var (
	// ErrNotFound is returned when the source location does not exist.
	ErrNotFound = errors.New("archive not found")
	// ErrExists is returned when the destination exists and overwriting is disabled.
	ErrExists = errors.New("destination already exists")
)

type (
	// Store is an archive source and destination.
	Store struct {
		fs afs.Service
	}

	// LocationError decorates a storage failure with its location.
	LocationError struct {
		Location string
		Err      error
	}
)

// Error implements the error interface.
func (e *LocationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Location, e.Err)
}

// Unwrap returns the underlying error.
func (e *LocationError) Unwrap() error { return e.Err }

// New creates a Store backed by the default afs service.
func New() *Store {
	return &Store{fs: afs.New()}
}

// NewWithService creates a Store over an existing afs service.
func NewWithService(fs afs.Service) *Store {
	return &Store{fs: fs}
}

// Normalize turns a plain path into an absolute file URL; URLs pass through.
func Normalize(location string) string {
	return url.Normalize(location, file.Scheme)
}

// Read downloads the archive at location.
func (s *Store) Read(ctx context.Context, location string) ([]byte, error) {
	u := Normalize(location)
	exists, err := s.fs.Exists(ctx, u)
	if err != nil {
		return nil, &LocationError{Location: location, Err: err}
	}
	if !exists {
		return nil, &LocationError{Location: location, Err: ErrNotFound}
	}

	data, err := s.fs.DownloadWithURL(ctx, u)
	if err != nil {
		return nil, &LocationError{Location: location, Err: fmt.Errorf("failed to read archive: %w", err)}
	}
	return data, nil
}

// Exists reports whether location exists.
func (s *Store) Exists(ctx context.Context, location string) (bool, error) {
	exists, err := s.fs.Exists(ctx, Normalize(location))
	if err != nil {
		return false, &LocationError{Location: location, Err: err}
	}
	return exists, nil
}

// Write uploads data to location, creating the parent directory when needed.
// An existing destination is replaced only when overwrite is set.
func (s *Store) Write(ctx context.Context, location string, data []byte, overwrite bool) error {
	u := Normalize(location)

	exists, err := s.fs.Exists(ctx, u)
	if err != nil {
		return &LocationError{Location: location, Err: err}
	}
	if exists && !overwrite {
		return &LocationError{Location: location, Err: ErrExists}
	}

	parent, _ := url.Split(u, file.Scheme)
	if ok, _ := s.fs.Exists(ctx, parent); !ok {
		if err := s.fs.Create(ctx, parent, file.DefaultDirOsMode, true); err != nil {
			return &LocationError{Location: location, Err: fmt.Errorf("failed to create directory: %w", err)}
		}
	}

	if err := s.fs.Upload(ctx, u, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return &LocationError{Location: location, Err: fmt.Errorf("failed to write archive: %w", err)}
	}
	return nil
}

// BaseName returns the last element of a path or URL.
func BaseName(location string) string {
	location = strings.TrimRight(location, `/\`)
	if i := strings.LastIndexAny(location, `/\`); i >= 0 {
		return location[i+1:]
	}
	return location
}

// Join places name inside dir. dir may be a path or a URL.
func Join(dir, name string) string {
	if strings.Contains(dir, "://") {
		return url.Join(dir, name)
	}
	return path.Join(strings.ReplaceAll(dir, `\`, "/"), name)
}
