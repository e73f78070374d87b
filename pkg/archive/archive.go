// SPDX-License-Identifier: MPL-2.0

// Package archive provides an in-memory view of a solution zip archive.
//
// An Archive is loaded once from raw (or base64-encoded) bytes, exposes its
// entries by name, lets callers replace, add and remove entries, and packs the
// current entry set back into a zip byte stream. Entries keep the order they
// had in the source archive; new entries are appended at the end.
//
// Packing always uses Deflate. The compression level defaults to
// flate.BestCompression and is backed by klauspost/compress.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
)

// DefaultCompressionLevel is the Deflate level used by Pack unless overridden.
const DefaultCompressionLevel = flate.BestCompression

var (
	// ErrUnreadable is returned when the source bytes are not a readable zip archive.
	ErrUnreadable = errors.New("failed to unzip the file")
	// ErrEntryNotFound is returned when a named entry does not exist.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidCompressionLevel is returned for levels outside 1..9.
	ErrInvalidCompressionLevel = errors.New("invalid compression level")
)

type (
	// Entry is a single file or directory inside the archive.
	Entry struct {
		// Name is the slash-separated path of the entry (directories end with "/").
		Name string
		// Modified is the entry modification time carried into the packed output.
		Modified time.Time

		data []byte
	}

	// Archive holds the entries of a zip archive in memory.
	// An Archive is not safe for concurrent mutation.
	Archive struct {
		entries []*Entry
		level   int
	}

	// EntryNotFoundError is returned when a named entry does not exist.
	// It wraps ErrEntryNotFound for errors.Is() compatibility.
	EntryNotFoundError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry '%s' not found in archive", e.Name)
}

// Unwrap returns ErrEntryNotFound for errors.Is() compatibility.
func (e *EntryNotFoundError) Unwrap() error { return ErrEntryNotFound }

// IsDir reports whether the entry is a directory entry.
func (e *Entry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// Size returns the uncompressed size of the entry.
func (e *Entry) Size() int {
	return len(e.data)
}

// Open reads a zip archive from raw bytes.
func Open(data []byte) (*Archive, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: archive is empty", ErrUnreadable)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	reader.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	a := &Archive{level: DefaultCompressionLevel}
	for _, file := range reader.File {
		content, err := readFile(file)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %w", ErrUnreadable, file.Name, err)
		}
		a.entries = append(a.entries, &Entry{
			Name:     file.Name,
			Modified: file.Modified,
			data:     content,
		})
	}

	return a, nil
}

// OpenBase64 reads a zip archive from a standard base64 encoded string.
func OpenBase64(encoded string) (*Archive, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 input: %w", ErrUnreadable, err)
	}
	return Open(data)
}

// readFile reads the full content of a zip file entry.
func readFile(file *zip.File) ([]byte, error) {
	if file.FileInfo().IsDir() {
		return nil, nil
	}

	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// SetCompressionLevel sets the Deflate level used by Pack (1 = fastest, 9 = best).
func (a *Archive) SetCompressionLevel(level int) error {
	if level < flate.BestSpeed || level > flate.BestCompression {
		return fmt.Errorf("%w: %d (expected %d-%d)", ErrInvalidCompressionLevel, level, flate.BestSpeed, flate.BestCompression)
	}
	a.level = level
	return nil
}

// CompressionLevel returns the Deflate level used by Pack.
func (a *Archive) CompressionLevel() int {
	return a.level
}

// Names returns the entry names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		names = append(names, e.Name)
	}
	return names
}

// Entries returns the entries in archive order. The returned entries must not be mutated.
func (a *Archive) Entries() []*Entry {
	return slices.Clone(a.entries)
}

// Has reports whether an entry with the exact (case-sensitive) name exists.
func (a *Archive) Has(name string) bool {
	return a.indexOf(name) >= 0
}

// Match returns the names of all non-directory entries matching re, in archive order.
func (a *Archive) Match(re *regexp.Regexp) []string {
	var names []string
	for _, e := range a.entries {
		if !e.IsDir() && re.MatchString(e.Name) {
			names = append(names, e.Name)
		}
	}
	return names
}

// Read returns a copy of the content of the named entry.
func (a *Archive) Read(name string) ([]byte, error) {
	i := a.indexOf(name)
	if i < 0 {
		return nil, &EntryNotFoundError{Name: name}
	}
	return bytes.Clone(a.entries[i].data), nil
}

// ReadString returns the content of the named entry as text.
func (a *Archive) ReadString(name string) (string, error) {
	i := a.indexOf(name)
	if i < 0 {
		return "", &EntryNotFoundError{Name: name}
	}
	return string(a.entries[i].data), nil
}

// Write replaces the content of the named entry, or appends a new entry when
// no entry with that name exists.
func (a *Archive) Write(name string, data []byte) {
	content := bytes.Clone(data)
	if i := a.indexOf(name); i >= 0 {
		a.entries[i] = &Entry{Name: name, Modified: time.Now(), data: content}
		return
	}
	a.entries = append(a.entries, &Entry{Name: name, Modified: time.Now(), data: content})
}

// WriteString is Write for text content.
func (a *Archive) WriteString(name, text string) {
	a.Write(name, []byte(text))
}

// Remove deletes the named entry. It reports whether an entry was removed.
func (a *Archive) Remove(name string) bool {
	i := a.indexOf(name)
	if i < 0 {
		return false
	}
	a.entries = slices.Delete(a.entries, i, i+1)
	return true
}

// Clone returns an independent copy of the archive. Entry contents are shared
// because they are never mutated in place.
func (a *Archive) Clone() *Archive {
	return &Archive{
		entries: slices.Clone(a.entries),
		level:   a.level,
	}
}

// Pack writes the current entry set into a new zip byte stream.
func (a *Archive) Pack() ([]byte, error) {
	var buf bytes.Buffer

	zipWriter := zip.NewWriter(&buf)
	level := a.level
	zipWriter.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	for _, e := range a.entries {
		header := &zip.FileHeader{
			Name:     e.Name,
			Modified: e.Modified,
			Method:   zip.Deflate,
		}
		if e.IsDir() {
			header.Method = zip.Store
		}

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create ZIP entry %s: %w", e.Name, err)
		}
		if e.IsDir() {
			continue
		}
		if _, err := writer.Write(e.data); err != nil {
			return nil, fmt.Errorf("failed to write file data for %s: %w", e.Name, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize ZIP archive: %w", err)
	}

	return buf.Bytes(), nil
}

// PackBase64 is Pack followed by standard base64 encoding.
func (a *Archive) PackBase64() (string, error) {
	data, err := a.Pack()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (a *Archive) indexOf(name string) int {
	return slices.IndexFunc(a.entries, func(e *Entry) bool { return e.Name == name })
}
