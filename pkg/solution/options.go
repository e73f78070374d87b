// SPDX-License-Identifier: MPL-2.0

package solution

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sofloc/sofloc/pkg/archive"
)

type (
	options struct {
		logger           *log.Logger
		newGUID          func() string
		compressionLevel int
	}

	// Option configures a Solution.
	Option func(*options)
)

func defaultOptions() options {
	return options{
		logger:           log.New(io.Discard),
		newGUID:          func() string { return strings.ToLower(uuid.NewString()) },
		compressionLevel: archive.DefaultCompressionLevel,
	}
}

// WithLogger sets the logger used for debug tracing. Default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGUIDSource sets the generator of new flow GUIDs.
// Default is a random (version 4) UUID.
func WithGUIDSource(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newGUID = fn
		}
	}
}

// WithCompressionLevel sets the Deflate level used when repacking (1-9).
// Default is 9 (best compression).
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.compressionLevel = level
	}
}
