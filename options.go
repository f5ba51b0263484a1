// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package compdoc

import (
	"io"
	"log/slog"

	"github.com/bpowers/compdoc/internal/directory"
)

// Option configures Encode, EncodeTo and WriteFile.
type Option func(*options)

type options struct {
	streamName string
	logger     *slog.Logger
}

// WithStreamName sets the directory name of the data stream.  The default
// is "Workbook", the name BIFF8 readers look for.
func WithStreamName(name string) Option {
	return func(opts *options) {
		opts.streamName = name
	}
}

// WithLogger sets an optional logger for progress updates.
// If not provided, no logging output will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func newOptions(opts []Option) options {
	var o options
	o.streamName = directory.DefaultStream
	o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
