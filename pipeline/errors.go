package pipeline

import "errors"

// ErrPluginsUnsupported is returned by a Pipeline that implements no
// plugin-discovery mechanism, per spec §6's "protocol is out of core"
// note.
var ErrPluginsUnsupported = errors.New("pipeline: plugin loading not supported")

// ErrTruncatedSource is returned by RawPipeline.Import when the file on
// disk is smaller than its configured (format, width, height) demands.
var ErrTruncatedSource = errors.New("pipeline: raw source file is smaller than the configured plane size")
