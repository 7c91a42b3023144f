package tonefx

import "fmt"

// Kind classifies a failure the way spec §7's error taxonomy describes it:
// by cause, not by which package raised it. Callers that care about the
// distinction between "bad input" and "backend gave up" can switch on Kind
// via errors.As without losing access to any more specific sentinel error a
// package also returns.
type Kind uint8

const (
	// KindInvalidArgument covers precondition violations: out-of-range
	// rects, mismatched format/size, nil input.
	KindInvalidArgument Kind = iota
	// KindOutOfMemory covers pool/heap allocation failure.
	KindOutOfMemory
	// KindBackendFailure covers GPU create/upload/retrieve/copy failure.
	KindBackendFailure
	// KindUnsupportedConversion covers a pixel-format conversion with no
	// direct or two-hop path.
	KindUnsupportedConversion
	// KindWrongThread covers a concurrency-contract violation: commit()
	// off the origin thread, or GL process() off the GL thread.
	KindWrongThread
	// KindParseFailure covers malformed preset text, unknown keys, or
	// type mismatches.
	KindParseFailure
	// KindPipelineFailure covers an importer/exporter reporting failure
	// or a missing path.
	KindPipelineFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindBackendFailure:
		return "BackendFailure"
	case KindUnsupportedConversion:
		return "UnsupportedConversion"
	case KindWrongThread:
		return "WrongThread"
	case KindParseFailure:
		return "ParseFailure"
	case KindPipelineFailure:
		return "PipelineFailure"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying error with a Kind, so callers can both
// errors.As for the kind and errors.Is against a package's own sentinel.
type Error struct {
	Kind Kind
	Err  error
}

// NewError wraps err with kind. The result is never nil: a nil err still
// yields an *Error, whose message is then the kind's name alone.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
