package errors

import "fmt"

// Kind classifies per-file generation failures.
type Kind string

const (
	// KindMapping is an unmapped backend type. Soft: a fallback type is emitted
	// and generation continues, so it never reaches a FileError.
	KindMapping Kind = "mapping"
	// KindAmbiguousTransform is a duplicate resolved parameter field name.
	KindAmbiguousTransform Kind = "ambiguous_transform"
	// KindIO is an unreadable source or unwritable output file.
	KindIO Kind = "io"
	// KindUpstream is a failure from the SQL type resolver.
	KindUpstream Kind = "upstream"
	// KindParse is a malformed query annotation or placeholder.
	KindParse Kind = "parse"
	// KindCancelled is a job that never ran because the pool shut down.
	KindCancelled Kind = "cancelled"
)

// FileError is the failure value returned from the worker boundary for one file.
type FileError struct {
	Path  string
	Kind  Kind
	Cause error
}

// NewFileError wraps cause for path. If cause already is a FileError it is
// returned unchanged.
func NewFileError(path string, kind Kind, cause error) *FileError {
	var fe *FileError
	if As(cause, &fe) {
		return fe
	}
	return &FileError{Path: path, Kind: kind, Cause: cause}
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Path, e.Kind, e.Cause)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}

// KindOf returns the Kind of a FileError anywhere in err's chain, or the kind
// implied by a known sentinel. Unknown errors are reported as KindIO.
func KindOf(err error) Kind {
	var fe *FileError
	if As(err, &fe) {
		return fe.Kind
	}
	switch {
	case Is(err, ErrAmbiguousTransform), Is(err, ErrUnknownParamIndex):
		return KindAmbiguousTransform
	case Is(err, ErrPoolClosed):
		return KindCancelled
	}
	return KindIO
}
