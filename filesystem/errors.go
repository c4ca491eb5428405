package filesystem

import "errors"

// Failure kinds reported by the namespace. Match with errors.Is; the
// concrete error returned by operations is a *PathError wrapping one of these.
var (
	ErrNotFoundOrNotDirectory = errors.New("path not found or not a directory")
	ErrNotFound               = errors.New("path not found")
	ErrNotAFile               = errors.New("not a file")
	ErrNotADirectory          = errors.New("not a directory")
	ErrAlreadyExists          = errors.New("already exists")
	ErrPathComponentIsFile    = errors.New("path component is a file")
	ErrDirectoryNotEmpty      = errors.New("directory not empty")
	ErrInvalidOperation       = errors.New("invalid operation on root")
	ErrPersistenceFailure     = errors.New("persistence failure")
)

// PathError records the operation and path that failed. Segment names the
// offending path component for failures found while walking the path.
type PathError struct {
	Op      string
	Path    string
	Segment string
	Err     error
}

func (e *PathError) Error() string {
	msg := e.Op + " " + e.Path + ": " + e.Err.Error()
	if e.Segment != "" {
		msg += " at: " + e.Segment
	}
	return msg
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func newPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}
