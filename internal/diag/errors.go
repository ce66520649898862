package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors. Use errors.Is against these to tell failures apart.
var (
	ErrIO           = errors.New("i/o failure")
	ErrFormat       = errors.New("format failure")
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Failure is an error tied to a path and, optionally, a line.
type Failure struct {
	// Kind is one of the sentinel errors above.
	Kind error
	Path string
	Line int
	Err  error
}

func (e *Failure) Error() string {
	msg := e.Kind.Error()
	switch {
	case e.Path != "" && e.Line > 0:
		msg = fmt.Sprintf("%s: %s:%d", msg, e.Path, e.Line)
	case e.Path != "":
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	case e.Line > 0:
		msg = fmt.Sprintf("%s: line %d", msg, e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Failure) Unwrap() error { return e.Err }

// Is matches the sentinel kind.
func (e *Failure) Is(target error) bool { return target == e.Kind }

// IO wraps err as an I/O failure on path.
func IO(path string, err error) error {
	return errors.WithStack(&Failure{Kind: ErrIO, Path: path, Err: err})
}

// Format returns a format failure for the given line.
func Format(line int, format string, args ...interface{}) error {
	return errors.WithStack(&Failure{Kind: ErrFormat, Line: line, Err: fmt.Errorf(format, args...)})
}

// NotFound returns a not-found error for key.
func NotFound(key string) error {
	return &Failure{Kind: ErrNotFound, Err: fmt.Errorf("key %q", key)}
}

// DuplicateKey returns a key collision error for key occurring n times.
func DuplicateKey(key string, n int) error {
	return &Failure{Kind: ErrDuplicateKey, Err: fmt.Errorf("key %q occurs %d times", key, n)}
}

// LineOf returns the line recorded on err, or 0.
func LineOf(err error) int {
	var e *Failure
	if errors.As(err, &e) {
		return e.Line
	}
	return 0
}

// Reason returns the underlying message of err without the kind prefix.
func Reason(err error) string {
	var e *Failure
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
