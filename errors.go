package configfile

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that the named resource does not exist or could not
	// be opened. Callers use it to detect "no configuration provided".
	ErrNotFound = errors.New("configfile: resource not found")
	// ErrKeyNotFound reports a typed read of a key the config does not hold.
	ErrKeyNotFound = errors.New("configfile: key not found")
	// ErrMalformedNumber reports a stored value that is not a valid literal of
	// the requested numeric kind.
	ErrMalformedNumber = errors.New("configfile: malformed number")
	// ErrMalformedValue reports a stored value that cannot be coerced into a
	// non-numeric type such as bool or duration.
	ErrMalformedValue = errors.New("configfile: malformed value")
	// ErrMalformedLine reports a line that is neither blank, a comment nor an
	// assignment. Only returned in strict mode.
	ErrMalformedLine = errors.New("configfile: malformed line")
	// ErrDuplicateKey reports a repeated key under DuplicateReject.
	ErrDuplicateKey = errors.New("configfile: duplicate key")
	// ErrIO reports a failure while reading or writing the serialized form.
	ErrIO = errors.New("configfile: io failure")
)

// ResourceError ties a load or write failure to the resource it targeted.
// Kind holds one of the package sentinels and Err the underlying cause, both
// of which are reachable through errors.Is.
type ResourceError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *ResourceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("%v: %s %q", e.Kind, e.Op, e.Path)
	}
	return fmt.Sprintf("%v: %s %q: %v", e.Kind, e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// KeyError describes a failed typed read.
type KeyError struct {
	Op    string
	Key   string
	Value string
	Err   error
}

func (e *KeyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if errors.Is(e.Err, ErrKeyNotFound) {
		return fmt.Sprintf("%v: %s %q", e.Err, e.Op, e.Key)
	}
	return fmt.Sprintf("%v: %s %q value=%q", e.Err, e.Op, e.Key, e.Value)
}

func (e *KeyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ParseError locates a rejected input line.
type ParseError struct {
	Source string
	Line   int
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	source := e.Source
	if source == "" {
		source = "<input>"
	}
	return fmt.Sprintf("%v: %s:%d: %q", e.Err, source, e.Line, e.Text)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func missingKey(op, key string) error {
	return &KeyError{Op: op, Key: key, Err: ErrKeyNotFound}
}

func malformed(op, key, value string, kind, cause error) error {
	return &KeyError{Op: op, Key: key, Value: value, Err: fmt.Errorf("%w: %v", kind, cause)}
}
