package serializr

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType         = "invalid_type"
	CodeUnknownKey          = "unknown_key"
	CodeParseError          = "parse_error"
	CodeInvalidFormat       = "invalid_format"
	CodeInvariantViolation  = "invariant_violation"
	CodeDuplicateIdentifier = "duplicate_identifier"
	CodeUnresolvedReference = "unresolved_reference"
	CodeDeserializeError    = "deserialize_error"
)

// Sentinel errors for classification with errors.Is. Issues match a sentinel
// when any of their entries carries the corresponding code.
var (
	ErrInvariantViolation  = errors.New("serializr: invariant violation")
	ErrDuplicateIdentifier = errors.New("serializr: duplicate identifier")
	ErrUnresolvedReference = errors.New("serializr: unresolved reference")
)

// InvariantError reports malformed arguments detected at schema-construction
// time.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string { return "serializr: " + e.Message }

// Is makes errors.Is(err, ErrInvariantViolation) hold.
func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }

// Invariant returns an *InvariantError carrying msg when cond is false.
func Invariant(cond bool, msg string) error {
	if cond {
		return nil
	}
	return &InvariantError{Message: msg}
}

// Issue represents a single deserialization entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /todos/2/owner).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"model":"Todo", "id":"7"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of deserialization errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. unresolved_reference at /0/ref
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is reports whether any issue maps to the sentinel target.
func (iss Issues) Is(target error) bool {
	var code string
	switch target {
	case ErrInvariantViolation:
		code = CodeInvariantViolation
	case ErrDuplicateIdentifier:
		code = CodeDuplicateIdentifier
	case ErrUnresolvedReference:
		code = CodeUnresolvedReference
	default:
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssuesAt converts err into Issues rooted at path. Issues produced by a
// nested step keep their relative path appended to path; other errors become
// a single issue classified by the sentinel they match.
func IssuesAt(err error, path string) Issues {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		out := make(Issues, 0, len(iss))
		for _, it := range iss {
			it.Path = joinPointer(path, it.Path)
			out = append(out, it)
		}
		return out
	}
	code := CodeDeserializeError
	switch {
	case errors.Is(err, ErrDuplicateIdentifier):
		code = CodeDuplicateIdentifier
	case errors.Is(err, ErrInvariantViolation):
		code = CodeInvariantViolation
	}
	return Issues{{Path: pointerOrRoot(path), Code: code, Message: err.Error(), Cause: err}}
}

func joinPointer(base, rel string) string {
	if rel == "" || rel == "/" {
		return pointerOrRoot(base)
	}
	if base == "" || base == "/" {
		return rel
	}
	return base + rel
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// escapePointerToken escapes '~' -> '~0', '/' -> '~1' per RFC6901.
func escapePointerToken(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
}
