package detector

import "errors"

// Kind classifies where in the request pipeline a failure happened.
type Kind int

const (
	KindUnknown Kind = iota
	KindFetch
	KindUpload
	KindDecode
	KindInference
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindUpload:
		return "upload"
	case KindDecode:
		return "decode"
	case KindInference:
		return "inference"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the failing operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap annotates err with kind and op. If err already carries a kind, the
// inner kind is kept since it was assigned closer to the failure.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	if inner := KindOf(err); inner != KindUnknown {
		kind = inner
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind attached to err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ErrDependencyUnavailable reports a runtime that is missing from this build
// or a detector that no longer accepts work.
func ErrDependencyUnavailable(msg string) error {
	return &Error{Kind: KindUnavailable, Err: errors.New(msg)}
}

// IsDependencyUnavailable reports whether err indicates a missing runtime.
func IsDependencyUnavailable(err error) bool { return KindOf(err) == KindUnavailable }
