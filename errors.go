package ember

import "fmt"

// ErrKind classifies the errors spec §7 defines, mirroring the
// Kind-plus-message pattern used by pkg/types.Error throughout the
// teacher repo.
type ErrKind string

const (
	// Static verification errors, raised during module load/resolution.
	KindModuleFormat   ErrKind = "ModuleFormat"
	KindUnknownModule  ErrKind = "UnknownModule"
	KindDuplicateExport ErrKind = "DuplicateExport"
	KindImportCycle    ErrKind = "ImportCycle"

	// Dynamic runtime errors, raised by the interpreter.
	KindTypeError       ErrKind = "TypeError"
	KindNameError       ErrKind = "NameError"
	KindDivisionByZero  ErrKind = "DivisionByZero"
	KindOverflow        ErrKind = "Overflow"
	KindIndexOutOfBounds ErrKind = "IndexOutOfBounds"
	KindKeyError        ErrKind = "KeyError"
	KindStackOverflow   ErrKind = "StackOverflow"
	KindAssertion       ErrKind = "Assertion"

	// Resource errors.
	KindOutOfMemory ErrKind = "OutOfMemory"
)

// Frame captures the debug source-location context spec §7 says a
// surfaced error should carry "in debug builds": the function template's
// name and the byte offset of the failing instruction within its code.
// Frame is always populated here (there is no separate release build),
// matching the Go ecosystem convention of always carrying error context
// and letting the host decide whether to render it.
type Frame struct {
	Function string
	Module   string
	Offset   int
}

func (f Frame) String() string {
	if f.Function == "" {
		return ""
	}
	loc := f.Function
	if f.Module != "" {
		loc = f.Module + "." + loc
	}
	return fmt.Sprintf("%s+%d", loc, f.Offset)
}

// Error is the single error carrier spec §7/§9 (open question: "error
// value representation at the coroutine boundary") settles on: every
// error the runtime surfaces — load-time, resolution-time, or
// interpretation-time — is an *Error, grounded on pkg/types.Error's
// Kind/Msg/Err triple.
type Error struct {
	Kind    ErrKind
	Message string
	Frame   Frame
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	if loc := e.Frame.String(); loc != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, loc)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError constructs an *Error with no frame attached; interpreter code
// attaches a frame via WithFrame once the failing frame is known.
func NewError(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError constructs an *Error wrapping cause.
func WrapError(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// WithFrame returns a copy of e with its Frame set, used by the
// interpreter's dispatch loop to attach the current call site before the
// error leaves the coroutine (spec §7 "in debug builds, source-location
// information from the bytecode and enclosing frame").
func (e *Error) WithFrame(f Frame) *Error {
	cp := *e
	cp.Frame = f
	return &cp
}

// Is reports kind equality so callers can match a kind with
// errors.Is(err, &ember.Error{Kind: ember.KindX}); most callers instead
// type-assert to *Error and compare Kind directly.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}
