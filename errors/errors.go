package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // layout registration
	PhaseResolve  Phase = "resolve"  // object id lookup
	PhaseHandle   Phase = "handle"   // handle table
	PhaseBridge   Phase = "bridge"   // host function dispatch
	PhaseTick     Phase = "tick"     // tick driver
	PhaseLoad     Phase = "load"     // module loading
	PhaseConfig   Phase = "config"   // configuration and scenarios
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidData    Kind = "invalid_data"
	KindFieldMissing   Kind = "field_missing"
	KindFieldUnknown   Kind = "field_unknown"
	KindDuplicate      Kind = "duplicate"
	KindOrder          Kind = "order"
	KindFrozen         Kind = "frozen"
	KindNotFound       Kind = "not_found"
	KindStale          Kind = "stale"
	KindReleased       Kind = "released"
	KindZeroHandle     Kind = "zero_handle"
	KindBudget         Kind = "budget"
	KindNotInitialized Kind = "not_initialized"
	KindInvalidInput   Kind = "invalid_input"
	KindRegistration   Kind = "registration"
	KindInstantiation  Kind = "instantiation"
	KindTrap           Kind = "trap"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Object string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Object != "" || len(e.Path) > 0 {
		b.WriteString(" at ")
		parts := e.Path
		if e.Object != "" {
			parts = append([]string{e.Object}, e.Path...)
		}
		b.WriteString(strings.Join(parts, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Object sets the object (record kind, handle table, module) the error concerns
func (b *Builder) Object(name string) *Builder {
	b.err.Object = name
	return b
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, object string, path []string, offset, limit uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Object: object,
		Path:   path,
		Detail: fmt.Sprintf("offset %d out of bounds (limit %d)", offset, limit),
		Value:  offset,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, object, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Object: object,
		Detail: fmt.Sprintf("required field %q not registered", fieldName),
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, object string, field any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Object: object,
		Detail: fmt.Sprintf("unknown field %v", field),
		Value:  field,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, object string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Object: object,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error for missing module/instance
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a fatal layout registration error
func Registration(object string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Object: object,
		Detail: "layout registration failed",
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Budget creates a tick CPU budget error
func Budget(tick uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseTick,
		Kind:   KindBudget,
		Detail: fmt.Sprintf("tick %d exceeded its CPU budget", tick),
		Value:  tick,
		Cause:  cause,
	}
}

// Trap creates an error for a guest export that trapped or exited
func Trap(export string, tick uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseTick,
		Kind:   KindTrap,
		Object: export,
		Detail: fmt.Sprintf("guest failed in tick %d", tick),
		Value:  tick,
		Cause:  cause,
	}
}
