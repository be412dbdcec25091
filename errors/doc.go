// Package errors provides structured error types for the host side of the bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the object it concerns (record kind, handle table, module),
// a field path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRegister, errors.KindOutOfBounds).
//		Object("spawn").
//		Path("spawning", "id").
//		Detail("offset %d past record size %d", 96, 92).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.FieldMissing(errors.PhaseRegister, "extension", "energy")
//	err := errors.Budget(tick, ctx.Err())
//
// Guest code never sees these values; the bridge maps them to integer status
// codes. All errors implement the standard error interface and support errors.Is/As.
package errors
