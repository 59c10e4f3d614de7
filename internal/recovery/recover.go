// Package recovery converts panics into errors at the compiler's public
// boundary, so a defect in generation surfaces as a diagnostic instead of
// crashing the caller.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns the zero value and an error.
//
// Example:
//
//	pq, err := recovery.RecoverToValue(logger, "encode", func() (*ql.ParsedQuery, error) {
//	    return enc.Encode(ast, projection)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()

			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(stack),
			)

			var zero T
			result = zero
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()

	return fn()
}
