package errors

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic converts a recovered panic value into a processing failure
// carrying the stack trace. Processor implementations recover at their own
// boundary so a panicking step fails its exchange instead of killing the
// worker that happened to run it.
func RecoverPanic(r interface{}) error {
	if r == nil {
		return nil
	}

	var err error
	switch v := r.(type) {
	case error:
		err = v
	case string:
		err = fmt.Errorf("panic: %s", v)
	default:
		err = fmt.Errorf("panic: %v", v)
	}

	return NewProcessingFailure(KindProcessing, fmt.Errorf("%w\n%s", err, debug.Stack()))
}
