package engine

import "fmt"

// EngineError tags a failure with the operation that produced it. The
// underlying cause is one of the pkg/types sentinel errors or an
// infrastructure error; match with errors.Is.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func opErr(op string, err error) error {
	return &EngineError{Op: op, Err: err}
}
