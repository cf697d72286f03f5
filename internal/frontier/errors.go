package frontier

// RunError wraps a failure surfaced by an analysis run. Retryable errors are
// infrastructure faults the worker may redeliver; fatal errors (seed analysis
// failed) must not be retried because the run already produced a complete
// error response.
type RunError struct {
	Err       error
	Retryable bool
}

func (e *RunError) Error() string {
	return e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error) *RunError {
	return &RunError{Err: err, Retryable: true}
}

func NewFatalError(err error) *RunError {
	return &RunError{Err: err, Retryable: false}
}
