package world

// CodedError lets a source error expose a short machine code ("ECONNRESET",
// "timeout", ...). Extraction is best-effort; errors without one are
// reported with code "unknown".
type CodedError interface {
	error
	ErrorCode() string
}

// StackedError lets a source error carry a captured stack trace. Stacks
// are attached to error events only when actually provided, never
// synthesized.
type StackedError interface {
	error
	StackTrace() string
}

// SourceError is the ready-made error type sources raise through
// ErrorSignal when they have structured detail. It implements CodedError
// and, when Stack is non-empty, usefully implements StackedError too.
type SourceError struct {
	Code  string
	Stack string
	Err   error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *SourceError) Unwrap() error     { return e.Err }
func (e *SourceError) ErrorCode() string { return e.Code }

func (e *SourceError) StackTrace() string { return e.Stack }
