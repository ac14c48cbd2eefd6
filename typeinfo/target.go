package typeinfo

// TargetError marks a fault raised by the code behind a member (a trapped
// wasm call, a failing accessor) as opposed to the machinery that reached it.
// The invoker strips it so callers only see the original fault.
type TargetError struct {
	Err error
}

func (e *TargetError) Error() string {
	if e.Err == nil {
		return "target error"
	}
	return e.Err.Error()
}

func (e *TargetError) Unwrap() error {
	return e.Err
}
