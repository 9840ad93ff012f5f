package results

// OperationResult carries the outcome of a service operation. Exactly one of
// Success or Failure is set; infrastructure faults are returned as a separate
// error alongside an empty result.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// Ok wraps a success payload.
func Ok[S any, F any](payload S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &payload}
}

// Fail wraps a failure payload.
func Fail[S any, F any](payload F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &payload}
}

func (r OperationResult[S, F]) IsSuccess() bool { return r.Success != nil }

func (r OperationResult[S, F]) IsFailure() bool { return r.Failure != nil }
