package client

import "fmt"

// Outcome is the branch an action ended in.
type Outcome int

const (
	// OutcomeRejected means a local precondition failed and no request was made.
	OutcomeRejected Outcome = iota
	// OutcomeSucceeded means the server answered with the expected field.
	OutcomeSucceeded
	// OutcomeFailed means the server answered with well-formed JSON missing the expected field.
	OutcomeFailed
	// OutcomeNetworkError means the request never produced a response.
	OutcomeNetworkError
	// OutcomeDecodeError means the response body was not the expected JSON.
	OutcomeDecodeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeNetworkError:
		return "network_error"
	case OutcomeDecodeError:
		return "decode_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// NetworkError wraps a failure to obtain any response from the server.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError wraps a response body that could not be decoded as JSON.
type DecodeError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response (status %d): %v", e.Endpoint, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
