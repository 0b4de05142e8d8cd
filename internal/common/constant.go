package common

const (
	// RequestIDHeaderName carries a per-request id on outbound backend calls.
	RequestIDHeaderName = "X-Request-Id"

	// NullTimestamp is shown instead of a timestamp the backend sent in an
	// unexpected format.
	NullTimestamp = "null"
)
