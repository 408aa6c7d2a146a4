package errors

import "fmt"

var (
	// ErrAuthentication rejects a handshake before any connection state exists.
	ErrAuthentication = fmt.Errorf("authentication failed")

	ErrPayloadTooLarge  = fmt.Errorf("message too large")
	ErrMalformedPayload = fmt.Errorf("invalid message format")
	ErrRateLimited      = fmt.Errorf("rate limit exceeded")
	ErrNotAMember       = fmt.Errorf("not in this conversation")

	ErrNotConnected   = fmt.Errorf("no active connection")
	ErrSendBufferFull = fmt.Errorf("send buffer full")

	ErrConsultationNotFound = fmt.Errorf("consultation not found")

	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrEmptyWordList = fmt.Errorf("no censored words have been found")
)
