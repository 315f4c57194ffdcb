package service

import "context"

// DispatchState distinguishes a channel that was intentionally off from one
// that was attempted and failed.
type DispatchState int

const (
	// StateDelivered means the channel accepted the notification.
	StateDelivered DispatchState = iota
	// StateDisabled means the channel was not configured or switched off.
	StateDisabled
	// StateFailed means delivery was attempted and a transport error occurred.
	StateFailed
)

func (s DispatchState) String() string {
	switch s {
	case StateDelivered:
		return "delivered"
	case StateDisabled:
		return "disabled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DispatchResult is the per-channel outcome of one delivery attempt.
// Transport errors are captured here, never raised to the caller.
type DispatchResult struct {
	State DispatchState
	Err   error
}

// Delivered reports whether the channel accepted the notification.
func (r DispatchResult) Delivered() bool {
	return r.State == StateDelivered
}

// ChatDispatcher delivers a formatted notification to a chat destination.
type ChatDispatcher interface {
	Dispatch(ctx context.Context, message, formName string) DispatchResult
}

// MailDispatcher delivers a subject and body via an outbound mail relay.
type MailDispatcher interface {
	Dispatch(ctx context.Context, subject, body string) DispatchResult
}
