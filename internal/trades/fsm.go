package trades

import "errors"

// ErrInvalidTransition is returned when an event is not defined for the
// trade's current status.
var ErrInvalidTransition = errors.New("invalid trade state transition")

// Trade statuses
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
	StatusDisputed  = "disputed"
)

// Events
const (
	EventLock     = "lock"
	EventAccept   = "accept"
	EventComplete = "complete"
	EventReject   = "reject"
	EventDispute  = "dispute"
	EventResolve  = "resolve"
)

type transitionKey struct {
	status string
	event  string
}

// transitions is the complete lifecycle table. Any (status, event) pair not
// listed here is invalid. completed and rejected are terminal.
var transitions = map[transitionKey]string{
	{StatusPending, EventLock}:      StatusPending, // terms lock does not change status
	{StatusPending, EventAccept}:    StatusAccepted,
	{StatusPending, EventReject}:    StatusRejected,
	{StatusPending, EventDispute}:   StatusDisputed,
	{StatusAccepted, EventComplete}: StatusCompleted,
	{StatusAccepted, EventReject}:   StatusRejected,
	{StatusAccepted, EventDispute}:  StatusDisputed,
	{StatusDisputed, EventResolve}:  StatusRejected,
}

// NextStatus returns the status a trade moves to when event fires, or
// ErrInvalidTransition if the pair is undefined.
func NextStatus(current, event string) (string, error) {
	next, ok := transitions[transitionKey{current, event}]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}

// IsTerminal reports whether a status admits no further events.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusRejected
}
