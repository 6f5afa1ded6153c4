package trades

import (
	"errors"
	"testing"
)

func TestNextStatusValidTransitions(t *testing.T) {
	cases := []struct {
		status, event, want string
	}{
		{StatusPending, EventLock, StatusPending},
		{StatusPending, EventAccept, StatusAccepted},
		{StatusPending, EventReject, StatusRejected},
		{StatusPending, EventDispute, StatusDisputed},
		{StatusAccepted, EventComplete, StatusCompleted},
		{StatusAccepted, EventReject, StatusRejected},
		{StatusAccepted, EventDispute, StatusDisputed},
		{StatusDisputed, EventResolve, StatusRejected},
	}

	for _, tc := range cases {
		got, err := NextStatus(tc.status, tc.event)
		if err != nil {
			t.Errorf("NextStatus(%s, %s): %v", tc.status, tc.event, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NextStatus(%s, %s) = %s, want %s", tc.status, tc.event, got, tc.want)
		}
	}
}

func TestNextStatusRejectsUndefinedPairs(t *testing.T) {
	cases := []struct {
		status, event string
	}{
		{StatusPending, EventComplete},  // cannot complete before accept
		{StatusPending, EventResolve},   // resolve only applies to disputes
		{StatusAccepted, EventAccept},   // cannot accept twice
		{StatusAccepted, EventLock},     // terms already locked by then
		{StatusCompleted, EventReject},  // terminal
		{StatusCompleted, EventDispute}, // terminal
		{StatusCompleted, EventComplete},
		{StatusRejected, EventAccept}, // terminal
		{StatusRejected, EventDispute},
		{StatusDisputed, EventAccept},
		{StatusDisputed, EventComplete},
		{StatusDisputed, EventDispute},
	}

	for _, tc := range cases {
		if _, err := NextStatus(tc.status, tc.event); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("NextStatus(%s, %s): got %v, want ErrInvalidTransition", tc.status, tc.event, err)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []string{StatusCompleted, StatusRejected} {
		if !IsTerminal(status) {
			t.Errorf("IsTerminal(%s) = false, want true", status)
		}
	}
	for _, status := range []string{StatusPending, StatusAccepted, StatusDisputed} {
		if IsTerminal(status) {
			t.Errorf("IsTerminal(%s) = true, want false", status)
		}
	}
}
