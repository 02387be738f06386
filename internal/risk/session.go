package risk

import (
	"errors"
	"fmt"
)

type State int

const (
	Idle State = iota
	Submitting
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrInvalidTransition = errors.New("invalid session transition")

// Session tracks one assessment attempt from submission to outcome.
// Resolved and Failed are terminal until Reset. The result type is left
// to the caller so this package stays free of persistence concerns.
type Session[T any] struct {
	state  State
	result T
	err    error
}

func (s *Session[T]) State() State { return s.state }

func (s *Session[T]) Result() (T, bool) {
	return s.result, s.state == Resolved
}

func (s *Session[T]) Err() error { return s.err }

func (s *Session[T]) Submit() error {
	if s.state != Idle {
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, s.state)
	}
	s.state = Submitting
	return nil
}

func (s *Session[T]) Resolve(result T) error {
	if s.state != Submitting {
		return fmt.Errorf("%w: resolve from %s", ErrInvalidTransition, s.state)
	}
	s.state = Resolved
	s.result = result
	return nil
}

func (s *Session[T]) Fail(err error) error {
	if s.state != Submitting {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, s.state)
	}
	s.state = Failed
	s.err = err
	return nil
}

// Reset starts a new assessment. Resetting while a submission is in
// flight is refused; a late result would otherwise land in the new session.
func (s *Session[T]) Reset() error {
	if s.state == Submitting {
		return fmt.Errorf("%w: reset while submitting", ErrInvalidTransition)
	}
	*s = Session[T]{}
	return nil
}
