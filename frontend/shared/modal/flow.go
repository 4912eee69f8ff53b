package modal

import (
	"context"
	"errors"
	"fmt"
)

// State of a modal dialog.
type State int

const (
	Open State = iota
	Validating
	Submitting
	ClosedSuccess
	ClosedCancelled
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case ClosedSuccess:
		return "closed_success"
	case ClosedCancelled:
		return "closed_cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Closed reports whether s is terminal.
func (s State) Closed() bool { return s == ClosedSuccess || s == ClosedCancelled }

var ErrInvalidTransition = errors.New("modal: invalid state transition")

// SubmitFunc performs the mutation and returns the backend's message.
type SubmitFunc[T any] func(ctx context.Context, input T) (string, error)

// Flow carries one dialog's input from open to close. A failed submit
// returns to Open with Err set; nothing is retried.
type Flow[T any] struct {
	state  State
	Input  T
	Errors FieldErrors
	Err    error
	Result string
}

// New opens a dialog with prefilled input.
func New[T any](input T) *Flow[T] {
	return &Flow[T]{state: Open, Input: input}
}

func (f *Flow[T]) State() State { return f.state }

// Validate checks Input locally. Valid input moves to Submitting; invalid
// input returns to Open with Errors populated.
func (f *Flow[T]) Validate() bool {
	if f.state != Open {
		return false
	}
	f.state = Validating
	f.Errors = Validate(f.Input)
	if len(f.Errors) > 0 {
		f.state = Open
		return false
	}
	f.state = Submitting
	return true
}

// Submit runs fn once from Submitting.
func (f *Flow[T]) Submit(ctx context.Context, fn SubmitFunc[T]) error {
	if f.state != Submitting {
		return ErrInvalidTransition
	}
	msg, err := fn(ctx, f.Input)
	if err != nil {
		f.state = Open
		f.Err = err
		return err
	}
	f.Err = nil
	f.Result = msg
	f.state = ClosedSuccess
	return nil
}

// Run validates and, when valid, submits. It returns the resulting state.
func (f *Flow[T]) Run(ctx context.Context, fn SubmitFunc[T]) State {
	if f.Validate() {
		_ = f.Submit(ctx, fn)
	}
	return f.state
}

// Cancel closes an open dialog without a result.
func (f *Flow[T]) Cancel() {
	if !f.state.Closed() {
		f.state = ClosedCancelled
	}
}
