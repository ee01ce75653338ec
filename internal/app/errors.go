package app

import (
	"errors"
	"fmt"

	"gopherai-insight/internal/pkg/tabular"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrDatasetNotFound      = errors.New("dataset not found")
	ErrMessageEmpty         = errors.New("message content is empty")
	ErrInvalidMode          = errors.New("invalid chat mode")
	ErrTurnInFlight         = errors.New("a chat turn is already in flight")
	ErrUnsupportedMediaType = tabular.ErrUnsupportedMediaType
	ErrFileTooLarge         = errors.New("file too large")
)

// ParseError aborts a dataset create or update before anything is stored.
type ParseError = tabular.ParseError

// StoreError wraps a failure of the record store, the blob store or the
// conversation log. The operation is aborted.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// CompletionError never leaves the chat service: it is turned into the
// assistant message of the turn.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return e.Err.Error()
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// AssistantMessage is the substitute reply stored in place of a completion.
func (e *CompletionError) AssistantMessage() string {
	return fmt.Sprintf(completionFailedFormat, e.Err.Error())
}
