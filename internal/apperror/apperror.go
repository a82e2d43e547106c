// Package apperror classifies domain errors so transports can map them to
// status codes and localized messages without string matching.
package apperror

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error carries a Kind and the i18n message id shown to the user.
type Error struct {
	Kind      Kind
	MessageID string
	Data      map[string]interface{}
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.MessageID
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a sentinel-style error. Compare with errors.Is.
func New(kind Kind, messageID, text string) *Error {
	return &Error{Kind: kind, MessageID: messageID, Err: errors.New(text)}
}

// Wrap attaches kind and message id to err, keeping err in the chain.
func Wrap(kind Kind, messageID string, err error) *Error {
	return &Error{Kind: kind, MessageID: messageID, Err: err}
}

// WithData returns a copy of e (still matching e via errors.Is) with template data.
func (e *Error) WithData(data map[string]interface{}) error {
	return &Error{Kind: e.Kind, MessageID: e.MessageID, Data: data, Err: fmt.Errorf("%w", e)}
}

// KindOf reports the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// MessageOf returns the message id and template data of err, or fallback.
func MessageOf(err error, fallback string) (string, map[string]interface{}) {
	var ae *Error
	if errors.As(err, &ae) && ae.MessageID != "" {
		return ae.MessageID, ae.Data
	}
	return fallback, nil
}
