package conversation

import (
	"errors"
	"fmt"
)

// ErrorType categorizes rejected inputs so transports can map them.
type ErrorType string

const (
	ErrUnknownKind       ErrorType = "unknown_kind"
	ErrUnknownQuickReply ErrorType = "unknown_quick_reply"
)

// InputError is returned when an input cannot be dispatched at all.
type InputError struct {
	Type    ErrorType
	Message string // user-facing
	Value   string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %q", e.Type, e.Value)
}

// AsInputError unwraps err into an *InputError if it is one.
func AsInputError(err error) (*InputError, bool) {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
