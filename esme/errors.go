package esme

import (
	"errors"
	"fmt"

	"github.com/linxGnu/gosmpp/data"
)

var (
	ErrSessionClosed     = errors.New("session closed")
	ErrAlreadyBound      = errors.New("session already bound or binding")
	ErrWindowFull        = errors.New("window full")
	ErrDuplicateSequence = errors.New("duplicate sequence number")
	ErrResponseTimeout   = errors.New("response timeout")
	ErrMessageTooLong    = errors.New("message does not fit in a single segment")
	ErrConnectionIsNil   = errors.New("connection is nil")
)

// BindError reports the status a bind request was rejected with.
type BindError struct {
	Status data.CommandStatusType
}

func NewBindError(status data.CommandStatusType) *BindError {
	return &BindError{Status: status}
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind rejected: (%d) %s", e.Status, e.Status.Desc())
}

// StatusError wraps a non-zero command status returned by the peer.
type StatusError struct {
	status data.CommandStatusType
}

func NewStatusError(status data.CommandStatusType) *StatusError {
	return &StatusError{status: status}
}

func (e *StatusError) Status() data.CommandStatusType {
	return e.status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("(%d) %s", e.status, e.status.Desc())
}
