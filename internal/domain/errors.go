package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies gateway failures.
type ErrorKind int

// Error kinds.
const (
	KindNetwork ErrorKind = iota + 1
	KindServer
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

var (
	// ErrNetwork matches transient connectivity failures.
	ErrNetwork = errors.New("network error")
	// ErrServer matches requests the remote side rejected.
	ErrServer = errors.New("server error")
	// ErrValidation matches malformed update payloads.
	ErrValidation = errors.New("validation error")
)

// GatewayError is the single error type returned by the record gateway.
// Use errors.Is against ErrNetwork, ErrServer or ErrValidation to classify it.
type GatewayError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewGatewayError creates a classified gateway error.
func NewGatewayError(kind ErrorKind, message string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Message: message, Err: err}
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *GatewayError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrServer:
		return e.Kind == KindServer
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}
