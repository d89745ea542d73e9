package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrRequestBlocked is returned when the throttle tracker refuses a call.
	ErrRequestBlocked = errors.New("request blocked: throttle window critical")
)

// ErrorClass represents a classification of call failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassThrottling represents 429 responses and throttling faults.
	ErrorClassThrottling ErrorClass = "throttling"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// ServiceError is a transport fault reported by the domains service or the
// network path to it.
type ServiceError struct {
	Operation  string
	StatusCode int
	ErrorClass ErrorClass

	// Code is the service fault type, e.g. "InvalidInput".
	Code      string
	Message   string
	RequestID string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s: %s error (status %d)", e.Operation, e.ErrorClass, e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient:
		// 4xx errors will fail the same way again
		return false
	case ErrorClassServer, ErrorClassThrottling, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

// classOf extracts the error class of err, ErrorClassNetwork for anything
// that is not a ServiceError.
func classOf(err error) ErrorClass {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.ErrorClass
	}
	return ErrorClassNetwork
}

// classifyStatus maps an HTTP status (and service fault code) to an error class.
func classifyStatus(status int, code string) ErrorClass {
	switch {
	case status == 429 || code == "ThrottlingException":
		return ErrorClassThrottling
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
