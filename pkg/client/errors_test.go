package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		errorClass ErrorClass
		expected   bool
	}{
		{name: "client error should not retry", errorClass: ErrorClassClient, expected: false},
		{name: "server error should retry", errorClass: ErrorClassServer, expected: true},
		{name: "throttling should retry", errorClass: ErrorClassThrottling, expected: true},
		{name: "network error should retry", errorClass: ErrorClassNetwork, expected: true},
		{name: "empty error class should not retry", errorClass: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := shouldRetry(tt.errorClass); result != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, result, tt.expected)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		code   string
		want   ErrorClass
	}{
		{400, "InvalidInput", ErrorClassClient},
		{404, "", ErrorClassClient},
		{429, "", ErrorClassThrottling},
		{400, "ThrottlingException", ErrorClassThrottling},
		{500, "InternalFailure", ErrorClassServer},
		{503, "", ErrorClassServer},
		{200, "", ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", tt.status, tt.code), func(t *testing.T) {
			if got := classifyStatus(tt.status, tt.code); got != tt.want {
				t.Errorf("classifyStatus(%d, %q) = %q, want %q", tt.status, tt.code, got, tt.want)
			}
		})
	}
}

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		svcError *ServiceError
		expected string
	}{
		{
			name: "fault with code and message",
			svcError: &ServiceError{
				Operation:  "ListDomains",
				StatusCode: 400,
				ErrorClass: ErrorClassClient,
				Code:       "InvalidInput",
				Message:    "MaxItems must be <= 20",
			},
			expected: "ListDomains: client error (status 400) InvalidInput: MaxItems must be <= 20",
		},
		{
			name: "network error with wrapped error",
			svcError: &ServiceError{
				Operation:  "ViewBilling",
				ErrorClass: ErrorClassNetwork,
				Message:    "send request",
				Err:        errors.New("connection refused"),
			},
			expected: "ViewBilling: network error (status 0): send request: connection refused",
		},
		{
			name: "throttling without body",
			svcError: &ServiceError{
				Operation:  "ListOperations",
				StatusCode: 429,
				ErrorClass: ErrorClassThrottling,
			},
			expected: "ListOperations: throttling error (status 429)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.svcError.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestServiceError_Unwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	svcErr := &ServiceError{
		Operation:  "ListDomains",
		ErrorClass: ErrorClassNetwork,
		Err:        innerErr,
	}

	if !errors.Is(svcErr, innerErr) {
		t.Error("errors.Is should find inner error")
	}

	wrapped := fmt.Errorf("page 2: %w", svcErr)
	var target *ServiceError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find ServiceError through wrapping")
	}
	if target.Operation != "ListDomains" {
		t.Errorf("Operation = %q, want ListDomains", target.Operation)
	}
}

func TestClassOf(t *testing.T) {
	if got := classOf(&ServiceError{ErrorClass: ErrorClassThrottling}); got != ErrorClassThrottling {
		t.Errorf("classOf(ServiceError) = %q, want throttling", got)
	}
	if got := classOf(fmt.Errorf("wrapped: %w", &ServiceError{ErrorClass: ErrorClassClient})); got != ErrorClassClient {
		t.Errorf("classOf(wrapped) = %q, want client", got)
	}
	if got := classOf(errors.New("plain")); got != ErrorClassNetwork {
		t.Errorf("classOf(plain) = %q, want network", got)
	}
}
