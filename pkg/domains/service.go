// Package domains binds the domains service operations to the RPC client
// and builds paged enumerations on top of the pagination fetcher.
package domains

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sternrassler/domains-client/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrMissingParameter is returned when a required input field is empty.
var ErrMissingParameter = errors.New("missing required parameter")

// Invoker performs one RPC call. *client.Client implements it.
type Invoker interface {
	Invoke(ctx context.Context, operation string, in, out any) error
}

// Service exposes the domains service operations.
type Service struct {
	invoker  Invoker
	progress pagination.Progress
	logger   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithProgress routes caller-visible paging progress to p instead of the log.
func WithProgress(p pagination.Progress) Option {
	return func(s *Service) {
		s.progress = p
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a service bound to invoker.
func NewService(invoker Invoker, opts ...Option) *Service {
	if invoker == nil {
		panic("invoker cannot be nil")
	}

	s := &Service{
		invoker: invoker,
		logger:  log.With().Str("component", "domains").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListDomains returns one page of registered domains.
func (s *Service) ListDomains(ctx context.Context, in *ListDomainsInput) (*ListDomainsOutput, error) {
	if in == nil {
		in = &ListDomainsInput{}
	}
	out := &ListDomainsOutput{}
	if err := s.invoker.Invoke(ctx, OpListDomains, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ViewBilling returns one page of billing records.
func (s *Service) ViewBilling(ctx context.Context, in *ViewBillingInput) (*ViewBillingOutput, error) {
	if in == nil {
		in = &ViewBillingInput{}
	}
	out := &ViewBillingOutput{}
	if err := s.invoker.Invoke(ctx, OpViewBilling, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOperations returns one page of operations.
func (s *Service) ListOperations(ctx context.Context, in *ListOperationsInput) (*ListOperationsOutput, error) {
	if in == nil {
		in = &ListOperationsInput{}
	}
	out := &ListOperationsOutput{}
	if err := s.invoker.Invoke(ctx, OpListOperations, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDomainDetail describes one domain.
func (s *Service) GetDomainDetail(ctx context.Context, in *GetDomainDetailInput) (*GetDomainDetailOutput, error) {
	if in == nil || strings.TrimSpace(in.DomainName) == "" {
		return nil, fmt.Errorf("%s: %w: DomainName", OpGetDomainDetail, ErrMissingParameter)
	}
	out := &GetDomainDetailOutput{}
	if err := s.invoker.Invoke(ctx, OpGetDomainDetail, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckDomainAvailability reports whether a domain can be registered.
func (s *Service) CheckDomainAvailability(ctx context.Context, in *CheckDomainAvailabilityInput) (*CheckDomainAvailabilityOutput, error) {
	if in == nil || strings.TrimSpace(in.DomainName) == "" {
		return nil, fmt.Errorf("%s: %w: DomainName", OpCheckDomainAvailability, ErrMissingParameter)
	}
	out := &CheckDomainAvailabilityOutput{}
	if err := s.invoker.Invoke(ctx, OpCheckDomainAvailability, in, out); err != nil {
		return nil, err
	}
	return out, nil
}
