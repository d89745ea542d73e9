package domains

import (
	"context"

	"github.com/Sternrassler/domains-client/pkg/pagination"
)

// EnumerateDomains pages through ListDomains, delivering each page to sink.
func (s *Service) EnumerateDomains(ctx context.Context, opts pagination.Options, sink pagination.Sink[Domain]) (pagination.Result, error) {
	fetcher := pagination.NewFetcher(func(ctx context.Context, req pagination.PageRequest) (*pagination.PageResponse[Domain], error) {
		out, err := s.ListDomains(ctx, &ListDomainsInput{
			Marker:   req.Cursor,
			MaxItems: int32Ptr(req.MaxItems),
		})
		if err != nil {
			return nil, err
		}
		return &pagination.PageResponse[Domain]{Items: out.Domains, NextCursor: out.NextPageMarker}, nil
	}, s.fetcherConfig(OpListDomains))

	return fetcher.Fetch(ctx, opts, sink)
}

// EnumerateBilling pages through ViewBilling for the records in filter.
func (s *Service) EnumerateBilling(ctx context.Context, filter BillingFilter, opts pagination.Options, sink pagination.Sink[BillingRecord]) (pagination.Result, error) {
	fetcher := pagination.NewFetcher(func(ctx context.Context, req pagination.PageRequest) (*pagination.PageResponse[BillingRecord], error) {
		out, err := s.ViewBilling(ctx, &ViewBillingInput{
			Start:    filter.Start,
			End:      filter.End,
			Marker:   req.Cursor,
			MaxItems: int32Ptr(req.MaxItems),
		})
		if err != nil {
			return nil, err
		}
		return &pagination.PageResponse[BillingRecord]{Items: out.BillingRecords, NextCursor: out.NextPageMarker}, nil
	}, s.fetcherConfig(OpViewBilling))

	return fetcher.Fetch(ctx, opts, sink)
}

// EnumerateOperations pages through ListOperations for the operations in filter.
func (s *Service) EnumerateOperations(ctx context.Context, filter OperationsFilter, opts pagination.Options, sink pagination.Sink[OperationSummary]) (pagination.Result, error) {
	fetcher := pagination.NewFetcher(func(ctx context.Context, req pagination.PageRequest) (*pagination.PageResponse[OperationSummary], error) {
		out, err := s.ListOperations(ctx, &ListOperationsInput{
			SubmittedSince: filter.SubmittedSince,
			Marker:         req.Cursor,
			MaxItems:       int32Ptr(req.MaxItems),
		})
		if err != nil {
			return nil, err
		}
		return &pagination.PageResponse[OperationSummary]{Items: out.Operations, NextCursor: out.NextPageMarker}, nil
	}, s.fetcherConfig(OpListOperations))

	return fetcher.Fetch(ctx, opts, sink)
}

func (s *Service) fetcherConfig(operation string) pagination.Config {
	logger := s.logger
	return pagination.Config{
		Operation:      operation,
		ServerPageSize: MaxPageSize,
		Progress:       s.progress,
		Logger:         &logger,
	}
}

func int32Ptr(n *int) *int32 {
	if n == nil {
		return nil
	}
	v := int32(*n)
	return &v
}
