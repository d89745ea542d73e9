// Package pagination drives cursor-paginated list operations of the domains
// service.
//
// Every list operation of the service (ListDomains, ViewBilling,
// ListOperations, ...) returns one page of results plus an opaque marker that
// must be passed back verbatim to get the next page. A Fetcher wraps a
// single-page FetchFunc and keeps calling it until the server stops returning
// a marker or the caller's cap is reached, handing every page to a Sink as
// soon as it arrives.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(fetchDomainsPage, pagination.Config{
//		Operation:      "ListDomains",
//		ServerPageSize: pagination.DefaultPageSize,
//	})
//	res, err := fetcher.Fetch(ctx, pagination.Options{Cap: pagination.Int(25)},
//		func(items []Domain, next string) error {
//			return enc.Encode(items)
//		})
//
// Paging modes:
//   - No start cursor and no cap: fully automatic, silent paging
//   - Start cursor or cap supplied: the caller controls paging and a Progress
//     reporter receives one event per page plus a final Complete
//
// The requested page size is only ever shrunk (to fit the remaining cap),
// never grown back. Faults are not retried here; the first failing page ends
// the enumeration and earlier pages are not retracted.
package pagination
