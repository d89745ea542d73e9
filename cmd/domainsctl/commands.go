package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sternrassler/domains-client/pkg/domains"
	"github.com/Sternrassler/domains-client/pkg/pagination"
	"github.com/spf13/cobra"
)

// pagingFlags are shared by all list commands.
type pagingFlags struct {
	marker   string
	maxItems int
	pageSize int
	refresh  bool
}

func (p *pagingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.marker, "marker", "", "Resume from this pagination marker")
	cmd.Flags().IntVar(&p.maxItems, "max-items", 0, "Stop after emitting at least this many items")
	cmd.Flags().IntVar(&p.pageSize, "page-size", 0, fmt.Sprintf("Items per request (at most %d)", domains.MaxPageSize))
	cmd.Flags().BoolVar(&p.refresh, "refresh", false, "Drop cached pages of this operation before listing")
}

// purgeCache drops cached responses of operation when --refresh is set.
func (a *app) purgeCache(ctx context.Context, p *pagingFlags, operation string) error {
	if !p.refresh || a.client.GetCache() == nil {
		return nil
	}
	deleted, err := a.client.GetCache().Purge(ctx, operation)
	if err != nil {
		return fmt.Errorf("refresh cache: %w", err)
	}
	a.logger.Debug().Str("operation", operation).Int("deleted", deleted).Msg("Purged cached pages")
	return nil
}

// options converts the flags the user actually set into fetch options.
func (p *pagingFlags) options(cmd *cobra.Command, defaultPageSize int) pagination.Options {
	var opts pagination.Options
	if cmd.Flags().Changed("marker") {
		opts.StartCursor = pagination.String(p.marker)
	}
	if cmd.Flags().Changed("max-items") {
		opts.Cap = pagination.Int(p.maxItems)
	}
	switch {
	case cmd.Flags().Changed("page-size"):
		opts.PageSize = pagination.Int(p.pageSize)
	case defaultPageSize > 0:
		opts.PageSize = pagination.Int(defaultPageSize)
	}
	return opts
}

// service builds a domains service whose caller-visible progress goes to stderr.
func (a *app) service(activity string) *domains.Service {
	return domains.NewService(a.client,
		domains.WithProgress(pagination.NewWriterProgress(a.stderr, activity)),
		domains.WithLogger(a.logger),
	)
}

// jsonLines returns a sink writing each item as one JSON line to stdout.
func jsonLines[T any](a *app) pagination.Sink[T] {
	enc := json.NewEncoder(a.stdout)
	return func(items []T, _ string) error {
		for _, item := range items {
			if err := enc.Encode(item); err != nil {
				return fmt.Errorf("write item: %w", err)
			}
		}
		return nil
	}
}

// reportResume tells the user how to continue a capped listing.
func (a *app) reportResume(res pagination.Result) {
	if res.Reason == pagination.ReasonCapReached && res.NextCursor != "" {
		fmt.Fprintf(a.stderr, "NextPageMarker: %s\n", res.NextCursor)
	}
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseTimeFlag(cmd *cobra.Command, name, value string) (*time.Time, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("--%s: expected RFC3339 time: %w", name, err)
	}
	return &t, nil
}

func newListDomainsCommand(a *app) *cobra.Command {
	var paging pagingFlags

	cmd := &cobra.Command{
		Use:   "list-domains",
		Short: "List registered domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.purgeCache(cmd.Context(), &paging, domains.OpListDomains); err != nil {
				return err
			}
			res, err := a.service(domains.OpListDomains).EnumerateDomains(
				cmd.Context(), paging.options(cmd, a.cfg.PageSize), jsonLines[domains.Domain](a))
			if err != nil {
				return err
			}
			a.reportResume(res)
			return nil
		},
	}
	paging.register(cmd)
	return cmd
}

func newViewBillingCommand(a *app) *cobra.Command {
	var (
		paging     pagingFlags
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "view-billing",
		Short: "List billing records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				filter domains.BillingFilter
				err    error
			)
			if filter.Start, err = parseTimeFlag(cmd, "start", start); err != nil {
				return err
			}
			if filter.End, err = parseTimeFlag(cmd, "end", end); err != nil {
				return err
			}
			if err := a.purgeCache(cmd.Context(), &paging, domains.OpViewBilling); err != nil {
				return err
			}

			res, err := a.service(domains.OpViewBilling).EnumerateBilling(
				cmd.Context(), filter, paging.options(cmd, a.cfg.PageSize), jsonLines[domains.BillingRecord](a))
			if err != nil {
				return err
			}
			a.reportResume(res)
			return nil
		},
	}
	paging.register(cmd)
	cmd.Flags().StringVar(&start, "start", "", "Only records billed at or after this RFC3339 time")
	cmd.Flags().StringVar(&end, "end", "", "Only records billed before this RFC3339 time")
	return cmd
}

func newListOperationsCommand(a *app) *cobra.Command {
	var (
		paging         pagingFlags
		submittedSince string
	)

	cmd := &cobra.Command{
		Use:   "list-operations",
		Short: "List registry operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			since, err := parseTimeFlag(cmd, "submitted-since", submittedSince)
			if err != nil {
				return err
			}
			if err := a.purgeCache(cmd.Context(), &paging, domains.OpListOperations); err != nil {
				return err
			}

			res, err := a.service(domains.OpListOperations).EnumerateOperations(
				cmd.Context(), domains.OperationsFilter{SubmittedSince: since},
				paging.options(cmd, a.cfg.PageSize), jsonLines[domains.OperationSummary](a))
			if err != nil {
				return err
			}
			a.reportResume(res)
			return nil
		},
	}
	paging.register(cmd)
	cmd.Flags().StringVar(&submittedSince, "submitted-since", "", "Only operations submitted at or after this RFC3339 time")
	return cmd
}

func newGetDomainCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get-domain <domain-name>",
		Short: "Show details of a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.service(domains.OpGetDomainDetail).GetDomainDetail(cmd.Context(),
				&domains.GetDomainDetailInput{DomainName: args[0]})
			if err != nil {
				return err
			}
			return a.writeJSON(out)
		},
	}
}

func newCheckAvailabilityCommand(a *app) *cobra.Command {
	var idnLangCode string

	cmd := &cobra.Command{
		Use:   "check-availability <domain-name>",
		Short: "Check whether a domain can be registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := &domains.CheckDomainAvailabilityInput{DomainName: args[0]}
			if cmd.Flags().Changed("idn-lang-code") {
				in.IdnLangCode = &idnLangCode
			}
			out, err := a.service(domains.OpCheckDomainAvailability).CheckDomainAvailability(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.writeJSON(out)
		},
	}
	cmd.Flags().StringVar(&idnLangCode, "idn-lang-code", "", "Language code of an internationalized domain name")
	return cmd
}
