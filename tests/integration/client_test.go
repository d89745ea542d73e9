//go:build integration

package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/domains-client/internal/testutil"
	"github.com/Sternrassler/domains-client/pkg/client"
	"github.com/Sternrassler/domains-client/pkg/domains"
	"github.com/Sternrassler/domains-client/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// newService wires client and service against the mock with caching enabled.
func newService(t *testing.T, mock *testutil.MockService, redisClient *redis.Client, mutate func(*client.Config), opts ...domains.Option) *domains.Service {
	t.Helper()

	cfg := client.DefaultConfig(mock.URL(), "domains-integration/1.0")
	cfg.Redis = redisClient
	cfg.CacheTTL = time.Minute
	if mutate != nil {
		mutate(&cfg)
	}

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return domains.NewService(c, opts...)
}

func domainItems(n int) []any {
	items := make([]any, n)
	for i := range items {
		items[i] = map[string]any{"DomainName": fmt.Sprintf("d%02d.example", i)}
	}
	return items
}

func countDomains(n *int) pagination.Sink[domains.Domain] {
	return func(items []domains.Domain, _ string) error {
		*n += len(items)
		return nil
	}
}

// TestFullEnumerationFlow pages through a listing twice; the second pass is
// served from the Redis cache.
func TestFullEnumerationFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockService()
	defer mock.Close()
	mock.SetPagedList(domains.OpListDomains, "Domains", domainItems(50), domains.MaxPageSize)

	svc := newService(t, mock, redisClient, nil)
	ctx := context.Background()

	for pass := 1; pass <= 2; pass++ {
		var n int
		res, err := svc.EnumerateDomains(ctx, pagination.Options{}, countDomains(&n))
		if err != nil {
			t.Fatalf("pass %d: EnumerateDomains() error = %v", pass, err)
		}
		if n != 50 || res.Pages != 3 || res.Reason != pagination.ReasonExhausted {
			t.Errorf("pass %d: items=%d pages=%d reason=%s", pass, n, res.Pages, res.Reason)
		}
	}

	if got := mock.GetRequestCount(); got != 3 {
		t.Errorf("Service requests = %d, want 3 (second pass cached)", got)
	}
}

// TestCappedEnumerationUsesDistinctCacheKeys checks that a capped run does not
// reuse the full-size page of an earlier run.
func TestCappedEnumerationUsesDistinctCacheKeys(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockService()
	defer mock.Close()
	mock.SetPagedList(domains.OpListDomains, "Domains", domainItems(50), domains.MaxPageSize)

	svc := newService(t, mock, redisClient, nil,
		domains.WithProgress(pagination.NewWriterProgress(&bytes.Buffer{}, domains.OpListDomains)))
	ctx := context.Background()

	var full int
	if _, err := svc.EnumerateDomains(ctx, pagination.Options{}, countDomains(&full)); err != nil {
		t.Fatalf("EnumerateDomains() error = %v", err)
	}

	var capped int
	res, err := svc.EnumerateDomains(ctx, pagination.Options{Cap: pagination.Int(25)}, countDomains(&capped))
	if err != nil {
		t.Fatalf("EnumerateDomains() error = %v", err)
	}
	if capped != 25 {
		t.Errorf("capped items = %d, want 25", capped)
	}
	if res.NextCursor != "offset-25" {
		t.Errorf("NextCursor = %q, want offset-25", res.NextCursor)
	}

	// First capped page (MaxItems 20) hits the cache, the shrunk page does not.
	if got := mock.GetRequestCount(); got != 4 {
		t.Errorf("Service requests = %d, want 4", got)
	}
}

// TestThrottleBlockEndsEnumeration tests that a critical throttle window ends
// the loop with ErrRequestBlocked after the pages already delivered.
func TestThrottleBlockEndsEnumeration(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockService()
	defer mock.Close()

	page := testutil.NewHealthyResponse(`{"Domains":[{"DomainName":"a.example"},{"DomainName":"b.example"}],"NextPageMarker":"m1"}`)
	page.Headers["X-RateLimit-Remaining"] = "2"
	mock.SetResponse(domains.OpListDomains, page)

	progress := &bytes.Buffer{}
	svc := newService(t, mock, redisClient, nil,
		domains.WithProgress(pagination.NewWriterProgress(progress, domains.OpListDomains)))

	var n int
	res, err := svc.EnumerateDomains(context.Background(), pagination.Options{Cap: pagination.Int(100)}, countDomains(&n))
	if !errors.Is(err, client.ErrRequestBlocked) {
		t.Fatalf("Expected ErrRequestBlocked, got %v", err)
	}
	if n != 2 || res.Pages != 1 {
		t.Errorf("delivered items=%d pages=%d, want 2 and 1", n, res.Pages)
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("Service requests = %d, want 1", got)
	}
	if !bytes.Contains(progress.Bytes(), []byte("ListDomains: complete\n")) {
		t.Errorf("Expected completion signal, got %q", progress.String())
	}
}

// TestRetry5xxErrors tests that configured retries recover a page.
func TestRetry5xxErrors(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockService()
	defer mock.Close()
	mock.SetSequence(domains.OpListOperations,
		testutil.NewServerErrorResponse(),
		testutil.NewServerErrorResponse(),
		testutil.NewHealthyResponse(`{"Operations":[{"OperationId":"op-1","Status":"SUCCESSFUL"}]}`),
	)

	svc := newService(t, mock, redisClient, func(cfg *client.Config) {
		cfg.Retry = client.RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    10 * time.Millisecond,
			MaxBackoff:        50 * time.Millisecond,
			BackoffMultiplier: 2.0,
		}
	})

	var got []domains.OperationSummary
	_, err := svc.EnumerateOperations(context.Background(), domains.OperationsFilter{}, pagination.Options{},
		func(items []domains.OperationSummary, _ string) error {
			got = append(got, items...)
			return nil
		})
	if err != nil {
		t.Fatalf("EnumerateOperations() error = %v", err)
	}
	if len(got) != 1 || got[0].OperationID != "op-1" {
		t.Errorf("Unexpected operations %+v", got)
	}
	if count := mock.GetRequestCount(); count != 3 {
		t.Errorf("Service requests = %d, want 3", count)
	}
}

// TestNoRetry4xxErrors tests that client faults end the enumeration at once.
func TestNoRetry4xxErrors(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockService()
	defer mock.Close()
	mock.SetResponse(domains.OpViewBilling, testutil.NewFaultResponse(http.StatusBadRequest, "InvalidInput", "End must be after Start"))

	svc := newService(t, mock, redisClient, func(cfg *client.Config) {
		cfg.Retry.MaxAttempts = 3
	})

	_, err := svc.EnumerateBilling(context.Background(), domains.BillingFilter{}, pagination.Options{},
		func([]domains.BillingRecord, string) error { return nil })

	var svcErr *client.ServiceError
	if !errors.As(err, &svcErr) || svcErr.ErrorClass != client.ErrorClassClient {
		t.Fatalf("Expected client ServiceError, got %v", err)
	}
	if count := mock.GetRequestCount(); count != 1 {
		t.Errorf("Service requests = %d, want 1", count)
	}
}

// TestCacheExpiration tests that expired cache entries are not used.
func TestCacheExpiration(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockService()
	defer mock.Close()
	resp := testutil.NewHealthyResponse(`{"Domains":[{"DomainName":"a.example"}]}`)
	resp.Headers["Cache-Control"] = "max-age=1"
	mock.SetResponse(domains.OpListDomains, resp)

	svc := newService(t, mock, redisClient, nil)
	ctx := context.Background()

	var n int
	if _, err := svc.EnumerateDomains(ctx, pagination.Options{}, countDomains(&n)); err != nil {
		t.Fatalf("EnumerateDomains() error = %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	if _, err := svc.EnumerateDomains(ctx, pagination.Options{}, countDomains(&n)); err != nil {
		t.Fatalf("EnumerateDomains() error = %v", err)
	}
	if count := mock.GetRequestCount(); count != 2 {
		t.Errorf("Service requests = %d, want 2 (entry expired)", count)
	}
}
