package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Sternrassler/domains-client/internal/config"
	"github.com/Sternrassler/domains-client/pkg/client"
	"github.com/Sternrassler/domains-client/pkg/logging"
	"github.com/Sternrassler/domains-client/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath  string
	endpoint    string
	logLevel    string
	redisAddr   string
	metricsAddr string

	cfg           config.Config
	client        *client.Client
	redis         *redis.Client
	logger        zerolog.Logger
	stopMetrics   context.CancelFunc
	metricsErrors chan error
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "domainsctl",
		Short: "Query the domains service",
		Long: `domainsctl calls the domains service. List commands page through results
automatically; pass --marker or --max-items to control paging yourself.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&a.endpoint, "endpoint", "", "Service endpoint URL (env DOMAINS_ENDPOINT)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (env DOMAINS_LOG_LEVEL)")
	flags.StringVar(&a.redisAddr, "redis-addr", "", "Redis address for shared throttle state and caching (env DOMAINS_REDIS_ADDR)")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running (env DOMAINS_METRICS_ADDR)")

	cmd.AddCommand(
		newListDomainsCommand(a),
		newViewBillingCommand(a),
		newListOperationsCommand(a),
		newGetDomainCommand(a),
		newCheckAvailabilityCommand(a),
	)

	return cmd
}

// setup resolves configuration (file, then env, then flags) and builds the client.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = a.endpoint
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr = a.redisAddr
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = a.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := logging.ParseLogLevel(cfg.Log.Level)
	logging.Setup(logging.Config{
		Level:  level,
		Pretty: cfg.Log.Pretty,
		Output: a.stderr,
	})
	a.logger = logging.NewLogger("domainsctl")

	ctx := cmd.Context()

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.redis.Close()
			a.redis = nil
			return fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.logger.Debug().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	clientCfg := client.DefaultConfig(cfg.Endpoint, cfg.UserAgent)
	clientCfg.Profile = cfg.Profile
	clientCfg.Redis = a.redis
	clientCfg.Timeout = cfg.Timeout
	clientCfg.CacheTTL = cfg.CacheTTL
	clientCfg.Retry.MaxAttempts = cfg.MaxRetries + 1

	a.client, err = client.New(clientCfg)
	if err != nil {
		if a.redis != nil {
			a.redis.Close()
		}
		return fmt.Errorf("failed to create client: %w", err)
	}

	if cfg.Metrics.Addr != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		a.stopMetrics = cancel
		a.metricsErrors = make(chan error, 1)
		go func() {
			a.metricsErrors <- metrics.Serve(metricsCtx, cfg.Metrics.Addr)
		}()
	}

	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.stopMetrics != nil {
		a.stopMetrics()
		if err := <-a.metricsErrors; err != nil {
			a.logger.Warn().Err(err).Msg("Metrics server failed")
		}
	}
	if a.client != nil {
		a.client.Close()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
