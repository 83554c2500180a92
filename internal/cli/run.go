// Package cli wires configuration, adapters and the runner behind the swap commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/swap"
	"github.com/aretw0/swap/internal/config"
	"github.com/aretw0/swap/internal/logging"
	"github.com/aretw0/swap/internal/presentation/tui"
	httpAdapter "github.com/aretw0/swap/pkg/adapters/http"
	"github.com/aretw0/swap/pkg/adapters/memory"
	"github.com/aretw0/swap/pkg/adapters/mock"
	"github.com/aretw0/swap/pkg/adapters/redis"
	"github.com/aretw0/swap/pkg/observability"
	"github.com/aretw0/swap/pkg/ports"
	"github.com/aretw0/swap/pkg/runner"
	"github.com/aretw0/swap/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// RunOptions contains all the configuration for the run command.
// Non-empty flag values override the config file and environment.
type RunOptions struct {
	ConfigPath string
	TerminalID string
	Listen     string
	RedisURL   string
	LogLevel   string
	NoReader   bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o *RunOptions) defaults() {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// LoadConfig reads the configuration and applies the flag overrides.
func LoadConfig(opts RunOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.TerminalID != "" {
		cfg.Terminal.ID = opts.TerminalID
	}
	if opts.Listen != "" {
		cfg.HTTP.Listen = opts.Listen
	}
	if opts.RedisURL != "" {
		cfg.Lease.RedisURL = opts.RedisURL
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.NoReader {
		cfg.Terminal.Reader = false
	}
	return cfg, cfg.Validate()
}

// Run leases the terminal and drives it from opts.Stdin until quit,
// end of input or ctx cancellation.
func Run(ctx context.Context, opts RunOptions) error {
	opts.defaults()
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	logger := logging.NewWithFormat(opts.Stderr, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)

	locker, closeLocker, err := newLocker(ctx, cfg.Lease)
	if err != nil {
		return err
	}
	defer closeLocker()

	leases := session.NewManager(
		session.WithLocker(locker),
		session.WithLeaseTTL(cfg.Lease.TTL),
		session.WithWait(cfg.Lease.Wait),
		session.WithLogger(logger),
	)
	lease, err := leases.Open(ctx, cfg.Terminal.ID)
	if err != nil {
		return err
	}
	defer func() {
		if err := lease.Release(context.Background()); err != nil {
			logger.Warn("lease release failed", "err", err)
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-lease.Lost():
			logger.Error("another process took over the terminal, stopping", "terminal_id", cfg.Terminal.ID)
			cancel()
		case <-runCtx.Done():
		}
	}()

	svc, err := mock.NewTransactionService(
		mock.WithAcceptedPin(cfg.Mock.AcceptedPin),
		mock.WithDelays(cfg.Mock.PromptDelay, cfg.Mock.VerifyDelay),
		mock.WithCustomers(cfg.Mock.Customers),
		mock.WithServiceLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize transaction service: %w", err)
	}

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))

	termOpts := []swap.Option{
		swap.WithTransactionService(svc),
		swap.WithHaptics(runner.Bell{W: opts.Stdout}),
		swap.WithHapticPulse(cfg.Terminal.HapticPulse),
		swap.WithLifecycleHooks(hooks),
		swap.WithLogger(logger),
		swap.WithWallet(cfg.Wallet.Bonus, cfg.Wallet.Rate),
		swap.WithMaxAmountDigits(cfg.Terminal.MaxAmountDigits),
		swap.WithPinLength(cfg.Terminal.PinLength),
	}
	var reader *mock.Reader
	if cfg.Terminal.Reader {
		reader = mock.NewReader()
		termOpts = append(termOpts, swap.WithReader(reader))
	}

	term, err := swap.New(termOpts...)
	if err != nil {
		return err
	}
	defer term.Close()
	metrics.SetScanState(term.Snapshot().Scan)

	runOpts := []runner.Option{
		runner.WithInput(opts.Stdin),
		runner.WithOutput(opts.Stdout),
		runner.WithLogger(logger),
	}
	if reader != nil {
		runOpts = append(runOpts, runner.WithTapper(reader))
	}

	if out, ok := opts.Stdout.(*os.File); ok && tui.IsInteractive(out) {
		tui.PrintBanner(out)
		render, err := tui.NewRenderer(tui.Width(out), true)
		if err != nil {
			logger.Warn("markdown renderer unavailable", "err", err)
		} else {
			runOpts = append(runOpts, runner.WithRenderer(render))
		}
		signals := runner.NewSignalManager()
		defer signals.Stop()
		runOpts = append(runOpts, runner.WithSignals(signals))
	}

	if cfg.HTTP.Listen != "" {
		srv := httpAdapter.NewServer(term,
			httpAdapter.WithGatherer(metrics.Gatherer),
			httpAdapter.WithLogger(logger),
		)
		stop, err := serve(cfg.HTTP.Listen, srv.Handler(), logger)
		if err != nil {
			return err
		}
		defer stop()
		runOpts = append(runOpts, runner.WithSnapshotFunc(srv.Publish))
	}

	logger.Info("terminal ready", "terminal_id", cfg.Terminal.ID, "reader", cfg.Terminal.Reader)
	err = runner.NewRunner(runOpts...).Run(runCtx, term)

	select {
	case <-lease.Lost():
		return fmt.Errorf("terminal %s: %w", cfg.Terminal.ID, ports.ErrLockLost)
	default:
	}
	if runner.IsExpectedExit(err) {
		return nil
	}
	return err
}

func newLocker(ctx context.Context, cfg config.LeaseConfig) (ports.DistributedLocker, func(), error) {
	if cfg.RedisURL == "" {
		return memory.NewLocker(), func() {}, nil
	}
	locker, err := redis.NewFromURL(cfg.RedisURL, cfg.Prefix)
	if err != nil {
		return nil, nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := locker.Ping(pctx); err != nil {
		_ = locker.Close()
		return nil, nil, fmt.Errorf("redis unreachable: %w", err)
	}
	return locker, func() { _ = locker.Close() }, nil
}

// serve starts the operational HTTP server. The returned func shuts it down.
func serve(addr string, handler http.Handler, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("ops server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server failed", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "err", err)
			_ = srv.Close()
		}
	}, nil
}
