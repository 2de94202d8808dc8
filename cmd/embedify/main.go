package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/embedify"
	"github.com/fwojciec/embedify/extract"
	"github.com/fwojciec/embedify/fs"
	"github.com/fwojciec/embedify/goquery"
	embedifyhttp "github.com/fwojciec/embedify/http"
	"github.com/fwojciec/embedify/rod"
	embedifyslog "github.com/fwojciec/embedify/slog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// RecordService, if set, is used instead of the network-backed
	// extractor. Used for end-to-end testing.
	RecordService embedify.RecordService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("embedify"),
		kong.Description("Extract Open Graph metadata from web pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'embedify --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.Verbose, cli.LogJSON)

	flags := cli.Fetch.ExtractFlags
	if strings.HasPrefix(kongCtx.Command(), "serve") {
		flags = cli.Serve.ExtractFlags
	}

	if m.RecordService != nil {
		deps.Records = m.RecordService
	} else {
		svc, closeFn, err := newRecordService(flags, deps.Logger)
		if err != nil {
			if flags.Browser {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --browser")
			}
			return err
		}
		defer closeFn()
		deps.Records = svc
	}

	if cli.Fetch.Out != "" {
		deps.Writer = fs.NewWriter(cli.Fetch.Out)
	}

	return kongCtx.Run(deps)
}

// newLogger builds the stderr logger used by every command.
func newLogger(w io.Writer, verbose, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newRecordService wires the extraction pipeline with logging decorators.
// The returned func releases the fetcher.
func newRecordService(flags ExtractFlags, logger *slog.Logger) (embedify.RecordService, func() error, error) {
	var fetcher embedify.Fetcher
	if flags.Browser {
		f, err := rod.NewFetcher(
			rod.WithFetchTimeout(flags.Timeout),
			rod.WithMaxRedirects(flags.MaxRedirects),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	} else {
		fetcher = embedifyhttp.NewFetcher(
			embedifyhttp.WithTimeout(flags.Timeout),
			embedifyhttp.WithMaxRedirects(flags.MaxRedirects),
		)
	}
	fetcher = embedifyslog.NewLoggingFetcher(fetcher, logger)
	if flags.Retries > 0 {
		fetcher = &extract.RetryFetcher{Fetcher: fetcher, Delays: retryDelays(flags.Retries)}
	}

	prober := embedifyslog.NewLoggingProber(
		embedifyhttp.NewImageProber(embedifyhttp.WithProbeTimeout(flags.ProbeTimeout)),
		logger,
	)

	e := &extract.Extractor{
		Fetcher:          fetcher,
		Scanner:          goquery.NewScanner(),
		Prober:           prober,
		MaxProbes:        flags.MaxProbes,
		ProbeConcurrency: flags.ProbeConcurrency,
		ProbeTimeout:     flags.ProbeTimeout,
	}
	if flags.ProbeRate > 0 {
		e.RateLimiter = extract.NewDomainLimiter(flags.ProbeRate, 1)
	}

	return embedifyslog.NewLoggingRecordService(e, logger), fetcher.Close, nil
}

// retryDelays returns n backoff delays, doubling from one second.
func retryDelays(n int) []time.Duration {
	delays := extract.DefaultRetryDelays()
	for len(delays) < n {
		delays = append(delays, 2*delays[len(delays)-1])
	}
	return delays[:n]
}
