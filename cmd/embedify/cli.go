package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/embedify"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Records embedify.RecordService
	Writer  embedify.RecordWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" env:"EMBEDIFY_VERBOSE" help:"Log at debug level"`
	LogJSON bool `name:"log-json" env:"EMBEDIFY_LOG_JSON" help:"Log as JSON instead of text"`

	Fetch FetchCmd `cmd:"" help:"Extract Open Graph records from one or more pages"`
	Serve ServeCmd `cmd:"" help:"Serve records over HTTP as JSON or JSONP"`
}

// ExtractFlags configure the extraction pipeline. Shared by all commands.
type ExtractFlags struct {
	Timeout          time.Duration `short:"t" env:"EMBEDIFY_FETCH_TIMEOUT" default:"10s" help:"Page fetch timeout"`
	MaxRedirects     int           `env:"EMBEDIFY_MAX_REDIRECTS" default:"10" help:"Maximum redirects followed per page"`
	ProbeTimeout     time.Duration `env:"EMBEDIFY_PROBE_TIMEOUT" default:"5s" help:"Image dimension probe timeout"`
	MaxProbes        int           `env:"EMBEDIFY_MAX_PROBES" default:"10" help:"Maximum images probed per page"`
	ProbeConcurrency int           `env:"EMBEDIFY_PROBE_CONCURRENCY" default:"4" help:"Image probes run in parallel"`
	ProbeRate        float64       `env:"EMBEDIFY_PROBE_RATE" default:"0" help:"Image probes per second per host (0 = unlimited)"`
	Retries          int           `env:"EMBEDIFY_RETRIES" default:"0" help:"Retries for failed page fetches (1s, 2s, 4s backoff)"`
	Browser          bool          `env:"EMBEDIFY_BROWSER" help:"Fetch pages with headless Chrome"`
}
