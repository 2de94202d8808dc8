package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/embedify"
	"golang.org/x/sync/errgroup"
)

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	URLs        []string `arg:"" name:"url" help:"Page URLs to extract"`
	Concurrency int      `short:"c" env:"EMBEDIFY_CONCURRENCY" default:"4" help:"Pages fetched in parallel"`
	Strict      bool     `short:"s" help:"Fail pages missing a mandatory attribute"`
	Out         string   `short:"o" type:"path" help:"Write records to DIR/<host>/<path>.json instead of stdout"`

	ExtractFlags `embed:""`
}

// Run fetches every URL and emits the records in argument order. A failed
// page is reported on stderr and does not stop the others.
func (c *FetchCmd) Run(deps *Dependencies) error {
	recs := make([]*embedify.Record, len(c.URLs))
	errs := make([]error, len(c.URLs))

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(max(c.Concurrency, 1))
	for i, u := range c.URLs {
		g.Go(func() error {
			rec, err := deps.Records.Fetch(ctx, u)
			if err == nil && c.Strict && !rec.Valid() {
				err = embedify.Errorf(embedify.EINVALID, "missing mandatory attributes: %s", strings.Join(rec.Missing(), ", "))
			}
			recs[i], errs[i] = rec, err
			return nil
		})
	}
	_ = g.Wait()

	if err := embedify.ContextError(deps.Ctx); err != nil {
		return err
	}

	var failed int
	for i, u := range c.URLs {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "%s: %s\n", u, embedify.ErrorMessage(errs[i]))
			continue
		}
		if err := c.emit(deps, recs[i]); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(c.URLs))
	}
	return nil
}

func (c *FetchCmd) emit(deps *Dependencies, rec *embedify.Record) error {
	if deps.Writer != nil {
		return deps.Writer.WriteRecord(deps.Ctx, rec)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(deps.Stdout, "%s\n", data)
	return err
}
