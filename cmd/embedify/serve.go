package main

import (
	embedifyhttp "github.com/fwojciec/embedify/http"
)

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `short:"a" env:"EMBEDIFY_ADDR" default:":8080" help:"Listen address"`

	ExtractFlags `embed:""`
}

// Run serves records until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := embedifyhttp.NewServer(deps.Records, deps.Logger)
	s.Addr = c.Addr

	if err := s.Open(); err != nil {
		return err
	}
	<-deps.Ctx.Done()

	return s.Close()
}
