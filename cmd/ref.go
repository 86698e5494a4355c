package main

import (
	"context"

	"github.com/desertthunder/compilations/internal/filters"
	"github.com/desertthunder/compilations/internal/services"
	"github.com/desertthunder/compilations/internal/shared"
	"github.com/urfave/cli/v3"
)

// RefEncode prints the encoded reference for a URL.
func (r *Runner) RefEncode(ctx context.Context, cmd *cli.Command) error {
	link, err := requireArg(cmd, "url")
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", shared.EncodeReference(link))
}

// RefDecode prints the URL behind a reference.
func (r *Runner) RefDecode(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "ref")
	if err != nil {
		return err
	}

	link, err := shared.DecodeReference(ref)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", link)
}

// Resolve runs the configured rules against a reference and prints the media URL.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "ref")
	if err != nil {
		return err
	}
	if cmd.Bool("url") {
		ref = shared.EncodeReference(ref)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	registry, err := filters.FromConfig(config.Rules)
	if err != nil {
		return err
	}

	resolver := services.NewResolver(r.client(config), registry, r.logger)
	media, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(media, false)
	}
	return r.writePlain("%s\n", media.URL)
}
