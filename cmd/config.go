package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/compilations/internal/filters"
	"github.com/desertthunder/compilations/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the embedded example configuration.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\nFill in [reddit] credentials before running serve.\n", path)
}

// ConfigCheck loads the configuration, validates it and compiles the filter rules.
func (r *Runner) ConfigCheck(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	registry, err := filters.FromConfig(config.Rules)
	if err != nil {
		return err
	}

	r.writePlain("✓ Configuration is valid\n")
	r.writePlain("Listen: %s\n", config.Server.Addr())
	r.writePlain("Sessions: %s\n", config.Session.Backend)
	r.writePlain("Rules: %d\n", registry.Len())
	for _, rule := range registry.Rules() {
		r.writePlain("  - %s\n", rule.Domain)
	}
	return nil
}

// requireArg returns the named positional argument or [shared.ErrMissingArgument].
func requireArg(cmd *cli.Command, name string) (string, error) {
	value := cmd.StringArg(name)
	if value == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return value, nil
}
