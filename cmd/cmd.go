// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file (.toml, .yaml or .yml)",
			Value:   "config.toml",
			Sources: cli.EnvVars("COMPILATIONS_CONFIG"),
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// serveCommand runs the web service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides server.host and server.port",
			},
		},
		Action: r.Serve,
	}
}

// configCommand handles configuration files
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file operations",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write the example configuration to --config",
				Action: r.ConfigInit,
			},
			{
				Name:   "check",
				Usage:  "Load and validate the configuration, including filter rules",
				Action: r.ConfigCheck,
			},
		},
	}
}

// refCommand converts between URLs and encoded item references
func refCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "ref",
		Usage: "Encoded item reference helpers",
		Commands: []*cli.Command{
			{
				Name:  "encode",
				Usage: "Print the reference for a URL",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "url",
					},
				},
				Action: r.RefEncode,
			},
			{
				Name:  "decode",
				Usage: "Print the URL behind a reference",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "ref",
					},
				},
				Action: r.RefDecode,
			},
		},
	}
}

// resolveCommand runs the item resolver outside the web service
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Fetch the page behind a reference and print its media URL",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "ref",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "url",
				Usage: "Treat the argument as a plain URL instead of a reference",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Resolve,
	}
}
