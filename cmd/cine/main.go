package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "cine",
		Usage: "Find movies by describing them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Search backend base URL",
				Value:   "http://127.0.0.1:5000",
				Sources: cli.EnvVars("CINE_API_URL"),
			},
			&cli.StringFlag{
				Name:    "prompt-type",
				Usage:   "Prompt type sent with initial searches",
				Value:   "initial",
				Sources: cli.EnvVars("CINE_PROMPT_TYPE"),
			},
			&cli.IntFlag{
				Name:    "timeout",
				Usage:   "Backend request timeout in seconds",
				Value:   30,
				Sources: cli.EnvVars("CINE_API_TIMEOUT_SEC"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Card width in columns",
				Value: 80,
			},
		},
		Commands: []*cli.Command{
			SearchCommand(),
			REPLCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cine:", err)
		os.Exit(1)
	}
}
