package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kitbuilder587/cine-bot/internal/config"
	"github.com/kitbuilder587/cine-bot/internal/controller"
	"github.com/kitbuilder587/cine-bot/internal/search"
	"github.com/kitbuilder587/cine-bot/internal/search/cineapi"
	"github.com/kitbuilder587/cine-bot/internal/terminal"
)

var errSearchFailed = errors.New("search failed")

// SearchCommand - разовый поиск: cine search [--more N] [--output text|json] query...
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search movies matching a description",
		ArgsUsage: "<description...>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "more",
				Usage: "Load N more batches after the first one",
				Value: 0,
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output format: text or json",
				Value: "text",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("a movie description is required")
			}
			output := c.String("output")
			if output != "text" && output != "json" {
				return fmt.Errorf("unknown output format %q", output)
			}

			client, logger, err := newSearchClient(c)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runSearch(ctx, client, logger, os.Stdout, searchOptions{
				Query:  query,
				More:   int(c.Int("more")),
				Output: output,
				Width:  int(c.Int("width")),
			})
		},
	}
}

// REPLCommand - интерактивная сессия: строки уходят в поиск,
// :more, :clear и :quit управляют сессией.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Interactive search session",
		Action: func(ctx context.Context, c *cli.Command) error {
			client, logger, err := newSearchClient(c)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runREPL(ctx, client, logger, os.Stdin, os.Stdout, int(c.Int("width")))
		},
	}
}

func newSearchClient(c *cli.Command) (search.SearchClient, *zap.Logger, error) {
	cfg := config.SearchConfig{
		BaseURL:    c.String("api-url"),
		PromptType: c.String("prompt-type"),
		Timeout:    time.Duration(c.Int("timeout")) * time.Second,
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := config.NewLogger(config.LogConfig{Level: c.String("log-level"), Service: "cine"})
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	client := cineapi.New(cineapi.Config{
		BaseURL:    cfg.BaseURL,
		PromptType: cfg.PromptType,
		Timeout:    cfg.Timeout,
	}, logger, nil)
	return client, logger, nil
}

type searchOptions struct {
	Query  string
	More   int
	Output string
	Width  int
}

func runSearch(ctx context.Context, client search.SearchClient, logger *zap.Logger, w io.Writer, opts searchOptions) error {
	ctrl := controller.New(client, logger, nil)
	renderer := terminal.New(w, opts.Width)
	text := opts.Output != "json"

	state, _ := ctrl.SubmitQuery(ctx, opts.Query)
	if text {
		if err := renderer.RenderState(state, false); err != nil {
			return err
		}
	}

	for i := 0; i < opts.More && state.CanLoadMore() && !state.HasError(); i++ {
		state, _ = ctrl.LoadMore(ctx)
		if text {
			if err := renderer.RenderState(state, true); err != nil {
				return err
			}
		}
	}

	if !text {
		if err := terminal.WriteJSON(w, state); err != nil {
			return err
		}
	}

	if state.Phase == controller.Failed {
		return errSearchFailed
	}
	return nil
}

func runREPL(ctx context.Context, client search.SearchClient, logger *zap.Logger, in io.Reader, out io.Writer, width int) error {
	ctrl := controller.New(client, logger, nil)
	renderer := terminal.New(out, width)

	fmt.Fprintln(out, "Describe a movie. Commands: :more, :clear, :quit")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case ":quit", ":q":
			return nil
		case ":clear":
			ctrl.ClearQuery()
			fmt.Fprintln(out, "Query cleared.")
		case ":more":
			state, outcome := ctrl.LoadMore(ctx)
			if outcome == controller.Ignored {
				fmt.Fprintln(out, "Nothing to continue. Describe a movie first.")
				continue
			}
			renderer.RenderState(state, true)
		case "":
		default:
			ctrl.SetQuery(line)
			state, _ := ctrl.SubmitQuery(ctx, line)
			renderer.RenderState(state, false)
		}
	}
}
