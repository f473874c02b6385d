package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/web"
)

// Output formats.
const (
	formatJSON     = "json"
	formatText     = "text"
	formatMarkdown = "markdown"
)

// newCLIApp creates the CLI application with all commands. a may be nil when
// only help or version output is needed.
func newCLIApp(a *app) *cli.App {
	cliApp := &cli.App{
		Name:    "tome",
		Usage:   "Tabletop rules reference: bestiary, spells and items",
		Version: Version,
		Commands: []*cli.Command{
			searchCmd(a),
			showCmd(a),
			statsCmd(a),
			bookmarkCmd(a),
			bookmarksCmd(a),
			exportCmd(a),
			importCmd(a),
			serveCmd(a),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

// searchCmd creates the search command.
func searchCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search entries; the query mixes free text with key:value filters",
		ArgsUsage: "[query...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Value: "all", Usage: "all|bestiary|spell|item|bookmarks"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: formatJSON, Usage: "Output format: json|text"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(a.cat, a.bm, ops.SearchInput{
				Category: c.String("category"),
				Query:    strings.Join(c.Args().Slice(), " "),
			})
			if err != nil {
				return outputError(err)
			}

			switch c.String("format") {
			case formatJSON:
				return outputJSON(c.App.Writer, output)
			case formatText:
				return outputTable(c.App.Writer, output.Items)
			default:
				return outputError(errors.NewInvalidRequest("format must be one of: json, text"))
			}
		},
	}
}

// showCmd creates the show command.
func showCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one entry by identity key (variant:name) or ID",
		ArgsUsage: "[key]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Entry ID"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: formatJSON, Usage: "Output format: json|markdown"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(a.cat, a.bm, ops.FetchInput{
				Key: strings.Join(c.Args().Slice(), " "),
				ID:  c.String("id"),
			})
			if err != nil {
				return outputError(err)
			}

			switch c.String("format") {
			case formatJSON:
				return outputJSON(c.App.Writer, output)
			case formatMarkdown:
				_, err := fmt.Fprintln(c.App.Writer, output.Markdown)
				return err
			default:
				return outputError(errors.NewInvalidRequest("format must be one of: json, markdown"))
			}
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Count entries per category",
		Action: func(c *cli.Context) error {
			return outputJSON(c.App.Writer, ops.Stats(a.cat, a.bm))
		},
	}
}

// bookmarkCmd creates the bookmark command.
func bookmarkCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "bookmark",
		Usage:     "Toggle the bookmark on one entry",
		ArgsUsage: "[key]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Entry ID"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ToggleBookmark(c.Context, a.cat, a.bm, ops.ToggleInput{
				Key: strings.Join(c.Args().Slice(), " "),
				ID:  c.String("id"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// bookmarksCmd creates the bookmarks command.
func bookmarksCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "bookmarks",
		Usage: "List bookmarked entries",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: formatJSON, Usage: "Output format: json|text"},
		},
		Action: func(c *cli.Context) error {
			output := ops.ListBookmarks(a.cat, a.bm)
			switch c.String("format") {
			case formatJSON:
				return outputJSON(c.App.Writer, output)
			case formatText:
				if err := outputTable(c.App.Writer, output.Items); err != nil {
					return err
				}
				for _, k := range output.Dangling {
					fmt.Fprintf(c.App.Writer, "%s\t(not in catalog)\n", k)
				}
				return nil
			default:
				return outputError(errors.NewInvalidRequest("format must be one of: json, text"))
			}
		},
	}
}

// exportCmd creates the export command.
func exportCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export bookmarks to JSONL (.jsonl or .jsonl.zst)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: ~/.tome/exports/bookmarks-<timestamp>.jsonl)"},
			&cli.BoolFlag{Name: "compress", Aliases: []string{"z"}, Usage: "Write .jsonl.zst when using the default path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportBookmarks(c.Context, a.bm, a.cfg, ops.ExportInput{
				Path:     c.String("path"),
				Compress: c.Bool("compress"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import bookmarks from a JSONL export",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "merge", Usage: "Import mode: merge|replace"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			output, err := ops.ImportBookmarks(c.Context, a.cat, a.bm, a.cfg, ops.ImportInput{
				Path: c.Args().First(),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port must be between 1 and 65535, got %d", port)))
			}
			srv, err := web.NewServer(a.cat, a.bm, a.log, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(c.Context, srv, a.log)
		},
	}
}

// Helper functions

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputTable writes one aligned line per entry: name, variant, key.
func outputTable(w io.Writer, items []ops.EntryItem) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range items {
		mark := " "
		if it.Bookmarked {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\n", mark, entry.Display(it.Name), it.Variant.Label(), it.Key)
	}
	return tw.Flush()
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
