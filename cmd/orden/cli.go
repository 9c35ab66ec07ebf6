package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/orden/internal/agent"
	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/ops"
	"github.com/hpungsan/orden/internal/tools"
	"github.com/hpungsan/orden/internal/web"
)

// newCLIApp creates the CLI application with all commands. s may be nil
// when only help or version output is needed.
func newCLIApp(s *services) *cli.App {
	app := &cli.App{
		Name:    "orden",
		Usage:   "Notes agent for study folders",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Act as this user (defaults to default_user from config)"},
		},
		Commands: []*cli.Command{
			askCmd(s),
			statusCmd(s),
			toolCmd(s),
			toolsCmd(s),
			foldersCmd(s),
			notesCmd(s),
			readCmd(s),
			searchCmd(s),
			editsCmd(s),
			customCmd(s),
			serveCmd(s),
			mcpCmd(s),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// userFor returns the --user flag or the configured default user.
func userFor(c *cli.Context, s *services) string {
	if u := strings.TrimSpace(c.String("user")); u != "" {
		return u
	}
	return s.cfg.DefaultUser
}

// askCmd creates the ask command.
func askCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Run a natural-language command through the agent",
		ArgsUsage: "<command...>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "history", Usage: "JSON file with prior turns [{\"role\",\"content\"}]"},
		},
		Action: func(c *cli.Context) error {
			command := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if command == "" {
				return outputError(errors.NewInvalidArguments("command is required"))
			}

			req := agent.Request{Command: command, UserID: userFor(c, s)}
			if path := c.String("history"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return outputError(errors.NewInvalidArguments(fmt.Sprintf("failed to read history: %v", err)))
				}
				if err := json.Unmarshal(data, &req.History); err != nil {
					return outputError(errors.NewInvalidArguments(fmt.Sprintf("invalid history: %v", err)))
				}
			}

			resp := s.agent.Handle(c.Context, req)
			if err := outputJSON(c.App.Writer, resp); err != nil {
				return err
			}
			if !resp.Success {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// statusCmd creates the status command.
func statusCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Report whether the agent has a model credential",
		Action: func(c *cli.Context) error {
			return outputJSON(c.App.Writer, s.agent.Status())
		},
	}
}

// toolCmd creates the tool command.
func toolCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:      "tool",
		Usage:     "Invoke a tool directly (arguments as JSON, or piped via stdin)",
		ArgsUsage: "<name> [json]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidArguments("tool name is required"))
			}
			name := c.Args().First()

			raw := c.Args().Get(1)
			if raw == "" && stdinHasData() {
				data, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				raw = data
			}
			if raw == "" {
				raw = "{}"
			}

			return outputResult(c.App.Writer, s.exec.Execute(c.Context, name, json.RawMessage(raw), userFor(c, s)))
		},
	}
}

// toolsCmd creates the tools command.
func toolsCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "List enabled tools",
		Action: func(c *cli.Context) error {
			type toolInfo struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			}
			defs := s.exec.Registry().Definitions()
			out := make([]toolInfo, len(defs))
			for i, d := range defs {
				out[i] = toolInfo{Name: d.Name, Description: d.Description}
			}
			return outputJSON(c.App.Writer, out)
		},
	}
}

// foldersCmd creates the folders command.
func foldersCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:  "folders",
		Usage: "List folders with note counts",
		Action: func(c *cli.Context) error {
			return runTool(c, s, "list_folders", nil)
		},
	}
}

// notesCmd creates the notes command.
func notesCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:      "notes",
		Usage:     "List the notes in a folder",
		ArgsUsage: "<folder>",
		Action: func(c *cli.Context) error {
			return runTool(c, s, "list_notes", map[string]any{"folderId": c.Args().First()})
		},
	}
}

// readCmd creates the read command.
func readCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Show a note with the user's edits applied",
		ArgsUsage: "<folder> <note>",
		Action: func(c *cli.Context) error {
			return runTool(c, s, "read_note", map[string]any{
				"folderId": c.Args().Get(0),
				"noteId":   c.Args().Get(1),
			})
		},
	}
}

// searchCmd creates the search command.
func searchCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search note titles and content",
		ArgsUsage: "<query...>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Restrict to one folder"},
		},
		Action: func(c *cli.Context) error {
			args := map[string]any{"query": strings.Join(c.Args().Slice(), " ")}
			if folder := c.String("folder"); folder != "" {
				args["folderId"] = folder
			}
			return runTool(c, s, "search_notes", args)
		},
	}
}

// editsCmd creates the edits command.
func editsCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:  "edits",
		Usage: "List the user's edits to static notes",
		Action: func(c *cli.Context) error {
			out, err := ops.ListEdits(c.Context, s.deps, userFor(c, s))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, out)
		},
	}
}

// customCmd creates the custom command.
func customCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:  "custom",
		Usage: "List the user's custom notes",
		Action: func(c *cli.Context) error {
			out, err := ops.ListCustomNotes(c.Context, s.deps, userFor(c, s))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, out)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 3001, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()
			s.watchCatalog(ctx)

			srv := web.NewServer(s.agent, s.exec, s.deps, web.Options{
				Version:     Version,
				Bind:        c.String("bind"),
				Port:        c.Int("port"),
				DefaultUser: userFor(c, s),
				Logger:      s.logger,
			})
			return web.Run(srv, s.logger)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(s *services) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the tools over MCP stdio (the default when stdin is piped)",
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()
			s.watchCatalog(ctx)
			return runMCP(s, userFor(c, s))
		},
	}
}

// Helper functions

// runTool executes a tool with args for the calling user and prints its outcome.
func runTool(c *cli.Context, s *services, name string, args map[string]any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return outputError(errors.NewInternal(err))
	}
	return outputResult(c.App.Writer, s.exec.Execute(c.Context, name, raw, userFor(c, s)))
}

// outputResult prints a tool payload, or exits with the tool error.
func outputResult(w io.Writer, res tools.Result) error {
	if res.IsError() {
		return outputError(res.Err)
	}
	return outputJSON(w, res.Payload)
}

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if oErr, ok := err.(*errors.OrdenError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", oErr.Code, oErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
