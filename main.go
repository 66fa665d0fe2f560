package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"github.com/mcncl/psetkit/internal/config"
	"github.com/mcncl/psetkit/internal/errors"
	"github.com/mcncl/psetkit/internal/formatter"
	"github.com/mcncl/psetkit/internal/parser"
	"github.com/mcncl/psetkit/internal/psets"
)

// CLI defines the command-line interface
type CLI struct {
	Config      string `help:"Path to a config file. Defaults to the nearest .psetkit.yml." short:"c" type:"path"`
	InputFormat string `help:"Input format (auto, json, yaml)." short:"I" default:"auto" enum:"auto,json,yaml"`
	Format      string `help:"Output format (text, json, yaml)." short:"f" default:"text" enum:"text,json,yaml"`
	Color       string `help:"Colorize text output (auto, always, never)." default:"auto" enum:"auto,always,never"`
	Delimiter   string `help:"Separator between keys of a flattened address." short:"D" default:":"`
	KeyCase     string `help:"Rename nested keys (snake, kebab, camel, lower_camel, screaming_snake)." short:"k"`
	Debug       bool   `help:"Enable debug logging." short:"d"`

	Parse   ParseCmd   `cmd:"" help:"Validate a property set tree and print its wire form."`
	Flatten FlattenCmd `cmd:"" help:"Print every leaf under its flattened address."`
	Tree    TreeCmd    `cmd:"" help:"Print the tree view."`
	Items   ItemsCmd   `cmd:"" help:"Print the key/value pairs of the root node."`
	Inspect InspectCmd `cmd:"" help:"Summarize the structure of a tree."`
	Diff    DiffCmd    `cmd:"" help:"Compare two trees leaf by leaf."`
	Patch   PatchCmd   `cmd:"" help:"Apply a JSON Patch or JSON Merge Patch."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Context holds the runtime context
type Context struct {
	Config *config.Config
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Color  bool
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs one command line and returns the process exit code
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	exited, exitCode := false, 0
	app, err := kong.New(&cli,
		kong.Name("psetkit"),
		kong.Description("A tool to inspect, flatten and edit property set trees"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			exited, exitCode = true, code
		}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	kctx, err := app.Parse(args)
	if exited {
		// --help already printed the usage
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "psetkit: error: %v\n", err)
		return 1
	}

	ctx, err := cli.newContext(stdin, stdout, stderr)
	if err == nil {
		err = kctx.Run(ctx)
	}
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(stderr, "\nFor help, run: psetkit --help\n")
		return 1
	}
	return 0
}

// newContext loads the configuration, with command line values taking
// precedence over the config file.
func (c *CLI) newContext(stdin io.Reader, stdout, stderr io.Writer) (*Context, error) {
	configPath := c.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, config.CLIOverrides{
		Delimiter:    c.Delimiter,
		OutputFormat: c.Format,
		Color:        c.Color,
		InputFormat:  c.InputFormat,
		KeyCase:      c.KeyCase,
		Debug:        c.Debug,
	})
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	logger := newLogger(stderr, cfg.Dev.Debug)
	if configPath != "" {
		logger.Debug("loaded config file", "path", configPath)
	}

	return &Context{
		Config: cfg,
		Logger: logger,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Color:  useColor(cfg.Output.Color, stdout),
	}, nil
}

// useColor resolves the color mode against the output stream
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *Context) formatter() *formatter.Formatter {
	return formatter.NewFormatterWithConfig(c.Config, c.Color)
}

// readDocument reads a JSON or YAML document from a file, or from stdin when
// path is empty or "-".
func (c *Context) readDocument(path string) (parser.Document, error) {
	format, err := parser.ParseFormat(c.Config.Input.Format)
	if err != nil {
		return parser.Document{}, err
	}

	if path != "" && path != "-" {
		c.Logger.Debug("reading file", "path", path, "format", string(format))
		return parser.ParseFile(path, format)
	}

	// An interactive terminal has nothing piped in
	if f, ok := c.Stdin.(*os.File); ok && isTerminal(f) {
		return parser.Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	c.Logger.Debug("reading stdin", "format", string(format))
	return parser.Parse(c.Stdin, format)
}

// readTree reads a document and decodes it as a property set tree, renaming
// nested keys when naming rules are configured.
func (c *Context) readTree(path string) (psets.Psets, error) {
	doc, err := c.readDocument(path)
	if err != nil {
		return psets.Psets{}, err
	}
	p, err := psets.FromJSON(doc.Root)
	if err != nil {
		return psets.Psets{}, err
	}
	c.Logger.Debug("decoded tree", "root", p.Kind().String(), "format", string(doc.Format))

	if c.Config.RenamesKeys() {
		p = p.RenameKeys(c.Config.KeyName)
	}
	return p, nil
}
