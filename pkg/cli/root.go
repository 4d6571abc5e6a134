package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// app carries what every subcommand shares
type app struct {
	out        io.Writer
	errOut     io.Writer
	configPath string
}

// NewRootCommand creates the root command writing to stdout and stderr
func NewRootCommand() *Command {
	return NewRootCommandWithOutput(os.Stdout, os.Stderr)
}

// NewRootCommandWithOutput creates the root command with explicit writers
func NewRootCommandWithOutput(out, errOut io.Writer) *Command {
	a := &app{out: out, errOut: errOut}

	root := &Command{
		Name:        "parse-analytics",
		Description: "Parse Analytics - track app opens and custom events",
		Subcommands: make(map[string]*Command),
		Flags:       newFlagSet("parse-analytics", errOut),
	}
	root.Flags.StringVar(&a.configPath, "config", "", "Path to a YAML config file")

	// Add subcommands
	root.Subcommands["event"] = newEventCommand(a)
	root.Subcommands["app-opened"] = newAppOpenedCommand(a)

	root.Run = func(ctx context.Context, args []string) error {
		return root.dispatch(ctx, args)
	}

	return root
}

// Execute parses the root flags in args and runs the selected subcommand
func (c *Command) Execute(ctx context.Context, args []string) error {
	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return c.usage()
		}
		return err
	}
	return c.dispatch(ctx, c.Flags.Args())
}

func (c *Command) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.usage()
	}

	// Check for help
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		return c.usage()
	}

	// Check for subcommand
	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(ctx, args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	out := c.Flags.Output()
	fmt.Fprintf(out, "Usage: %s [-config file] <command> [args]\n\n", c.Name)
	fmt.Fprintf(out, "Commands:\n")

	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}

func newFlagSet(name string, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	return fs
}
