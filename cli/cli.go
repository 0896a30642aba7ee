package cli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	HelpPatterns      = []string{"--help", "-h", "help"} // HelpPatterns are first arguments that print the usage of a [CommandSet].

	keyCleansePattern = regexp.MustCompile(`\s`)
)

// CommandFunc is the work done by a [Command], after its flags are parsed.
type CommandFunc = func(ctx context.Context, flags *flag.FlagSet, printer *Printer) error

// Command is a single sub-command in a [CommandSet].
type Command struct {
	flags      *flag.FlagSet
	exec       CommandFunc
	path       string
	shortUsage string
	argUsage   string
	printer    *Printer
}

func cleanseKey(key string) string {
	return keyCleansePattern.ReplaceAllString(strings.ToLower(key), "")
}

func newCommand(key, parent, shortUsage string, printer *Printer) *Command {
	fs := flag.NewFlagSet(key, flag.ContinueOnError)
	fs.BoolP("help", "h", false, "Prints this usage information")
	fs.SetInterspersed(false)
	fs.SetOutput(printer.Writer())
	cmd := &Command{
		flags:      fs,
		path:       strings.TrimSpace(parent + " " + key),
		shortUsage: shortUsage,
		printer:    printer,
	}
	fs.Usage = cmd.PrintUsage
	return cmd
}

// Does sets the [CommandFunc] run by this [Command].
// A command without one prints its usage.
func (c *Command) Does(commandFunc CommandFunc) *Command {
	c.exec = commandFunc
	return c
}

// Usage describes the arguments of the [Command], like "[FLAGS] FILE...".
func (c *Command) Usage(format string, args ...any) *Command {
	c.argUsage = fmt.Sprintf(format, args...)
	return c
}

// Flags returns the [flag.FlagSet] for this [Command], which flags should be added to before [CommandSet.Exec].
func (c *Command) Flags() *flag.FlagSet {
	return c.flags
}

// CommandPath returns how this [Command] is invoked, like "eventtrace run".
func (c *Command) CommandPath() string {
	return c.path
}

func (c *Command) PrintUsage() {
	var buf strings.Builder
	buf.WriteString(c.shortUsage + "\n\nUSAGE:\n  " + c.path)
	if len(c.argUsage) > 0 {
		buf.WriteString(" " + c.argUsage)
	}
	buf.WriteString("\n\nFLAGS\n")
	buf.WriteString(c.flags.FlagUsages())
	c.printer.Print(buf.String())
}

// Exec parses args as flags and runs the [Command].
// Flag errors are returned as a [UsageError], and any [UsageError] prints this command's usage.
func (c *Command) Exec(ctx context.Context, args []string) error {
	err := c.run(ctx, args)
	if IsUsageError(err) {
		c.PrintUsage()
	}
	return err
}

func (c *Command) run(ctx context.Context, args []string) error {
	if err := c.flags.Parse(args); err != nil {
		return NewUsageError("%w", err)
	}
	if help, _ := c.flags.GetBool("help"); help || c.exec == nil {
		c.PrintUsage()
		return nil
	}
	return c.exec(ctx, c.flags, c.printer)
}

// CommandSet is the root of a CLI, dispatching to a [Command] by its key.
type CommandSet struct {
	name        string
	description string
	notes       string
	commands    map[string]*Command
	printer     *Printer
}

// NewCommandSet creates a [CommandSet] for the named binary.
// A nil printer writes to STDERR.
func NewCommandSet(name string, printer *Printer) *CommandSet {
	if printer == nil {
		printer = NewPrinter(nil)
	}
	return &CommandSet{
		name:     name,
		commands: map[string]*Command{},
		printer:  printer,
	}
}

// Describe sets the text printed before the command list in [CommandSet.PrintUsage].
func (s *CommandSet) Describe(format string, args ...any) *CommandSet {
	s.description = fmt.Sprintf(format, args...)
	return s
}

// Notes sets the text printed after the command list in [CommandSet.PrintUsage], like environment variables.
func (s *CommandSet) Notes(format string, args ...any) *CommandSet {
	s.notes = fmt.Sprintf(format, args...)
	return s
}

// AddCommand adds a [Command] to the set.
// The key is lower-cased and has its whitespace removed.
func (s *CommandSet) AddCommand(key, shortUsage string) *Command {
	key = cleanseKey(key)
	cmd := newCommand(key, s.name, shortUsage, s.printer)
	s.commands[key] = cmd
	return cmd
}

func (s *CommandSet) Printer() *Printer {
	return s.printer
}

// Exec runs the [Command] named by the first argument with the rest.
// Calling this with no arguments, or with one of [HelpPatterns] first, prints usage.
// An unknown command is returned as a [UsageError] wrapping [ErrUnknownCommand].
func (s *CommandSet) Exec(ctx context.Context, args []string) error {
	if len(args) == 0 || slices.Contains(HelpPatterns, args[0]) {
		s.PrintUsage()
		return nil
	}
	cmd, ok := s.commands[strings.ToLower(args[0])]
	if !ok {
		s.PrintUsage()
		return NewUsageError("%w: %s", ErrUnknownCommand, args[0])
	}
	return cmd.Exec(ctx, args[1:])
}

func (s *CommandSet) PrintUsage() {
	var buf strings.Builder
	if len(s.description) > 0 {
		buf.WriteString(strings.TrimSuffix(s.description, "\n") + "\n\n")
	}
	buf.WriteString(fmt.Sprintf("USAGE:\n  %s COMMAND [FLAGS] [ARGS]\n\nCOMMANDS\n", s.name))
	buf.WriteString(s.CommandUsages())
	if len(s.notes) > 0 {
		buf.WriteString("\n" + strings.TrimSuffix(s.notes, "\n") + "\n")
	}
	s.printer.Print(buf.String())
}

// CommandUsages lists each command's key and short usage, sorted by key.
func (s *CommandSet) CommandUsages() string {
	var (
		buf    strings.Builder
		keys   = make([]string, 0, len(s.commands))
		maxLen int
	)
	for key := range s.commands {
		keys = append(keys, key)
		maxLen = max(maxLen, len(key))
	}
	slices.Sort(keys)
	fmtStr := fmt.Sprintf("  %%-%ds\t%%s\n", maxLen)
	for _, key := range keys {
		buf.WriteString(fmt.Sprintf(fmtStr, key, s.commands[key].shortUsage))
	}
	return buf.String()
}
