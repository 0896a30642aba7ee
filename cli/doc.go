/*
Package cli structures a small CLI as a [CommandSet] of [Command], each with its own [pflag] flag set.

A few policies apply to every command.

  - User-visible output goes through a [Printer], which writes to STDERR unless redirected.
  - Flags are NOT interspersed, so everything after the first positional argument is an argument.
  - Every command gets '-h' and '--help', and any of [HelpPatterns] as the first argument prints the set's usage.
  - A [UsageError] returned from a command prints that command's usage before the error is passed back.

Invocation always follows this form:

	CLI_NAME COMMAND [FLAGS...] [ARGS...]

[pflag]: https://github.com/spf13/pflag
*/
package cli
