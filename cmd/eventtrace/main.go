package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/saylorsolutions/eventx/cli"
	"github.com/saylorsolutions/eventx/customevent"
	"github.com/saylorsolutions/eventx/host"
	"github.com/saylorsolutions/eventx/mutation"
	"github.com/saylorsolutions/eventx/scenario"
	"github.com/saylorsolutions/eventx/telemetry"
	flag "github.com/spf13/pflag"
)

const serviceName = "eventtrace"

const envUsage = `ENVIRONMENT:
  EVENTTRACE_LOG_LEVEL      Log level (DEBUG, INFO, WARN, ERROR), default WARN
  EVENTTRACE_COLOR          auto, always, or never, default auto
  EVENTTRACE_OTEL_ENDPOINT  OTLP/HTTP endpoint for trigger spans, tracing is off when empty`

func main() {
	ctx, stop := cli.SignalContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	return commands(out).Exec(ctx, args)
}

func commands(out io.Writer) *cli.CommandSet {
	set := cli.NewCommandSet(serviceName, cli.NewPrinter(out)).
		Describe("eventtrace replays attribute mutation scenarios and traces the custom events they fire.").
		Notes(envUsage)

	runCmd := set.AddCommand("run", "Replays scenario files and prints what listeners observe").
		Usage("[FLAGS] FILE...")
	verbose := runCmd.Flags().BoolP("verbose", "v", false, "Log listener bindings and activation at debug level")
	color := runCmd.Flags().String("color", colorAuto, "Color trace labels: auto, always, or never (EVENTTRACE_COLOR)")
	runCmd.Does(func(ctx context.Context, flags *flag.FlagSet, printer *cli.Printer) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		if flags.Changed("color") {
			conf.Color = *color
		}
		if *verbose {
			conf.LogLevel = slog.LevelDebug
		}
		if err := validateColor(conf.Color); err != nil {
			return err
		}
		if flags.NArg() == 0 {
			return cli.NewUsageError("at least one scenario file is required")
		}
		return runScenarios(ctx, conf, flags.Args(), printer.Writer())
	})

	set.AddCommand("types", "Lists the custom event types eventtrace registers").
		Does(func(_ context.Context, _ *flag.FlagSet, printer *cli.Printer) error {
			return listTypes(printer)
		})
	return set
}

func runScenarios(ctx context.Context, conf config, files []string, out io.Writer) error {
	log := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: conf.LogLevel}))

	tp, shutdown, err := telemetry.Setup(ctx, serviceName, conf.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("Failed to flush traces", "error", err)
		}
	}()

	opts := scenario.Options{
		Out:            out,
		Color:          useColor(conf.Color, out),
		Logger:         log,
		TracerProvider: tp,
	}
	for _, file := range files {
		s, err := scenario.LoadFile(file)
		if err != nil {
			return err
		}
		if err := scenario.Run(ctx, s, opts); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

func listTypes(printer *cli.Printer) error {
	reg := customevent.NewRegistry(host.NewSystem())
	if _, err := mutation.NewObserver(customevent.NewDispatcher(reg), nil); err != nil {
		return err
	}
	for _, typ := range reg.Types() {
		printer.Printf("%s\t(pre-phase: %s)\n", typ, customevent.PreName(typ))
	}
	return nil
}
