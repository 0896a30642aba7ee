package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/saylorsolutions/eventx/cli"
	"golang.org/x/term"
)

const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

type config struct {
	LogLevel     slog.Level `env:"EVENTTRACE_LOG_LEVEL" envDefault:"WARN"`
	Color        string     `env:"EVENTTRACE_COLOR" envDefault:"auto"`
	OTelEndpoint string     `env:"EVENTTRACE_OTEL_ENDPOINT"`
}

func loadConfig() (config, error) {
	var conf config
	if err := env.Parse(&conf); err != nil {
		return conf, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := validateColor(conf.Color); err != nil {
		return conf, err
	}
	return conf, nil
}

func validateColor(mode string) error {
	switch strings.ToLower(mode) {
	case colorAuto, colorAlways, colorNever:
		return nil
	default:
		return cli.NewUsageError("color must be one of %s, %s, or %s, got '%s'", colorAuto, colorAlways, colorNever, mode)
	}
}

// useColor resolves a color mode, where auto means color only when out is a terminal.
func useColor(mode string, out io.Writer) bool {
	switch strings.ToLower(mode) {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
