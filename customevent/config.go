package customevent

import (
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/saylorsolutions/eventx/customevent"

type conf struct {
	log    *slog.Logger
	tracer trace.Tracer
}

func defaultConf() conf {
	return conf{
		log:    slog.Default(),
		tracer: noop.NewTracerProvider().Tracer(tracerName),
	}
}

// ConfigFunc configures a [Registry] or [Dispatcher] at construction.
type ConfigFunc func(conf *conf) error

// Logger sets the logger used for activation, registration, and cancellation messages.
func Logger(log *slog.Logger) ConfigFunc {
	return func(conf *conf) error {
		if log == nil {
			return errors.New("nil logger")
		}
		conf.log = log
		return nil
	}
}

// TracerProvider sets where [Dispatcher] spans are recorded.
// Spans are dropped by default.
func TracerProvider(tp trace.TracerProvider) ConfigFunc {
	return func(conf *conf) error {
		if tp == nil {
			return errors.New("nil tracer provider")
		}
		conf.tracer = tp.Tracer(tracerName)
		return nil
	}
}

func applyConf(configFuncs []ConfigFunc) conf {
	c := defaultConf()
	for _, fn := range configFuncs {
		if err := fn(&c); err != nil {
			panic(fmt.Sprintf("invalid config: %v", err))
		}
	}
	return c
}
