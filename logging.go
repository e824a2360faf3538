package configfile

import "time"

// EventKind names the operation an Event reports on.
type EventKind string

const (
	// EventLoad reports a finished or failed Load or LoadYAML.
	EventLoad EventKind = "load"
	// EventParseSkip reports a malformed line skipped outside strict mode.
	EventParseSkip EventKind = "parse.skip"
	// EventWrite reports a finished or failed Write.
	EventWrite EventKind = "write"
	// EventEvaluate reports one expression evaluation.
	EventEvaluate EventKind = "evaluate"
	// EventMalformedValue reports a fallback getter that hit a bad value.
	EventMalformedValue EventKind = "value.malformed"
	// EventActivity reports an activity hook that failed.
	EventActivity EventKind = "activity"
)

// Event describes something worth logging that happened inside a Config.
type Event struct {
	Kind     EventKind
	Config   string
	Path     string
	Key      string
	Line     int
	Text     string
	Engine   string
	Expr     string
	Keys     int
	Duration time.Duration
	Err      error
}

// Logger records config events. Adapters for zerolog and zap live in
// pkg/logging.
type Logger interface {
	LogEvent(Event)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(Event)

// LogEvent implements Logger.
func (f LoggerFunc) LogEvent(event Event) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvent(Event) {}

// WithLogger attaches logger to the config and everything derived from it.
func WithLogger(logger Logger) Option {
	return func(cfg *options) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

func (c *Config) log(event Event) {
	if c == nil || c.opts.logger == nil {
		return
	}
	if event.Config == "" {
		event.Config = c.name
	}
	c.opts.logger.LogEvent(event)
}
