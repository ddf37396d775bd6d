package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide root logger. Components derive child loggers
// from it instead of importing zerolog directly.
var Logger zerolog.Logger

// Config holds logging configuration
type Config struct {
	Level      string // debug, info, warn, error
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger. Unknown level strings fall back to
// info.
func Init(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Console output by default, JSON for log aggregation
	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent creates a child logger with component field
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithPod creates a child logger scoped to one pod's placement
func WithPod(pod string) zerolog.Logger {
	return Logger.With().Str("pod", pod).Logger()
}

// WithNode creates a child logger scoped to one node
func WithNode(node string) zerolog.Logger {
	return Logger.With().Str("node", node).Logger()
}

// Errorf logs an error with a short message
func Errorf(msg string, err error) {
	Logger.Error().Err(err).Msg(msg)
}
