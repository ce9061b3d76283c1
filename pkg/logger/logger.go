package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// Init replaces the global zerolog logger.
func Init(opts ...Config) {
	conf := safe(opts...)

	var out io.Writer = os.Stdout
	if conf.PrettyFormat {
		out = zerolog.NewConsoleWriter()
	}
	log.Logger = New(out, *conf)
}

// New builds a logger writing to w.
func New(w io.Writer, conf Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Stack().
		Logger()
}

// ForWorkflow returns the global logger tagged with a workflow id.
func ForWorkflow(workflowID string) zerolog.Logger {
	return log.Logger.With().Str("workflow_id", workflowID).Logger()
}
