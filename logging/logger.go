package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Logger is a wrapper around the log.Logger from the charmbracelet/log package.
type Logger struct {
	*log.Logger
}

var (
	logger *Logger
	once   sync.Once
)

// New creates a logger writing to w at the given level ("debug", "info", "warn", "error").
// An unknown level falls back to info. With DEBUG=1 the level is forced to debug and
// every line carries its caller and a timestamp.
func New(w io.Writer, level string) *Logger {
	if os.Getenv("DEBUG") == "1" {
		base := log.NewWithOptions(w, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			Prefix:          "demodb",
		})
		base.SetLevel(log.DebugLevel)
		return &Logger{Logger: base}
	}

	base := log.New(w)
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	base.SetLevel(lvl)
	return &Logger{Logger: base}
}

// Init sets up the process-wide logger and makes it the default slog handler, so code
// using log/slog goes through the same output.
func Init(level string) *Logger {
	once.Do(func() {
		logger = New(os.Stderr, level)
		slog.SetDefault(slog.New(logger.Logger))
	})
	return logger
}

// NewDiscard returns a logger that drops everything. Used by tests.
func NewDiscard() *Logger {
	return &Logger{Logger: log.New(io.Discard)}
}

func Debug(msg interface{}, keyvals ...interface{}) {
	GetLogger().Debug(msg, keyvals...)
}

func Info(msg interface{}, keyvals ...interface{}) {
	GetLogger().Info(msg, keyvals...)
}

func Warn(msg interface{}, keyvals ...interface{}) {
	GetLogger().Warn(msg, keyvals...)
}

func Error(msg interface{}, keyvals ...interface{}) {
	GetLogger().Error(msg, keyvals...)
}

// GetLogger returns the process-wide logger, creating it at info level if Init was
// never called.
func GetLogger() *Logger {
	return Init("info")
}
