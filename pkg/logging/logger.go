package logging

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Environment variables read by Resolve.
const (
	EnvLogLevel = "FLASHKIT_LOG_LEVEL"
	EnvLogPath  = "FLASHKIT_LOG_PATH"
)

// Prefix marks flashkit lines when several tools share a build log.
const Prefix = "🔧 "

// Settings is a resolved logging configuration.
type Settings struct {
	Level  string
	JSON   bool
	Source string // where Level came from, for the startup debug line
}

// Resolve picks the log level: CLI flag, then FLASHKIT_LOG_LEVEL, then "info".
// A value of "json" or "json:<level>" switches to JSON output.
func Resolve(cliLevel string) Settings {
	var s Settings
	raw := cliLevel
	s.Source = "CLI --log-level"
	if raw == "" {
		raw = os.Getenv(EnvLogLevel)
		s.Source = EnvLogLevel
	}
	if raw == "" {
		raw = "info"
		s.Source = "default"
	}

	s.Level = raw
	if strings.HasPrefix(raw, "json") {
		s.JSON = true
		s.Level = "info"
		if _, level, ok := strings.Cut(raw, ":"); ok && level != "" {
			s.Level = level
		}
	}
	return s
}

var (
	filesMu sync.Mutex
	files   = map[string]*os.File{}
)

// openLogFile returns the shared append handle for path, opening it once.
func openLogFile(path string) (*os.File, error) {
	filesMu.Lock()
	defer filesMu.Unlock()
	if f, ok := files[path]; ok {
		return f, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	files[path] = f
	return f, nil
}

// Close closes log files opened through FLASHKIT_LOG_PATH. Loggers that
// still write to them afterwards fail silently.
func Close() error {
	filesMu.Lock()
	defer filesMu.Unlock()
	var errs []error
	for path, f := range files {
		errs = append(errs, f.Close())
		delete(files, path)
	}
	return errors.Join(errs...)
}

// NewLogger creates a new hclog logger with standard settings. A nil output
// means stderr, or the file named by FLASHKIT_LOG_PATH when that is set.
func NewLogger(name string, s Settings, output io.Writer) hclog.Logger {
	var logPath string
	var openErr error
	if output == nil {
		output = os.Stderr
		if logPath = os.Getenv(EnvLogPath); logPath != "" {
			if file, err := openLogFile(logPath); err != nil {
				openErr = err
			} else {
				output = file
			}
		}
	}

	if !s.JSON {
		output = NewPrefixWriter(Prefix, output)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(s.Level),
		JSONFormat: s.JSON,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
	if openErr != nil {
		logger.Warn("⚠️ could not open log file, logging to stderr", "path", logPath, "error", openErr)
	}
	return logger
}
