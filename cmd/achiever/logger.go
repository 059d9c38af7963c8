package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"

	"github.com/evanschultz/achiever/internal/config"
)

// runtimeLogger writes every event to the console and, when enabled, to a logfmt file.
type runtimeLogger struct {
	console *charmLog.Logger
	file    *charmLog.Logger
	out     *os.File
}

// newRuntimeLogger builds the console sink and the optional file sink. A configured
// dev_file always gets a file sink; dev mode without one writes to a dated file under logDir.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, logDir string, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	logger := &runtimeLogger{console: newSink(stderr, level, appName, charmLog.TextFormatter)}

	path := strings.TrimSpace(cfg.DevFile)
	if path == "" && devMode {
		if now == nil {
			now = time.Now
		}
		path = devLogFilePath(logDir, appName, now().UTC())
	}
	if path == "" {
		return logger, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}
	logger.out = out
	logger.file = newSink(out, level, appName, charmLog.LogfmtFormatter)
	return logger, nil
}

func newSink(w io.Writer, level charmLog.Level, prefix string, formatter charmLog.Formatter) *charmLog.Logger {
	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
}

// Console returns the console sink for components that take a *log.Logger.
func (l *runtimeLogger) Console() *charmLog.Logger {
	return l.console
}

// DevLogPath returns the file sink's path, or "" when file logging is off.
func (l *runtimeLogger) DevLogPath() string {
	if l.out == nil {
		return ""
	}
	return l.out.Name()
}

// Close closes the file sink.
func (l *runtimeLogger) Close() error {
	if l.out == nil {
		return nil
	}
	return l.out.Close()
}

func (l *runtimeLogger) log(level charmLog.Level, msg string, keyvals []any) {
	l.console.Log(level, msg, keyvals...)
	if l.file != nil {
		l.file.Log(level, msg, keyvals...)
	}
}

func (l *runtimeLogger) Debug(msg string, keyvals ...any) { l.log(charmLog.DebugLevel, msg, keyvals) }
func (l *runtimeLogger) Info(msg string, keyvals ...any)  { l.log(charmLog.InfoLevel, msg, keyvals) }
func (l *runtimeLogger) Warn(msg string, keyvals ...any)  { l.log(charmLog.WarnLevel, msg, keyvals) }
func (l *runtimeLogger) Error(msg string, keyvals ...any) { l.log(charmLog.ErrorLevel, msg, keyvals) }

// devLogFilePath names one log file per app and day.
func devLogFilePath(logDir, appName string, day time.Time) string {
	return filepath.Join(filepath.Clean(logDir), sanitizeLogFileStem(appName)+"-"+day.Format("20060102")+".log")
}

// sanitizeLogFileStem turns an app name into a safe file-name segment.
func sanitizeLogFileStem(appName string) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, strings.TrimSpace(appName))
	if stem = strings.Trim(stem, "-"); stem == "" {
		return defaultLogStem
	}
	return stem
}

const defaultLogStem = "achiever"
