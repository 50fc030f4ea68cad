// Package log provides the package-level zerolog logger shared by every
// bitfeistel component. It is a no-op until SetStd or Set is called.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	pkgLogger = zerolog.Nop()
	mu        sync.RWMutex
)

// SetStd installs a console logger on stderr at the given level. Extra sinks
// (for example the SQLite writer of pkg/store) receive the raw JSON events.
func SetStd(level string, sinks ...io.Writer) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("log: invalid level %q: %w", level, err)
		}
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	writers = append(writers, sinks...)
	Set(zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(lvl).With().Timestamp().Logger())
	return nil
}

// Set replaces the package logger.
func Set(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	pkgLogger = l
}

// Reset restores the no-op logger.
func Reset() { Set(zerolog.Nop()) }

func logger() *zerolog.Logger {
	mu.RLock()
	l := pkgLogger
	mu.RUnlock()
	return &l
}

func Debug() *zerolog.Event { return logger().Debug() }
func Info() *zerolog.Event  { return logger().Info() }
func Warn() *zerolog.Event  { return logger().Warn() }
func Error() *zerolog.Event { return logger().Error() }
func Fatal() *zerolog.Event { return logger().Fatal() }

// Printf sends a log event using info level and no extra field.
// Arguments are handled in the manner of fmt.Printf.
func Printf(format string, v ...any) {
	logger().Info().CallerSkipFrame(1).Msgf(format, v...)
}

func Fatalf(format string, v ...any) {
	logger().Fatal().Msgf(format, v...)
}
