// Package cli holds the pieces the command tools share: log setup and the
// flags that drive it.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	appDir = "wave"

	logMaxSizeMB  = 5
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// LogOptions are the logging flags every command accepts.
type LogOptions struct {
	Level string
	// File is the log file path. An empty value with ToFile set means the
	// default file under the user cache directory.
	File   string
	ToFile bool
}

// AddLogFlags registers the logging flags on cmd.
func AddLogFlags(cmd *cobra.Command, opts *LogOptions) {
	cmd.PersistentFlags().StringVar(&opts.Level, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.ToFile, "log-to-file", false, "also write logs to a rotating file")
	cmd.PersistentFlags().StringVar(&opts.File, "log-file", "", "log file path, implies --log-to-file")
}

// DefaultLogPath returns the rotating log file used by tool when no path is
// given.
func DefaultLogPath(tool string) string {
	return filepath.Join(xdg.CacheHome, appDir, tool+".log")
}

// SetupLogging builds a text logger writing to stderr and, when requested, to
// a lumberjack rotated file. The returned closer releases the file.
func SetupLogging(tool string, opts LogOptions, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", opts.Level, err)
	}

	writers := []io.Writer{stderr}
	var closer io.Closer = nopCloser{}

	if opts.ToFile || opts.File != "" {
		path := opts.File
		if path == "" {
			path = DefaultLogPath(tool)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}

		fileWriter := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
		}
		writers = append(writers, fileWriter)
		closer = fileWriter
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("tool", tool)

	logger.Debug("logging setup completed", "level", level.String(), "writers", len(writers))

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
