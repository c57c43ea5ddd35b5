package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level slog.Level
	// File, when set, also receives every record through a rotating writer.
	File string
}

// Setup installs the global slog logger: JSON to stdout plus an optional
// rotating log file. The returned closer releases the file.
func Setup(opts Options) (slog.Handler, io.Closer) {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, handlerOpts)

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxAge:     30,
			MaxBackups: 5,
			Compress:   true,
		}
		handler = NewMultiHandler(handler, slog.NewJSONHandler(rotating, handlerOpts))
		closer = rotating
	}

	slog.SetDefault(slog.New(handler))
	return handler, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
