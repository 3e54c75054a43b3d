// Package logger builds the process slog.Logger: text on stdout in
// development, JSON in production, optionally teed to a rotating file and to
// Sentry for errors.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	IsDev     bool
	SentryDSN string

	File           string // rotating JSON log file, off when empty
	FileMaxSizeMB  int
	FileMaxBackups int

	Stdout io.Writer // defaults to os.Stdout
}

// New returns the logger and a close func that flushes Sentry and closes the
// log file. A Sentry DSN that fails to initialize is reported on the logger
// and otherwise ignored.
func New(opts Options) (*slog.Logger, func() error) {
	level := slog.LevelInfo
	if opts.IsDev {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	var (
		handlers []slog.Handler
		closers  []func() error
	)
	if opts.IsDev {
		handlers = append(handlers, slog.NewTextHandler(out, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(out, handlerOpts))
	}

	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.FileMaxSizeMB,
			MaxBackups: opts.FileMaxBackups,
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(file, handlerOpts))
		closers = append(closers, file.Close)
	}

	var sentryErr error
	if opts.SentryDSN != "" {
		sentryErr = sentry.Init(sentry.ClientOptions{Dsn: opts.SentryDSN, TracesSampleRate: 1.0})
		if sentryErr == nil {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
			closers = append(closers, func() error {
				if !sentry.Flush(2 * time.Second) {
					return errors.New("sentry: events left unsent after flush timeout")
				}
				return nil
			})
		}
	}

	handler := handlers[0]
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	}
	log := slog.New(handler)
	if sentryErr != nil {
		log.Warn("sentry disabled", "error", sentryErr)
	}

	return log, func() error {
		var err error
		for _, c := range closers {
			err = multierr.Append(err, c())
		}
		return err
	}
}
