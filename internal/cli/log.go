package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes leveled, timestamped lines ("14:32:01.45 INFO routed ...")
// to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch logs the completion of a step with its wall time.
type stopwatch func(msg string, keyvals ...any)

// startStopwatch starts timing now. Calling the result logs msg at info
// level with a trailing took=<elapsed>.
func startStopwatch(l *log.Logger) stopwatch {
	start := time.Now()
	return func(msg string, keyvals ...any) {
		l.Info(msg, append(keyvals, "took", time.Since(start).Round(time.Millisecond))...)
	}
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default when ctx carries no logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
