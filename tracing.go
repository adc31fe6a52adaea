package wiremysql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Tracer observes commands issued on a Connection. OnCommand is called once
// per command with its kind ("query", "prepare", "execute", "ping"), the
// SQL text when applicable, how long it took, and its outcome.
type Tracer interface {
	OnCommand(ctx context.Context, kind, sql string, dur time.Duration, err error)
}

type noopTracer struct{}

func (noopTracer) OnCommand(context.Context, string, string, time.Duration, error) {}

// traceCommand starts timing a command and returns a function to call with
// its outcome once the command's initial response has been read.
func traceCommand(ctx context.Context, t Tracer, kind, sql string) func(error) {
	start := time.Now()
	return func(err error) {
		t.OnCommand(ctx, kind, sql, time.Since(start), err)
	}
}

// logrusTracer is the default Tracer implementation used by NewLoggingTracer,
// attaching a per-command correlation id as a structured field rather than
// interpolating it into the SQL text.
type logrusTracer struct {
	entry *logrus.Entry
}

// NewLoggingTracer returns a Tracer that logs each command through logger,
// successful ones at debug level and failed ones at warn level, tagged with a
// fresh google/uuid correlation id.
func NewLoggingTracer(logger *logrus.Logger) Tracer {
	if logger == nil {
		logger = logrus.New()
	}
	return &logrusTracer{entry: logrus.NewEntry(logger)}
}

func (t *logrusTracer) OnCommand(_ context.Context, kind, sql string, dur time.Duration, err error) {
	fields := logrus.Fields{
		"command_id": uuid.New().String(),
		"kind":       kind,
		"duration":   dur.String(),
	}
	if sql != "" {
		fields["sql"] = sql
	}
	entry := t.entry.WithFields(fields)
	if err != nil {
		entry.WithError(err).Warn("command failed")
		return
	}
	entry.Debug("command completed")
}
