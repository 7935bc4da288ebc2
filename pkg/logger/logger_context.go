package logger

import (
	"context"

	pcontext "github.com/cratesweep/cratesweep/pkg/context"
)

// WithContext creates a logger that automatically includes the run id
// and the package carried by ctx
func WithContext(ctx context.Context, logger Logger) Logger {
	if ctx == nil {
		return logger
	}
	if pkg := pcontext.GetPackage(ctx); pkg != "" {
		logger = logger.WithPackage(pkg)
	}
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return &contextualLogger{fields: fields, logger: logger}
}

func contextFields(ctx context.Context) []Field {
	var fields []Field
	if runID := pcontext.GetRunID(ctx); runID != "" {
		fields = append(fields, WithField("run_id", runID))
	}
	return fields
}

// contextualLogger prepends context fields to every call
type contextualLogger struct {
	fields []Field
	logger Logger
}

func (cl *contextualLogger) with(fields []Field) []Field {
	all := make([]Field, 0, len(cl.fields)+len(fields))
	all = append(all, cl.fields...)
	return append(all, fields...)
}

func (cl *contextualLogger) Info(message string, fields ...Field) {
	cl.logger.Info(message, cl.with(fields)...)
}

func (cl *contextualLogger) Error(message string, fields ...Field) {
	cl.logger.Error(message, cl.with(fields)...)
}

func (cl *contextualLogger) Warn(message string, fields ...Field) {
	cl.logger.Warn(message, cl.with(fields)...)
}

func (cl *contextualLogger) Debug(message string, fields ...Field) {
	cl.logger.Debug(message, cl.with(fields)...)
}

func (cl *contextualLogger) Success(message string, fields ...Field) {
	cl.logger.Success(message, cl.with(fields)...)
}

func (cl *contextualLogger) WithPackage(pkg string) Logger {
	return &contextualLogger{
		fields: cl.fields,
		logger: cl.logger.WithPackage(pkg),
	}
}
