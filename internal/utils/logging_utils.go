package utils

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const serviceName = "tamuroo-server"

func GenerateTraceId() string {
	return uuid.New().String()
}

// TraceId returns the trace id stored on ctx, or an empty string.
func TraceId(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceId, _ := ctx.Value(TraceIdKey).(string)
	return traceId
}

func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	case "panic":
		entry.Panic(message)
	default:
		entry.Info(message)
	}
}

// EntryWithTrace returns a logrus entry tagged with the service name and the trace id of ctx.
func EntryWithTrace(ctx context.Context) *log.Entry {
	return log.WithFields(log.Fields{
		"traceId": TraceId(ctx),
		"service": serviceName,
	})
}

func LogMessageWithFields(ctx context.Context, level, message string) {
	LogEntry(EntryWithTrace(ctx), level, message)
}

func LogMessageWithFieldsAndError(ctx context.Context, level, message string, err error) {
	LogEntry(EntryWithTrace(ctx).WithError(err), level, message)
}
