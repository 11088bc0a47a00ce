package zap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	requestIDField    = "x-request-id"
	usernameField     = "username"
	sessionSubIDField = "session_sub_id"
	traceIDField      = "trace_id"
)

type requestIDKey struct{}

type sessionKey struct{}

type sessionIdentity struct {
	username     string
	sessionSubID string
}

// current is swapped whole, so tests can replace it while goroutines log.
var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// Init installs the process logger. levelStr is one of debug, info, warn, error.
func Init(levelStr string, asJSON bool) error {
	level, err := zapcore.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return fmt.Errorf("logger.Init: unknown level %q", levelStr)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoder := zapcore.NewConsoleEncoder(encoderCfg)
	if asJSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	current.Store(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Named("order-gateway"))

	return nil
}

func SetNopLogger() {
	current.Store(zap.NewNop())
}

func Sync() error {
	return current.Load().Sync()
}

func ContextWithTraceID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func TraceIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

// ContextWithSession tags every log line written with ctx with the
// session identity.
func ContextWithSession(ctx context.Context, username, sessionSubID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionIdentity{
		username:     username,
		sessionSubID: sessionSubID,
	})
}

func Debug(ctx context.Context, message string, fields ...zap.Field) {
	write(ctx, zapcore.DebugLevel, message, fields)
}

func Info(ctx context.Context, message string, fields ...zap.Field) {
	write(ctx, zapcore.InfoLevel, message, fields)
}

func Warn(ctx context.Context, message string, fields ...zap.Field) {
	write(ctx, zapcore.WarnLevel, message, fields)
}

func Error(ctx context.Context, message string, fields ...zap.Field) {
	write(ctx, zapcore.ErrorLevel, message, fields)
}

func Fatal(ctx context.Context, message string, fields ...zap.Field) {
	write(ctx, zapcore.FatalLevel, message, fields)
}

func write(ctx context.Context, level zapcore.Level, message string, fields []zap.Field) {
	entry := current.Load().Check(level, message)
	if entry == nil {
		return
	}
	entry.Write(append(fieldsFromContext(ctx), fields...)...)
}

func fieldsFromContext(ctx context.Context) []zap.Field {
	var fields []zap.Field

	if requestID := TraceIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String(requestIDField, requestID))
	}

	if session, found := ctx.Value(sessionKey{}).(sessionIdentity); found {
		if session.username != "" {
			fields = append(fields, zap.String(usernameField, session.username))
		}
		if session.sessionSubID != "" {
			fields = append(fields, zap.String(sessionSubIDField, session.sessionSubID))
		}
	}

	if spanContext := trace.SpanContextFromContext(ctx); spanContext.HasTraceID() {
		fields = append(fields, zap.String(traceIDField, spanContext.TraceID().String()))
	}

	return fields
}
