package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level represents the severity of a log entry.
type Level int32

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel maps a config string ("debug", "info", ...) to a Level.
// Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// sink is shared by a root logger and every logger derived from it.
type sink struct {
	level         atomic.Int32
	redactSecrets atomic.Bool
	mu            sync.Mutex
	out           io.Writer
}

// Logger writes one JSON object per entry. Loggers made by With share the
// level, redaction and output of their parent.
type Logger struct {
	sink   *sink
	fields []any
}

var defaultLogger = newDefault()

func newDefault() *Logger {
	s := &sink{out: os.Stderr}
	s.level.Store(int32(INFO))
	s.redactSecrets.Store(true)
	return &Logger{sink: s}
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(l Level) { defaultLogger.sink.level.Store(int32(l)) }

// SetRedactSecrets enables or disables secret redaction for the default logger.
func SetRedactSecrets(r bool) { defaultLogger.sink.redactSecrets.Store(r) }

// SetOutput redirects the default logger. Tests use it to capture entries.
func SetOutput(w io.Writer) {
	defaultLogger.sink.mu.Lock()
	defaultLogger.sink.out = w
	defaultLogger.sink.mu.Unlock()
}

// With returns a logger that adds fields to every entry.
func With(fields ...any) *Logger { return defaultLogger.With(fields...) }

func (l *Logger) With(fields ...any) *Logger {
	merged := make([]any, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{sink: l.sink, fields: merged}
}

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...any) { defaultLogger.log(DEBUG, msg, fields) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...any) { defaultLogger.log(INFO, msg, fields) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...any) { defaultLogger.log(WARN, msg, fields) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...any) { defaultLogger.log(ERROR, msg, fields) }

func (l *Logger) Debug(msg string, fields ...any) { l.log(DEBUG, msg, fields) }
func (l *Logger) Info(msg string, fields ...any)  { l.log(INFO, msg, fields) }
func (l *Logger) Warn(msg string, fields ...any)  { l.log(WARN, msg, fields) }
func (l *Logger) Error(msg string, fields ...any) { l.log(ERROR, msg, fields) }

func (l *Logger) log(level Level, msg string, fields []any) {
	if int32(level) < l.sink.level.Load() {
		return
	}

	entry := map[string]any{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": level.String(),
		"msg":   msg,
	}
	redact := l.sink.redactSecrets.Load()
	l.addFields(entry, l.fields, redact)
	l.addFields(entry, fields, redact)

	data, err := json.Marshal(entry)
	if err != nil {
		data, _ = json.Marshal(map[string]any{"level": level.String(), "msg": msg, "log_error": err.Error()})
	}
	l.sink.mu.Lock()
	fmt.Fprintln(l.sink.out, string(data))
	l.sink.mu.Unlock()
}

// addFields copies key/value pairs into entry. Numbers and booleans keep
// their JSON type; everything else is rendered with %v. A trailing key
// without a value is kept under "!BADKEY".
func (l *Logger) addFields(entry map[string]any, fields []any, redact bool) {
	for i := 0; i < len(fields); i += 2 {
		if i == len(fields)-1 {
			entry["!BADKEY"] = fmt.Sprintf("%v", fields[i])
			return
		}
		key := fmt.Sprintf("%v", fields[i])
		entry[key] = fieldValue(key, fields[i+1], redact)
	}
}

func fieldValue(key string, v any, redact bool) any {
	switch v := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, bool:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Sprintf("%v", v)
		}
		return v
	case error:
		if v == nil {
			return nil
		}
		return maybeRedact(key, v.Error(), redact)
	default:
		return maybeRedact(key, fmt.Sprintf("%v", v), redact)
	}
}

func maybeRedact(key, val string, redact bool) string {
	if !redact {
		return val
	}
	return redactValue(key, val)
}
