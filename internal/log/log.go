// Package log provides the monitor's process-wide zap logger plus a bounded
// in-memory tail of recent entries served by the debug API's /logs route
// (§5.3's read-only ops surface).
package log

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.SugaredLogger
var baseLogger *zap.Logger
var logBuffer *LogBuffer

// LogBuffer is a thread-safe circular buffer holding the most recent log
// entries for the debug API, independent of whatever sink the process's
// stdout is attached to.
type LogBuffer struct {
	mutex   sync.RWMutex
	entries []LogEntry
	maxSize int
	index   int
}

// LogEntry is one decoded zap log line, re-hydrated from the JSON encoder's
// output so the debug API can serve it without re-parsing raw log text.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp" msgpack:"timestamp"`
	Level     string                 `json:"level" msgpack:"level"`
	Message   string                 `json:"message" msgpack:"message"`
	Caller    string                 `json:"caller,omitempty" msgpack:"caller,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty" msgpack:"fields,omitempty"`
}

// MarshalLogEntries encodes a batch of log entries compactly for delivery
// over the debug API's msgpack-accepting /logs route, where JSON's per-field
// key repetition is wasteful on a constrained transport (mirrors the link
// adapter's bulk-history-export encoding, §4.7).
func MarshalLogEntries(entries []LogEntry) ([]byte, error) {
	return msgpack.Marshal(entries)
}

// NewLogBuffer creates a new log buffer with the specified maximum size.
func NewLogBuffer(maxSize int) *LogBuffer {
	return &LogBuffer{
		entries: make([]LogEntry, maxSize),
		maxSize: maxSize,
	}
}

// Write implements zapcore.WriteSyncer, decoding each JSON log line zap
// produces into a LogEntry and appending it to the ring.
func (lb *LogBuffer) Write(data []byte) (int, error) {
	var logData map[string]interface{}
	if err := json.Unmarshal(data, &logData); err != nil {
		lb.AddEntry(LogEntry{Timestamp: time.Now(), Level: "unknown", Message: string(data)})
		return len(data), nil
	}

	entry := LogEntry{Timestamp: time.Now(), Fields: make(map[string]interface{})}

	if ts, ok := logData["timestamp"]; ok {
		if parsed := parseTimestamp(ts); !parsed.IsZero() {
			entry.Timestamp = parsed
		}
	}
	if level, ok := logData["level"]; ok {
		entry.Level = fmt.Sprintf("%v", level)
	}
	if msg, ok := logData["message"]; ok {
		entry.Message = fmt.Sprintf("%v", msg)
	}
	if caller, ok := logData["caller"]; ok {
		entry.Caller = fmt.Sprintf("%v", caller)
	}

	excludeFields := map[string]bool{"timestamp": true, "level": true, "message": true, "caller": true}
	for k, v := range logData {
		if !excludeFields[k] {
			entry.Fields[k] = v
		}
	}

	lb.AddEntry(entry)
	return len(data), nil
}

func parseTimestamp(ts interface{}) time.Time {
	switch v := ts.(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return parsed
		}
	case float64:
		return time.Unix(int64(v), 0)
	}
	return time.Time{}
}

// Sync implements zapcore.WriteSyncer.
func (lb *LogBuffer) Sync() error { return nil }

// AddEntry adds a log entry to the circular buffer.
func (lb *LogBuffer) AddEntry(entry LogEntry) {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()
	lb.entries[lb.index] = entry
	lb.index = (lb.index + 1) % lb.maxSize
}

// GetLogs returns all current log entries in chronological order, oldest
// first, optionally clearing the buffer afterward.
func (lb *LogBuffer) GetLogs(clear bool) []LogEntry {
	if clear {
		lb.mutex.Lock()
		defer lb.mutex.Unlock()
	} else {
		lb.mutex.RLock()
		defer lb.mutex.RUnlock()
	}

	var result []LogEntry
	for i := 0; i < lb.maxSize; i++ {
		idx := (lb.index + i) % lb.maxSize
		if !lb.entries[idx].Timestamp.IsZero() {
			result = append(result, lb.entries[idx])
		}
	}

	if clear {
		lb.entries = make([]LogEntry, lb.maxSize)
		lb.index = 0
	}
	return result
}

// Init initializes the package-level logger, tee'd to stdout and to a
// 500-entry ring the debug API can query.
func Init(debug bool) error {
	logBuffer = NewLogBuffer(500)

	encoderConfig := zap.NewProductionEncoderConfig()
	if debug {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.LevelKey = "level"
	encoderConfig.MessageKey = "message"
	encoderConfig.CallerKey = "caller"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig)

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(jsonEncoder, zapcore.AddSync(os.Stdout), level),
		zapcore.NewCore(jsonEncoder, zapcore.AddSync(logBuffer), level),
	)

	baseLogger = zap.New(core, zap.AddCaller())
	log = baseLogger.Sugar()
	return nil
}

// GetLogBuffer returns the log buffer instance backing the debug API's
// /logs route.
func GetLogBuffer() *LogBuffer {
	return logBuffer
}

// GetSugaredLogger returns the process-wide sugared logger, falling back to
// a production default if Init was never called (e.g. in a test that skips
// it).
func GetSugaredLogger() *zap.SugaredLogger {
	if log == nil {
		baseLogger, _ = zap.NewProduction()
		log = baseLogger.Sugar()
	}
	return log
}

// Sync flushes any buffered log entries.
func Sync() {
	if log != nil {
		log.Sync()
	}
}

// Errorf logs a formatted error-level message on the package-level logger,
// used by cmd/plantmonitor before an *App exists to hand a SugaredLogger to.
func Errorf(template string, args ...interface{}) {
	baseLogger.WithOptions(zap.AddCallerSkip(1)).Sugar().Errorf(template, args...)
}
