// Package debug provides the host's leveled logger and audio buffer checks.
package debug

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
	// LogLevelFatal is for errors that terminate the process.
	LogLevelFatal
	// LogLevelOff disables all logging except Fatal.
	LogLevelOff
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelFatal:
		return "FATAL"
	case LogLevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zap() zapcore.Level {
	switch l {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.FatalLevel + 1
	}
}

// ParseLevel accepts the level names used in configuration, case-insensitive.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "fatal":
		return LogLevelFatal, nil
	case "off", "none":
		return LogLevelOff, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Output encodings.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// output is shared by a logger and all of its children so that SetLevel,
// SetOutput and SetExitFunc reach every named component.
type output struct {
	mu    sync.Mutex
	w     io.Writer
	level zap.AtomicLevel
	exit  atomic.Pointer[func(int)]
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

func (o *output) Sync() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.w.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

// OnWrite runs after a Fatal entry has been written.
func (o *output) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {
	(*o.exit.Load())(1)
}

// Logger is a leveled, printf-style logger on top of zap.
type Logger struct {
	out   *output
	sugar *zap.SugaredLogger
}

var defaultLogger = New(os.Stderr, "", FormatConsole)

// New creates a logger writing to output. A non-empty prefix names the logger.
// Format is FormatConsole or FormatJSON.
func New(w io.Writer, prefix string, format string) *Logger {
	out := &output{w: w, level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}
	exit := os.Exit
	out.exit.Store(&exit)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if format == FormatJSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, out, out.level)
	return newLogger(core, out, prefix)
}

// NewWithCore builds a logger on an existing zap core, typically an observer in tests.
// The core's own level filtering applies in addition to SetLevel.
func NewWithCore(core zapcore.Core) *Logger {
	out := &output{w: io.Discard, level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
	exit := os.Exit
	out.exit.Store(&exit)
	return newLogger(levelCore{Core: core, level: out.level}, out, "")
}

func newLogger(core zapcore.Core, out *output, prefix string) *Logger {
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.WithFatalHook(out))
	if prefix != "" {
		z = z.Named(prefix)
	}
	return &Logger{out: out, sugar: z.Sugar()}
}

// levelCore applies the logger's adjustable level in front of a foreign core.
type levelCore struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c levelCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l) && c.Core.Enabled(l)
}

func (c levelCore) With(fields []zapcore.Field) zapcore.Core {
	return levelCore{Core: c.Core.With(fields), level: c.level}
}

func (c levelCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

// Named returns a child logger for a component. Level and output are shared.
func (l *Logger) Named(name string) *Logger {
	return &Logger{out: l.out, sugar: l.sugar.Named(name)}
}

// With returns a child logger that adds key/value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{out: l.out, sugar: l.sugar.With(keysAndValues...)}
}

// SetOutput sets the output destination for the logger and its children.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.w = w
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.out.level.SetLevel(level.zap())
}

// Level returns the current minimum level.
func (l *Logger) Level() LogLevel {
	switch l.out.level.Level() {
	case zapcore.DebugLevel:
		return LogLevelDebug
	case zapcore.InfoLevel:
		return LogLevelInfo
	case zapcore.WarnLevel:
		return LogLevelWarn
	case zapcore.ErrorLevel:
		return LogLevelError
	case zapcore.FatalLevel:
		return LogLevelFatal
	}
	return LogLevelOff
}

// Enabled reports whether a message at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	return l.out.level.Enabled(level.zap())
}

// SetExitFunc replaces the function Fatal calls after logging. Tests use it
// to observe fatal paths without leaving the process.
func (l *Logger) SetExitFunc(fn func(code int)) {
	if fn == nil {
		fn = os.Exit
	}
	l.out.exit.Store(&fn)
}

// Sync flushes buffered output.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Fatal logs at FATAL and terminates the process with status 1 through the
// exit function. Fatal is never filtered by level.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.sugar.Fatalf(format, args...)
}

// Default returns the default logger instance.
func Default() *Logger {
	return defaultLogger
}

// SetOutput sets the output destination for the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
}

// Debug logs a debug message using the default logger.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// Info logs an informational message using the default logger.
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Fatal logs a fatal error message using the default logger and exits.
func Fatal(format string, args ...interface{}) {
	defaultLogger.Fatal(format, args...)
}
