package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logMu    sync.Mutex
	logLevel = LogLevelInfo
	atom     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger   = newLogger(zapcore.Lock(os.Stderr))
	logFile  *os.File
)

func newLogger(ws zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, atom)
	return zap.New(core).Sugar()
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logMu.Lock()
	defer logMu.Unlock()
	logLevel = level
	atom.SetLevel(zapLevel(level))
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogOutput redirects log output to the given file, creating parent
// directories as needed. The interactive client uses this so log lines never
// land on the terminal it is drawing.
func SetLogOutput(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logMu.Lock()
	defer logMu.Unlock()
	_ = logger.Sync()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	logger = newLogger(zapcore.Lock(f))
	return nil
}

// ResetLogOutput sends log output back to stderr.
func ResetLogOutput() {
	logMu.Lock()
	defer logMu.Unlock()
	_ = logger.Sync()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logger = newLogger(zapcore.Lock(os.Stderr))
}

func current() *zap.SugaredLogger {
	logMu.Lock()
	defer logMu.Unlock()
	return logger
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	current().Errorf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	current().Warnf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	current().Infof(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	current().Debugf(format, args...)
}
