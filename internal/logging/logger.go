package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	logger  = zap.NewNop()
	sugar   = logger.Sugar()
	logFile *os.File
)

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// InitLogger initializes the debug logger to write to a dated file in dir
func InitLogger(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(dir, fmt.Sprintf("royal-debug-%s.log", time.Now().Format("2006-01-02")))

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), zapcore.DebugLevel)

	mu.Lock()
	logFile = f
	logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	sugar = logger.Sugar()
	mu.Unlock()

	Info("=== Royal Terminal Debug Log Started ===")

	return nil
}

// L returns the structured logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.WithOptions(zap.AddCallerSkip(-1))
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	current().Debugf(format, v...)
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	current().Infof(format, v...)
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	current().Errorf(format, v...)
}

// Close flushes and closes the log file
func Close() {
	Info("=== Royal Terminal Debug Log Ended ===")

	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return
	}
	_ = logger.Sync()
	logFile.Close()
	logFile = nil
	logger = zap.NewNop()
	sugar = logger.Sugar()
}
