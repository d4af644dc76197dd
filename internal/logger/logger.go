package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxLogSize = 10 * 1024 * 1024

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	logFile *os.File
	logPath string
)

// Options configures the logger
type Options struct {
	Level       string // debug, info, warn, error
	Development bool
}

// Init sends logs to stdout. Used by the server.
func Init(opts Options) error {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	set(l)
	return nil
}

// InitFile sends debug logs to ~/.flip-seven/debug.log so they do not corrupt the terminal UI.
// Used by the client.
func InitFile() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	logDir := filepath.Join(homeDir, ".flip-seven")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, "debug.log")
	f, err := openRotated(path)
	if err != nil {
		return err
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), zapcore.DebugLevel)
	set(zap.New(core, zap.AddCaller()))

	mu.Lock()
	logFile, logPath = f, path
	mu.Unlock()

	LogInfo("Logger initialized, log file: %s", path)
	return nil
}

// openRotated opens path for append, moving it aside first when it has grown too large
func openRotated(path string) (*os.File, error) {
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		backup := fmt.Sprintf("%s.%d", path, time.Now().Unix())
		_ = os.Rename(path, backup)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

// L returns the structured logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Close flushes buffered entries and closes the log file, if any
func Close() {
	_ = L().Sync()
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// LogDebug logs a debug message
func LogDebug(format string, args ...any) {
	L().WithOptions(zap.AddCallerSkip(1)).Sugar().Debugf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	L().WithOptions(zap.AddCallerSkip(1)).Sugar().Infof(format, args...)
}

// LogError logs an error message
func LogError(format string, args ...any) {
	L().WithOptions(zap.AddCallerSkip(1)).Sugar().Errorf(format, args...)
}

// LogPanic logs a recovered panic with its stack trace
func LogPanic(r any) {
	L().Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}
