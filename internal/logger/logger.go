package logger

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. It discards everything until Initialize runs.
var Log *zap.Logger = zap.NewNop()

// Initialize writes human-readable lines to stdout and JSON lines to a
// rotated logFile, both filtered at logLevel.
func Initialize(logLevel string, logFile string) error {
	level := parseLogLevel(logLevel)

	jsonConfig := zap.NewProductionEncoderConfig()
	jsonConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonConfig), rotatingFile(logFile), level),
	)

	Log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	Log.Info("Logger initialized",
		zap.String("level", level.String()),
		zap.String("file", logFile),
	)
	return nil
}

func rotatingFile(path string) zapcore.WriteSyncer {
	if path == "" {
		path = "citysearch.log"
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	})
}

// Close flushes buffered entries
func Close() error {
	return Log.Sync()
}

func parseLogLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// FatalWithFields logs err and exits the process
func FatalWithFields(msg string, err error) {
	Log.Fatal(msg, zap.Error(err))
}

func WithRequestID(requestID string) zap.Field {
	return zap.String("request_id", requestID)
}

func WithIndex(index string) zap.Field {
	return zap.String("index", index)
}

func WithIP(ip string) zap.Field {
	return zap.String("ip", ip)
}

func WithStatus(status int) zap.Field {
	return zap.Int("status", status)
}

func WithDuration(d time.Duration) zap.Field {
	return zap.Duration("duration", d)
}
