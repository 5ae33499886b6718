package logger

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	verbosityFlagName      = "verbosity"
	verbosityFlagShortName = "v"
)

type Logger struct {
	logr.Logger
	atomicLevel zap.AtomicLevel
	flush       func()
}

// New returns a console logger writing to stderr at info level.
func New(name string) *Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	atomicLevel := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), atomicLevel)
	zapLogger := zap.New(core)
	return &Logger{
		Logger:      zapr.NewLogger(zapLogger).WithName(name),
		atomicLevel: atomicLevel,
		flush: func() {
			_ = zapLogger.Sync()
		},
	}
}

func (l *Logger) SetLevel(level zapcore.Level) {
	l.atomicLevel.SetLevel(level)
}

func (l *Logger) Level() zapcore.Level {
	return l.atomicLevel.Level()
}

func (l *Logger) Flush() {
	l.flush()
}

func (l *Logger) AddLevelFlag(fs *pflag.FlagSet) {
	levelVal := NewLevelFlagValue(l.SetLevel)
	fs.VarP(&levelVal, verbosityFlagName, verbosityFlagShortName, "Logging verbosity level (e.g. -v=debug). Can be one of 'debug', 'info', or 'error', or a positive integer for increasing debug verbosity.")
}
