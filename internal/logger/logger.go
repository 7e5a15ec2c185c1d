// Package logger wraps a zap sugared logger shared by the server, the queue
// consumer and the command line tools.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.SugaredLogger

func init() {
	Init(false)
}

// Init builds the JSON logger. Debug lowers the level to debug; extra
// writers receive the same entries as stdout.
func Init(debug bool, writers ...io.Writer) {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		TimeKey:      "time",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		CallerKey:    "caller",
		EncodeCaller: zapcore.ShortCallerEncoder,
	})

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}
	cores := make([]zapcore.Core, 0, len(writers))
	for _, w := range writers {
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(w), level))
	}
	log = zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Sugar()
}

// L returns the shared logger.
func L() *zap.SugaredLogger {
	return log
}

// With returns a child logger carrying the given key/value pairs.
func With(kv ...interface{}) *zap.SugaredLogger {
	return log.With(kv...)
}

// Sync flushes buffered entries; call it before the process exits.
func Sync() {
	_ = log.Sync()
}
