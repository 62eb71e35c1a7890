package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init configures the global zap logger. Console output only; debug toggles
// the level. Raw vendor/RPC error text must only ever be logged at debug.
func Init(debug bool) {
	pe := zap.NewProductionEncoderConfig()
	pe.EncodeTime = zapcore.ISO8601TimeEncoder
	pe.MessageKey = "message"
	pe.TimeKey = "time"
	pe.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(pe),
		zapcore.AddSync(os.Stdout),
		level,
	)

	zap.ReplaceGlobals(zap.New(core))
}

// IsDebugEnabled reports whether the global logger emits debug output.
func IsDebugEnabled() bool {
	return zap.L().Core().Enabled(zap.DebugLevel)
}
