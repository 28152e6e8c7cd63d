package logger

import (
	"sync"

	"go.uber.org/zap"
)

// Log is the process-wide sugared logger. It defaults to a no-op logger so
// packages can log before Init runs (tests, admin tooling).
var (
	Log  = zap.NewNop().Sugar()
	once sync.Once
)

// Init builds the real logger. Development mode switches to the human
// readable console encoder.
func Init(development bool) error {
	var err error
	once.Do(func() {
		var l *zap.Logger
		if development {
			l, err = zap.NewDevelopment()
		} else {
			l, err = zap.NewProduction()
		}
		if err != nil {
			return
		}
		Log = l.Sugar()
	})
	return err
}

// Sync flushes buffered log entries. Safe to call on the no-op logger.
func Sync() {
	_ = Log.Sync()
}
