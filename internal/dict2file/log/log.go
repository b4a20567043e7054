// Package log installs the process-wide slog logger and recovers panics
// into it.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	charm "github.com/charmbracelet/log"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
)

// Setup makes a charm logger writing to w the slog default. Only the first
// call has any effect.
func Setup(w io.Writer, debug bool) {
	initOnce.Do(func() {
		level := charm.InfoLevel
		if debug {
			level = charm.DebugLevel
		}

		handler := charm.NewWithOptions(w, charm.Options{
			Level:        level,
			ReportCaller: debug,
			Prefix:       "dict2file",
		})

		slog.SetDefault(slog.New(handler))
		initialized.Store(true)
	})
}

func Initialized() bool {
	return initialized.Load()
}

func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
