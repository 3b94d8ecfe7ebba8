// Package logging configures the standard logger shared by every command.
package logging

import (
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Levels accepted by Setup.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
)

var debug atomic.Bool

// Setup configures the standard logger for the given level.
//
// Debug adds file:line to every line and enables Debugf. Any other value is
// treated as info.
//
// Arguments:
//   - level: "debug" or "info", case-insensitive.
func Setup(level string) {
	log.SetOutput(os.Stderr)

	if strings.EqualFold(strings.TrimSpace(level), LevelDebug) {
		debug.Store(true)
		log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
		return
	}

	debug.Store(false)
	log.SetFlags(log.Ldate | log.Ltime)
}

// DebugEnabled reports whether debug logging is on.
func DebugEnabled() bool {
	return debug.Load()
}

// Debugf logs through the standard logger when debug logging is on.
func Debugf(format string, args ...any) {
	if debug.Load() {
		log.Printf("🔍 "+format, args...)
	}
}
