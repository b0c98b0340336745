package api

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

var apiLog *log.Logger

func init() {
	if os.Getenv("PICOSIM_DEBUG") != "" {
		// Note: file handle intentionally not closed - kept open for process lifetime.
		logPath := filepath.Join(os.TempDir(), "picosim-api-debug.log")
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			apiLog = log.New(os.Stderr, "API: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			apiLog = log.New(f, "API: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		apiLog = log.New(io.Discard, "", 0)
	}
}

// debugLog logs a message if PICOSIM_DEBUG is set.
func debugLog(format string, args ...interface{}) {
	apiLog.Printf(format, args...)
}
