package simplelogger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// EnvLogFile names the environment variable consulted when no path has been set with SetPath.
const EnvLogFile = "BLOCKPATCH_LOG_FILE"

var (
	mu   sync.Mutex
	path string
)

// SetPath directs Log to append to p. An empty p restores the BLOCKPATCH_LOG_FILE lookup.
func SetPath(p string) {
	mu.Lock()
	defer mu.Unlock()
	path = p
}

// Log is a minimal printf-style logger. It appends formatted output to the file set with SetPath, or else to the file named by BLOCKPATCH_LOG_FILE.
//
// If neither is set or the path can't be opened as a file, Log is a no-op.
func Log(format string, args ...any) {
	// Serialize open/write/close to reduce interleaving within a single process.
	mu.Lock()
	defer mu.Unlock()

	target := path
	if target == "" {
		target = os.Getenv(EnvLogFile)
	}
	if target == "" {
		return
	}

	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Len() == 0 || b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = f.Write(b.Bytes())
}
