package logger

import (
	"log"
	"os"
)

var debug = os.Getenv("DEBUG") == "1"

// DebugLog prints when the DEBUG environment variable is set to 1.
func DebugLog(format string, args ...any) {
	if debug {
		log.Printf("[DEBUG] "+format, args...)
	}
}
