package logging

import (
	"log"
	"os"
)

// debugEnabled controls whether or not Logger.Debug* methods produce output.
// It is set once at process start from the DUALSYNC_DEBUG environment
// variable, mirroring the teacher's package-level debug switch.
var debugEnabled = os.Getenv("DUALSYNC_DEBUG") != ""

func init() {
	// Set the global logger to use standard output so that loggers created
	// before any explicit configuration still produce visible output.
	log.SetOutput(os.Stdout)
}
