package memoexec

import (
	"fmt"
	"log"
	"os"

	"github.com/monopole/memoexec/spawner"
)

// enableLogging can be set to true to see detailed logging.
var enableLogging = false

// VerboseLoggingEnable enables detailed logging.
func VerboseLoggingEnable() {
	enableLogging, spawner.VerboseLoggingEnabled = true, true
}

// VerboseLoggingDisable disables detailed logging.
func VerboseLoggingDisable() {
	enableLogging, spawner.VerboseLoggingEnabled = false, false
}

type logSink struct{}

func (l logSink) Write(p []byte) (n int, err error) {
	if enableLogging {
		return fmt.Fprint(os.Stderr, string(p))
	}
	return 0, nil
}

var logger = log.New(&logSink{}, "MEMEX: ", log.Ldate|log.Ltime|log.Lshortfile)
