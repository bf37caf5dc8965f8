package spawner

import (
	"fmt"
	"log"
	"os"
)

// VerboseLoggingEnabled can be set true to see detailed logging.
var VerboseLoggingEnabled = false

const AbbrevMaxLen = 65

func abbrev(x string) string {
	if len(x) > AbbrevMaxLen {
		return x[0:AbbrevMaxLen-1] + "..."
	}
	return x
}

type logSink struct{}

func (l logSink) Write(p []byte) (n int, err error) {
	if VerboseLoggingEnabled {
		return fmt.Fprint(os.Stderr, string(p))
	}
	return 0, nil
}

var logger = log.New(&logSink{}, "SPAWN: ", log.Ldate|log.Ltime|log.Lshortfile)
