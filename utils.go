package smallneuron

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbosity is the global verbosity level. 1 reports training progress, 2
// adds model compilation, 3 adds every unit created and every batch.
var Verbosity = 1

// LogOutput is where logf writes.
var LogOutput io.Writer = os.Stdout

// logf logs output if it exceeds the global verbosity level.
func logf(level int, format string, a ...interface{}) (n int, err error) {
	if level > Verbosity {
		return
	}
	t := time.Now()
	prefix := fmt.Sprintf("(%d) (%s) ", level, t.Format("15:04:05.999"))
	return fmt.Fprintf(LogOutput, prefix+format, a...)
}
