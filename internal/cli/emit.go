package cli

import (
	"fmt"

	"github.com/vburojevic/azsam/internal/output"
)

// emitWarning respects format/quiet.
func emitWarning(globals *Globals, emitter *output.Emitter, msg string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" && emitter != nil {
		emitter.Warning(msg)
		return
	}
	fmt.Fprintf(globals.Stderr, "Warning: %s\n", msg)
}

// emitInfo respects format/quiet. Info lines go to stderr in text mode so
// stdout stays pipeable.
func emitInfo(globals *Globals, emitter *output.Emitter, msg string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" && emitter != nil {
		emitter.Info(msg, "", "")
		return
	}
	fmt.Fprintf(globals.Stderr, "%s\n", msg)
}
