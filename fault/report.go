package fault

import (
	"fmt"

	"go.uber.org/zap"
)

// Reporter is the host's diagnostic sink for unhandled failures. It is
// invoked once per escaping panic, before the process-level abort, with the
// failure message and source location where obtainable.
type Reporter interface {
	ReportTrap(message, file string, line int)
}

var reporter Reporter

// Install registers the process-wide diagnostic sink. The first non-nil
// reporter wins; later installs are no-ops.
func Install(r Reporter) {
	if reporter == nil && r != nil {
		reporter = r
	}
}

// Report forwards a recovered panic value to the installed reporter. Without
// a reporter the failure goes to the package logger. The caller re-raises
// the panic afterwards; Report never swallows it.
func Report(v any) {
	message := fmt.Sprint(v)
	file := ""
	line := 0
	if f, ok := v.(*Fault); ok {
		message = "[executor] " + string(f.Code)
		if f.Detail != "" {
			message += ": " + f.Detail
		}
		file = f.File
		line = f.Line
	}

	if reporter != nil {
		reporter.ReportTrap(message, file, line)
		return
	}
	Logger().Error("unhandled trap",
		zap.String("message", message),
		zap.String("file", file),
		zap.Int("line", line))
}
