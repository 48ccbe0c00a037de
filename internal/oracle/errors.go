package oracle

import "fmt"

// ProcessError reports an oracle process that started but failed: non-zero
// exit, timeout, or an I/O failure mid-run. The captured stderr is carried
// verbatim so the JVM-side message reaches the user without extra noise.
type ProcessError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("oracle %s failed (exit %d)", e.Command, e.ExitCode)
	if stderr := clipStderr(e.Stderr); stderr != "" {
		msg += ":\n" + stderr
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// UnavailableError reports that the oracle could not be launched at all:
// missing runtime, missing entry point, bad permissions. This is an
// infrastructure failure, never a test failure.
type UnavailableError struct {
	Command string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("oracle %s unavailable: %v", e.Command, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func clipStderr(s string) string {
	const max = 8192
	if len(s) > max {
		s = s[:max] + "\n... (stderr truncated)"
	}
	return s
}
