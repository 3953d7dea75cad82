// Package execshell provides structured helpers for invoking the Python interpreter and test runners.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution (buffered or streamed to the terminal), and
// notifies CommandEventObserver implementations about command lifecycles so
// that jetrun commands stay testable without spawning real processes.
package execshell
