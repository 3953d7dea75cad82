// Package venv locates and activates Python virtual environments without a shell.
//
// Activation reproduces the environment changes made by sourcing
// bin/activate: VIRTUAL_ENV is exported, the environment's binary directory
// is prepended to PATH, and PYTHONHOME is removed. The result is an explicit
// Environment value handed to every child process; the jetrun process itself
// is never mutated.
package venv
