// Package dispatch hands execution off to the Django Jet Calm compatibility test runner.
//
// A dispatch runs the project preconditions, selects the runner in a fixed priority order
// (runner script in the working directory, the same script inside the runner subdirectory,
// or Django's own test command), forwards arguments verbatim, and reports the delegated
// command's exit status unchanged.
package dispatch
