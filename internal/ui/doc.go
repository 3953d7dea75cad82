// Package ui provides helpers for human-readable console output.
//
// ConsoleCommandEventLogger turns interpreter lifecycle events into concise
// log lines, and Printer renders the banners and status lines that jetrun
// commands write to standard output.
package ui
