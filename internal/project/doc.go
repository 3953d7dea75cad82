// Package project locates the Django project a jetrun command operates on.
//
// A Locator verifies the marker file, activates the first virtual
// environment found among the configured candidates, resolves the Python
// interpreter, and checks that required modules are importable. Commands
// share it so that every entry point applies the same preconditions.
package project
