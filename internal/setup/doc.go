// Package setup bootstraps the Python environment the compatibility tests need: it installs the
// configured packages through pip and verifies that the required modules import.
package setup
