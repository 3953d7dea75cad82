// Package dependencies resolves the shared collaborators used by jetrun commands, substituting
// production defaults for anything a caller leaves unset.
package dependencies
