// Package pathutils resolves user supplied paths such as virtual environment candidates and report destinations.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// Resolver expands home shortcuts and anchors relative paths to a base directory.
type Resolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewResolver constructs a Resolver using the operating system home directory lookup.
func NewResolver() *Resolver {
	return NewResolverWithProvider(os.UserHomeDir)
}

// NewResolverWithProvider constructs a Resolver with a custom home directory provider.
func NewResolverWithProvider(provider HomeDirectoryProvider) *Resolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &Resolver{homeDirectoryProvider: provider}
}

// Resolve returns an absolute, cleaned path for candidatePath. Home shortcuts are expanded first;
// remaining relative paths are joined to baseDirectory.
func (resolver *Resolver) Resolve(baseDirectory string, candidatePath string) string {
	trimmedCandidate := strings.TrimSpace(candidatePath)
	if len(trimmedCandidate) == 0 {
		return filepath.Clean(baseDirectory)
	}

	expandedCandidate := resolver.ExpandHome(trimmedCandidate)
	if filepath.IsAbs(expandedCandidate) {
		return filepath.Clean(expandedCandidate)
	}

	return filepath.Join(baseDirectory, expandedCandidate)
}

// ExpandHome resolves leading tilde prefixes to the user's home directory.
func (resolver *Resolver) ExpandHome(candidatePath string) string {
	if resolver == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := resolver.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return resolvedHomeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	default:
		return candidatePath
	}
}

func (resolver *Resolver) resolveHomeDirectory() string {
	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
