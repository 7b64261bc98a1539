package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExecutableDir returns the directory holding the running binary, following
// symlinks. Falls back to the working directory when the binary path cannot
// be determined.
func ExecutableDir() string {
	if exe, err := os.Executable(); err == nil && exe != "" {
		if resolved, rerr := filepath.EvalSymlinks(exe); rerr == nil && resolved != "" {
			exe = resolved
		}
		return filepath.Dir(exe)
	}

	wd, err := os.Getwd()
	if err != nil || wd == "" {
		return "."
	}
	return wd
}

// ResolveRuntimePath turns a configured path into an absolute one. Relative
// paths are anchored at the executable directory so the server behaves the
// same no matter where it is launched from.
func ResolveRuntimePath(configured, fallbackSubdir string) string {
	p := strings.TrimSpace(configured)
	if p == "" {
		p = strings.TrimSpace(fallbackSubdir)
	}
	if p == "" {
		return ExecutableDir()
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(ExecutableDir(), p)
	}
	return filepath.Clean(p)
}
