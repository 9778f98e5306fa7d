// Package outdir manages the target-private directories post-link hooks
// write into.
package outdir

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvBuildDir overrides the output root.
const EnvBuildDir = "FLASHKIT_BUILD_DIR"

// Root returns the directory all target output lives under.
func Root() string {
	if dir := os.Getenv(EnvBuildDir); dir != "" {
		return dir
	}

	switch runtime.GOOS {
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Caches", "flashkit", "build")
		}
	case "linux":
		if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
			return filepath.Join(xdgCache, "flashkit", "build")
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".cache", "flashkit", "build")
		}
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "flashkit", "build")
		}
	}

	return filepath.Join(os.TempDir(), "flashkit", "build")
}

// Path is the output directory of one target built with one toolchain.
func Path(root, target, toolchain string) string {
	return filepath.Join(root, target, toolchain)
}

// Create makes the output directory for target/toolchain under root.
func Create(root, target, toolchain string) (string, error) {
	dir := Path(root, target, toolchain)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}
