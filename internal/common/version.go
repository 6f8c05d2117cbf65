package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Version information (set via -ldflags during build)
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// versionFile sits beside the binary in release archives
const versionFile = ".version"

// VersionInfo is served by /api/version and printed by -version
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%s %s (build: %s, commit: %s, %s)", v.Name, v.Version, v.Build, v.GitCommit, v.GoVersion)
}

// GetVersionInfo returns the running build's version details
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Name:      "soundbite",
		Version:   Version,
		Build:     Build,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
}

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns version with build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}

// ResolveVersion replaces a "dev" version with the first line of a .version
// file from the executable's directory or, failing that, from dirs in order.
// A version set through -ldflags is never overridden.
func ResolveVersion(dirs ...string) string {
	if Version != "dev" {
		return Version
	}

	var candidates []string
	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Dir(exePath))
	}
	candidates = append(candidates, dirs...)

	for _, dir := range candidates {
		data, err := os.ReadFile(filepath.Join(dir, versionFile))
		if err != nil {
			continue
		}
		line, _, _ := strings.Cut(string(data), "\n")
		if v := strings.TrimSpace(line); v != "" {
			Version = v
			break
		}
	}
	return Version
}
