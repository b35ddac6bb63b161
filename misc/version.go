// Package misc carries build information injected at link time.
package misc

import "path/filepath"

var (
	appName = "tocidx"
	version = "dev"
	gitHash = "unknown"
)

// GetAppName returns name of the program, used for log naming and temporary files.
func GetAppName() string {
	return filepath.Base(appName)
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
