// Package misc carries build information, set with -ldflags "-X wss/misc.version=...".
package misc

import "strings"

var (
	appName = "wss"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return strings.TrimPrefix(version, "v")
}

func GetGitHash() string {
	if len(gitHash) > 7 {
		return gitHash[:7]
	}
	return gitHash
}
