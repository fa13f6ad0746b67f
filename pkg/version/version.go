package version

import "fmt"

// Set at build time with -ldflags "-X github.com/openshift/hive-claims-manager/pkg/version.gitVersion=...".
var (
	gitVersion = "v0.0.0-unknown"
	gitCommit  = ""
)

// String returns the version of the binary.
func String() string {
	if gitCommit == "" {
		return gitVersion
	}
	return fmt.Sprintf("%s (%s)", gitVersion, gitCommit)
}

// Commit returns the git commit the binary was built from, if known.
func Commit() string {
	return gitCommit
}
