// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time, e.g.
//
//	go build -ldflags "-X github.com/golergka/pgtyped/version.Version=v1.2.0"
var (
	Version    = "dev"
	CommitHash = "unknown"
)

// Info describes the running binary
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the build information of this binary
func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	commit := i.CommitHash
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("pgtyped %s (%s, %s, %s)", i.Version, commit, i.GoVersion, i.Platform)
}
