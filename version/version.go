// Package version carries build metadata set at link time, e.g.
//
//	go build -ldflags "-X github.com/cinemind/cinemind/version.GitRelease=v0.2.0"
package version

import (
	"runtime"
	"runtime/debug"
)

var (
	GitRelease    = "dev"
	GitCommit     = ""
	GitCommitDate = ""
)

// Info is the build description printed by `cinemind version`.
type Info struct {
	Release    string `json:"release" yaml:"release"`
	Commit     string `json:"commit" yaml:"commit"`
	CommitDate string `json:"commit_date" yaml:"commit_date"`
	Go         string `json:"go" yaml:"go"`
	Platform   string `json:"platform" yaml:"platform"`
}

// Get returns build metadata. Values not set by -ldflags fall back to the
// VCS stamp the Go toolchain embeds, then to "unknown".
func Get() Info {
	info := Info{
		Release:    GitRelease,
		Commit:     GitCommit,
		CommitDate: GitCommitDate,
		Go:         runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "":
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.CommitDate == "":
				info.CommitDate = s.Value
			}
		}
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.CommitDate == "" {
		info.CommitDate = "unknown"
	}
	return info
}
