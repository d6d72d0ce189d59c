package version

import (
	"runtime"
	"testing"
)

func TestGet(t *testing.T) {
	oldRelease, oldCommit := GitRelease, GitCommit
	t.Cleanup(func() { GitRelease, GitCommit = oldRelease, oldCommit })

	GitRelease, GitCommit = "v1.2.3", "abc123"
	info := Get()
	if info.Release != "v1.2.3" || info.Commit != "abc123" {
		t.Errorf("Get() = %+v", info)
	}
	if info.Go != runtime.Version() {
		t.Errorf("Go = %s", info.Go)
	}
	if info.CommitDate == "" {
		t.Error("CommitDate is empty, want a value or \"unknown\"")
	}
}
