// Package buildinfo carries version data stamped at link time:
//
//	go build -ldflags "-X github.com/m3rciful/royaldns/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/m3rciful/royaldns/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/royaldns/core/buildinfo.Date=$(date -u +%FT%TZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)

// String formats the build for `royaldns version`.
func String() string {
	s := fmt.Sprintf("royaldns %s (commit %s", Version, Commit)
	if Date != "" {
		s += ", built " + Date
	}
	return s + ")"
}
