package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are populated at build time via -ldflags.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// String is "<version> (<commit>) <date>". Without ldflags, the VCS revision
// recorded by the go tool is used for the commit.
func String() string {
	base := Version
	commit, date := Commit, Date
	if commit == "" {
		commit, date = fromBuildInfo(date)
	}
	if commit != "" {
		base += fmt.Sprintf(" (%s)", commit)
	}
	if date != "" {
		base += fmt.Sprintf(" %s", date)
	}
	return base
}

func fromBuildInfo(date string) (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", date
	}
	var commit string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case "vcs.time":
			if date == "" {
				date = s.Value
			}
		}
	}
	return commit, date
}
