package main

import (
	"runtime/debug"
	"strings"

	"github.com/marcus/menuboard/cmd"
)

// Version may be set at build time via -ldflags "-X main.Version=v2.1.0".
// The menu shows its major.minor followed by the catalog change counter.
var Version = "dev"

func effectiveVersion(v string) string {
	if v != "" && v != "dev" {
		return v
	}

	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v
	}

	// `go install module@vX.Y.Z` records the module version.
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var rev, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	if rev == "" {
		return v
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	parts := []string{"devel", rev}
	if modified == "true" {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "+")
}

func main() {
	cmd.SetVersion(effectiveVersion(Version))
	cmd.Execute()
}
