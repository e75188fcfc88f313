// Package version formats the displayed menu version from the build
// version and the catalog change counter.
package version

import (
	"fmt"
	"regexp"
	"strings"
)

// IsDevelopmentVersion returns true for non-release versions.
func IsDevelopmentVersion(v string) bool {
	if v == "" || v == "unknown" || v == "dev" || v == "devel" {
		return true
	}
	return strings.HasPrefix(v, "devel+")
}

var releaseRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)(?:\.\d+)?(?:-[a-zA-Z0-9.-]+)?$`)

// Base reduces a build version to "vMAJOR.MINOR". Development and
// unparseable versions become "dev".
func Base(build string) string {
	if IsDevelopmentVersion(build) {
		return "dev"
	}
	m := releaseRegex.FindStringSubmatch(build)
	if m == nil {
		return "dev"
	}
	return "v" + m[1] + "." + m[2]
}

// Display joins the base of build with patch padded to three digits,
// e.g. v2.1.090.
func Display(build string, patch int) string {
	if patch < 0 {
		patch = 0
	}
	return fmt.Sprintf("%s.%03d", Base(build), patch)
}
