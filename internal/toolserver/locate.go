package toolserver

import (
	"os/exec"
	"runtime"
)

// LauncherCandidates returns the executable names to try for the npm
// launcher, most specific first. Windows installs expose npx as a .cmd
// shim, so both variants are tried there.
func LauncherCandidates() []string {
	if runtime.GOOS == "windows" {
		return []string{"npx.cmd", "npx"}
	}
	return []string{"npx"}
}

// Locate returns the absolute path of the first candidate found on
// PATH, or "" when none resolves. Pure lookup, no caching: PATH can
// change between calls and this runs once per session anyway.
func Locate(candidates ...string) string {
	for _, c := range candidates {
		if p, err := exec.LookPath(c); err == nil {
			return p
		}
	}
	return ""
}
