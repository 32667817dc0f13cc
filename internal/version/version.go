// Package version reports build fingerprints of the sfcc binary.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
)

// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with one colour per component. Pre-release
// suffixes are left plain.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := versionMajorColor.Sprint(parts[0]) + "." + versionMinorColor.Sprint(parts[1]) + "." + versionPatchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Fingerprint is one dependency that shapes the generated code.
type Fingerprint struct {
	Path    string
	Version string
}

// tracked are the modules whose versions change compiler output.
var tracked = []string{
	"github.com/evanw/esbuild",
	"github.com/gorilla/css",
	"golang.org/x/net",
}

// Fingerprints returns the versions of the tracked modules linked into the
// binary. Modules missing from the build info are reported as "unknown".
func Fingerprints() []Fingerprint {
	found := map[string]string{}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Replace != nil {
				dep = dep.Replace
			}
			found[dep.Path] = dep.Version
		}
	}
	out := make([]Fingerprint, 0, len(tracked))
	for _, path := range tracked {
		v := found[path]
		if v == "" {
			v = "unknown"
		}
		out = append(out, Fingerprint{Path: path, Version: v})
	}
	return out
}

// Summary is the text printed by `sfcc version`.
func Summary(colored bool) string {
	var b strings.Builder
	v := Version
	if colored {
		v = Colored()
	}
	fmt.Fprintf(&b, "sfcc %s\n", v)
	if GitCommit != "" {
		fmt.Fprintf(&b, "commit: %s\n", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&b, "built:  %s\n", BuildDate)
	}
	for _, fp := range Fingerprints() {
		fmt.Fprintf(&b, "  %s %s\n", fp.Path, fp.Version)
	}
	return b.String()
}
